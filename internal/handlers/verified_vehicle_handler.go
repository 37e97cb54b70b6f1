package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vregistry/internal/models"
	"vregistry/internal/services"
)

type VerifiedVehicleHandler struct {
	Service services.VerifiedVehicleService
}

func NewVerifiedVehicleHandler(service services.VerifiedVehicleService) *VerifiedVehicleHandler {
	return &VerifiedVehicleHandler{Service: service}
}

// @Summary   Список проверок транспорта
// @Tags      VerifiedVehicles
// @Produce   json
// @Security  BearerAuth
// @Param     search           query     string  false  "Поиск по госномеру, описанию, модели"
// @Param     order_by         query     string  false  "Поле сортировки"
// @Param     order_direction  query     string  false  "asc | desc"
// @Param     page             query     int     false  "Страница"
// @Param     size             query     int     false  "Размер страницы"
// @Success   200  {object}  models.Page[models.VerifiedVehicle]
// @Router    /verified-vehicles/ [get]
func (h *VerifiedVehicleHandler) List(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Summary      Создать проверку транспорта
// @Description  Госномер берётся из карточки транспорта
// @Tags         VerifiedVehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.CreateVerifiedVehicleRequest  true  "Решение"
// @Success      201   {object}  models.VerifiedVehicle
// @Failure      400   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /verified-vehicles/create [post]
func (h *VerifiedVehicleHandler) Create(c *gin.Context) {
	var req models.CreateVerifiedVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	rec, err := h.Service.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// @Summary   Обновить проверку транспорта
// @Tags      VerifiedVehicles
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      int                                  true  "ID записи"
// @Param     body  body      models.UpdateVerifiedVehicleRequest  true  "Решение"
// @Success   200   {object}  models.VerifiedVehicle
// @Failure   400   {object}  errorBody
// @Failure   404   {object}  errorBody
// @Router    /verified-vehicles/update/{id} [put]
func (h *VerifiedVehicleHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.UpdateVerifiedVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	rec, err := h.Service.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary   Удалить проверку транспорта
// @Tags      VerifiedVehicles
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "ID записи"
// @Success   200  {boolean}  boolean
// @Failure   404  {object}  errorBody
// @Router    /verified-vehicles/delete/{id} [delete]
func (h *VerifiedVehicleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, true)
}

// @Summary   Проверка транспорта по id
// @Tags      VerifiedVehicles
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "ID записи"
// @Success   200  {object}  models.VerifiedVehicle
// @Failure   404  {object}  errorBody
// @Router    /verified-vehicles/get/{id} [get]
func (h *VerifiedVehicleHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary   Проверка транспорта по госномеру
// @Tags      VerifiedVehicles
// @Produce   json
// @Security  BearerAuth
// @Param     value  path      string  true  "Госномер"
// @Success   200    {object}  models.VerifiedVehicle
// @Failure   404    {object}  errorBody
// @Router    /verified-vehicles/get-by-value/{value} [get]
func (h *VerifiedVehicleHandler) GetByValue(c *gin.Context) {
	rec, err := h.Service.GetByValue(c.Request.Context(), c.Param("value"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
