package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vregistry/internal/models"
	"vregistry/internal/services"
)

type VerifiedUserHandler struct {
	Service services.VerifiedUserService
}

func NewVerifiedUserHandler(service services.VerifiedUserService) *VerifiedUserHandler {
	return &VerifiedUserHandler{Service: service}
}

// @Summary      Список проверок пользователей
// @Tags         VerifiedUsers
// @Produce      json
// @Security     BearerAuth
// @Param        search           query     string  false  "Поиск по ИИН, паспорту, описанию, ФИО"
// @Param        order_by         query     string  false  "Поле сортировки"
// @Param        order_direction  query     string  false  "asc | desc"
// @Param        page             query     int     false  "Страница"
// @Param        size             query     int     false  "Размер страницы"
// @Success      200  {object}  models.Page[models.VerifiedUser]
// @Failure      400  {object}  errorBody
// @Router       /verified-users/ [get]
func (h *VerifiedUserHandler) List(c *gin.Context) {
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

// @Summary      Создать проверку пользователя
// @Description  ИИН и номер паспорта берутся из карточки пользователя
// @Tags         VerifiedUsers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.CreateVerifiedUserRequest  true  "Решение"
// @Success      201   {object}  models.VerifiedUser
// @Failure      400   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /verified-users/create [post]
func (h *VerifiedUserHandler) Create(c *gin.Context) {
	var req models.CreateVerifiedUserRequest
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

// @Summary      Обновить проверку пользователя
// @Tags         VerifiedUsers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                               true  "ID записи"
// @Param        body  body      models.UpdateVerifiedUserRequest  true  "Решение"
// @Success      200   {object}  models.VerifiedUser
// @Failure      400   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /verified-users/update/{id} [put]
func (h *VerifiedUserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.UpdateVerifiedUserRequest
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

// @Summary   Удалить проверку пользователя
// @Tags      VerifiedUsers
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "ID записи"
// @Success   200  {boolean}  boolean
// @Failure   404  {object}  errorBody
// @Router    /verified-users/delete/{id} [delete]
func (h *VerifiedUserHandler) Delete(c *gin.Context) {
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

// @Summary   Проверка пользователя по id
// @Tags      VerifiedUsers
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "ID записи"
// @Success   200  {object}  models.VerifiedUser
// @Failure   404  {object}  errorBody
// @Router    /verified-users/get/{id} [get]
func (h *VerifiedUserHandler) Get(c *gin.Context) {
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

// @Summary      Проверка пользователя по ИИН или номеру паспорта
// @Description  Регистр не учитывается
// @Tags         VerifiedUsers
// @Produce      json
// @Security     BearerAuth
// @Param        value  path      string  true  "ИИН или номер паспорта"
// @Success      200    {object}  models.VerifiedUser
// @Failure      404    {object}  errorBody
// @Router       /verified-users/get-by-value/{value} [get]
func (h *VerifiedUserHandler) GetByValue(c *gin.Context) {
	rec, err := h.Service.GetByValue(c.Request.Context(), c.Param("value"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
