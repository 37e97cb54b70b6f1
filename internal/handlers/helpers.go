package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vregistry/internal/apperr"
	"vregistry/internal/middleware"
	"vregistry/internal/models"
)

// errorBody: единый формат ошибки для клиента.
type errorBody struct {
	Message string         `json:"message"`
	Extra   map[string]any `json:"extra"`
}

func writeError(c *gin.Context, err error) {
	ae := apperr.From(err)
	_ = c.Error(err) // для access-лога
	c.AbortWithStatusJSON(ae.Status(), errorBody{Message: ae.Message, Extra: ae.Extra})
}

func bindError(c *gin.Context, err error) {
	writeError(c, apperr.BadRequest("Некорректные данные запроса", err).With("detail", err.Error()))
}

func parseID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(c, apperr.BadRequest("Некорректный id", nil).With("id", raw))
		return 0, false
	}
	return id, true
}

func bindFilter(c *gin.Context) (models.ListFilter, bool) {
	var f models.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		bindError(c, err)
		return f, false
	}
	return f, true
}

func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(middleware.CtxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

// Healthz godoc
// @Summary  Проверка доступности
// @Tags     Service
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /healthz [get]
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
