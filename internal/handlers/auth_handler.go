package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vregistry/internal/apperr"
	"vregistry/internal/models"
	"vregistry/internal/services"
)

type AuthHandler struct {
	Service services.AuthService
}

func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

// @Summary      Вход в систему
// @Description  Проверяет учётные данные (локально или через провайдера) и возвращает токены
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  models.TokenPair
// @Failure      400    {object}  errorBody
// @Failure      429    {object}  errorBody
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	pair, err := h.Service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary      Обновление токенов
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RefreshRequest  true  "Refresh-токен"
// @Success      200   {object}  models.TokenPair
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	pair, err := h.Service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary   Текущий пользователь
// @Tags      Auth
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  models.User
// @Failure   401  {object}  errorBody
// @Router    /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		writeError(c, apperr.Unauthorized("Требуется авторизация", nil))
		return
	}
	c.JSON(http.StatusOK, user)
}
