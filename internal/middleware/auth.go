package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vregistry/internal/apperr"
	"vregistry/internal/models"
)

// ключи контекста gin
const (
	CtxUser      = "user"
	CtxUserID    = "user_id"
	CtxRoleID    = "role_id"
	CtxRequestID = "request_id"
)

// UserResolver умеет по access-токену вернуть пользователя
// (services.AuthService в обоих режимах).
type UserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

func abort(c *gin.Context, err error) {
	ae := apperr.From(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(ae.Status(), gin.H{"message": ae.Message, "extra": ae.Extra})
}

func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func AuthMiddleware(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight пропускаем
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			abort(c, apperr.Unauthorized("Отсутствует или некорректен заголовок Authorization", nil))
			return
		}

		user, err := resolver.CurrentUser(c.Request.Context(), tokenStr)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxUserID, user.ID)
		c.Set(CtxRoleID, user.RoleID)
		c.Next()
	}
}
