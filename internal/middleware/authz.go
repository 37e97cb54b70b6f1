package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vregistry/internal/apperr"
	"vregistry/internal/authz"
)

func RequireRoles(allowed ...int) gin.HandlerFunc {
	allowedSet := map[int]struct{}{}
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleID, exists := roleFromCtx(c)
		if !exists {
			abort(c, apperr.Unauthorized("Требуется авторизация", nil))
			return
		}
		if _, ok := allowedSet[roleID]; !ok {
			abort(c, apperr.Forbidden("Недостаточно прав").With("role_id", roleID))
			return
		}
		c.Next()
	}
}

// ReadOnlyGuard запрещает изменяющие методы для роли audit.
func ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, _ := roleFromCtx(c)
		if authz.IsReadOnly(roleID) {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				abort(c, apperr.Forbidden("Роль только для чтения"))
				return
			}
		}
		c.Next()
	}
}

func roleFromCtx(c *gin.Context) (int, bool) {
	v, ok := c.Get(CtxRoleID)
	if !ok {
		return 0, false
	}
	roleID, ok := v.(int)
	return roleID, ok
}
