package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"vregistry/internal/apperr"
	"vregistry/internal/authz"
	"vregistry/internal/handlers"
	"vregistry/internal/models"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeAuth: токен равен имени роли.
type fakeAuth struct{}

func (fakeAuth) Mode() string { return "local" }

func (fakeAuth) Login(context.Context, string, string) (*models.TokenPair, error) {
	return nil, apperr.BadRequest("Неверные учетные данные", nil)
}

func (fakeAuth) Refresh(context.Context, string) (*models.TokenPair, error) {
	return nil, apperr.Unauthorized("Недействительный токен", nil)
}

func (fakeAuth) CurrentUser(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "operator":
		return &models.User{ID: 1, Username: "op", RoleID: authz.RoleOperator}, nil
	case "audit":
		return &models.User{ID: 2, Username: "au", RoleID: authz.RoleAudit}, nil
	case "other":
		return &models.User{ID: 3, Username: "xx", RoleID: 20}, nil
	}
	return nil, apperr.Unauthorized("Недействительный токен", nil)
}

func newRouter(t *testing.T, cache *redis.Client) *gin.Engine {
	t.Helper()
	auth := fakeAuth{}
	return SetupRoutes(gin.New(), Deps{
		Auth:           auth,
		Cache:          cache,
		LoginMaxPerMin: 1,
		Log:            zap.NewNop(),
		AuthHandler:    handlers.NewAuthHandler(auth),
		UserHandler:    handlers.NewVerifiedUserHandler(nil),
		VehicleHandler: handlers.NewVerifiedVehicleHandler(nil),
		DisableSwagger: true,
	})
}

func request(r http.Handler, method, path, token, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPublicRoutes(t *testing.T) {
	r := newRouter(t, nil)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/healthz", "", ""))
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/login", "", `{"username":"a","password":"b"}`))
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodPost, "/refresh", "", `{"refresh_token":"x"}`))
}

func TestRegistryRequiresToken(t *testing.T) {
	r := newRouter(t, nil)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/verified-users/"},
		{http.MethodPost, "/verified-users/create"},
		{http.MethodPut, "/verified-vehicles/update/1"},
		{http.MethodDelete, "/verified-vehicles/delete/1"},
		{http.MethodGet, "/verified-vehicles/get-by-value/777ABC02"},
		{http.MethodGet, "/me"},
	}
	for _, p := range paths {
		assert.Equal(t, http.StatusUnauthorized, request(r, p.method, p.path, "", ""), p.path)
	}
}

func TestRegistryRoles(t *testing.T) {
	r := newRouter(t, nil)

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/me", "audit", ""))
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodPost, "/verified-users/create", "audit", "{}"))
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodDelete, "/verified-vehicles/delete/1", "audit", ""))
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodGet, "/verified-users/get/1", "other", ""))

	// до сервиса не доходим: некорректный id отсекается в хендлере
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodGet, "/verified-users/get/abc", "operator", ""))
}

func TestLoginIsRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })
	r := newRouter(t, cache)

	body := `{"username":"aidar","password":"bad"}`
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/login", "", body))
	assert.Equal(t, http.StatusTooManyRequests, request(r, http.MethodPost, "/login", "", body))
}
