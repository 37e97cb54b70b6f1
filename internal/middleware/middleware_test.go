package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vregistry/internal/apperr"
	"vregistry/internal/authz"
	"vregistry/internal/models"
)

func init() { gin.SetMode(gin.TestMode) }

type resolverFunc func(ctx context.Context, token string) (*models.User, error)

func (f resolverFunc) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

func tokenResolver(users map[string]*models.User) UserResolver {
	return resolverFunc(func(_ context.Context, token string) (*models.User, error) {
		if u, ok := users[token]; ok {
			return u, nil
		}
		return nil, apperr.Unauthorized("bad token", nil)
	})
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body, "message")
	require.Contains(t, body, "extra")
	return body
}

func protectedRouter() *gin.Engine {
	users := map[string]*models.User{
		"op":    {ID: 1, RoleID: authz.RoleOperator},
		"audit": {ID: 2, RoleID: authz.RoleAudit},
		"guest": {ID: 3, RoleID: 99},
	}
	r := gin.New()
	g := r.Group("/records", AuthMiddleware(tokenResolver(users)), RequireRoles(authz.Known...), ReadOnlyGuard())
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, c.GetInt(CtxUserID)) }
	g.GET("/", ok)
	g.POST("/", ok)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedRouter()

	w := do(r, http.MethodGet, "/records/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	decodeError(t, w)

	w = do(r, http.MethodGet, "/records/", "", map[string]string{"Authorization": "Basic op"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/records/", "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "bad token", decodeError(t, w)["message"])

	w = do(r, http.MethodGet, "/records/", "", map[string]string{"Authorization": "bearer op"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Body.String())
}

func TestRolesAndReadOnly(t *testing.T) {
	r := protectedRouter()
	tests := []struct {
		name   string
		token  string
		method string
		want   int
	}{
		{"operator writes", "op", http.MethodPost, http.StatusOK},
		{"audit reads", "audit", http.MethodGet, http.StatusOK},
		{"audit cannot write", "audit", http.MethodPost, http.StatusForbidden},
		{"unknown role", "guest", http.MethodGet, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, "/records/", "{}", map[string]string{"Authorization": "Bearer " + tt.token})
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	w := do(r, http.MethodGet, "/", "", map[string]string{RequestIDHeader: "abc-1"})
	assert.Equal(t, "abc-1", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-1", w.Body.String())

	w = do(r, http.MethodGet, "/", "", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())
}

func loginRouter(cache *redis.Client, max int) *gin.Engine {
	r := gin.New()
	r.POST("/login", LoginRateLimit(cache, max, zap.NewNop()), func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, req.Username)
	})
	return r
}

func TestLoginRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })
	r := loginRouter(cache, 2)

	body := `{"username":"Aidar","password":"x"}`
	for i := 0; i < 2; i++ {
		w := do(r, http.MethodPost, "/login", body, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Aidar", w.Body.String(), "body must reach the handler")
	}

	w := do(r, http.MethodPost, "/login", `{"username":"aidar","password":"y"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	decodeError(t, w)

	// другой логин считается отдельно
	w = do(r, http.MethodPost, "/login", `{"username":"dana","password":"x"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.True(t, mr.Exists("rl:login:aidar"))
	assert.True(t, mr.TTL("rl:login:aidar") > 0, "window must expire")
}

func TestLoginRateLimitFailOpen(t *testing.T) {
	w := do(loginRouter(nil, 1), http.MethodPost, "/login", `{"username":"a","password":"b"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = cache.Close() })
	mr.Close()

	r := loginRouter(cache, 1)
	for i := 0; i < 3; i++ {
		w := do(r, http.MethodPost, "/login", `{"username":"a","password":"b"}`, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestLoginRateLimitKeepsLargeBodyIntact(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	r := gin.New()
	r.POST("/login", LoginRateLimit(cache, 5, zap.NewNop()), func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.String(http.StatusOK, strconv.Itoa(len(raw)))
	})

	body := `{"username":"aidar","pad":"` + strings.Repeat("x", loginBodyLimit+1024) + `"}`
	w := do(r, http.MethodPost, "/login", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, strconv.Itoa(len(body)), w.Body.String())
}
