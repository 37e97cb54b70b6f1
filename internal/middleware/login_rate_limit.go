package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vregistry/internal/apperr"
)

const loginBodyLimit = 64 << 10

// LoginRateLimit ограничивает попытки входа по username (или IP) счётчиком в Redis.
// Без Redis и при ошибках Redis пропускает запрос.
func LoginRateLimit(cache *redis.Client, maxPerMin int, log *zap.Logger) gin.HandlerFunc {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *gin.Context) {
		if cache == nil {
			c.Next()
			return
		}

		key := "rl:login:" + loginSubject(c)
		ctx := c.Request.Context()
		cnt, err := cache.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("login rate limit: redis unavailable", zap.Error(err))
			c.Next()
			return
		}
		if cnt == 1 {
			cache.Expire(ctx, key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			abort(c, apperr.New(apperr.KindTooManyRequests, "Слишком много попыток входа, попробуйте позже", nil))
			return
		}
		c.Next()
	}
}

// loginSubject читает username из тела и возвращает тело обратно в запрос.
func loginSubject(c *gin.Context) string {
	if c.Request.Body != nil {
		body := c.Request.Body
		raw, err := io.ReadAll(io.LimitReader(body, loginBodyLimit))
		// прочитанное склеиваем с остатком, чтобы хендлер получил тело целиком
		c.Request.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(raw), body), body}
		if err == nil {
			var req struct {
				Username string `json:"username"`
			}
			_ = json.Unmarshal(raw, &req)
			if u := strings.ToLower(strings.TrimSpace(req.Username)); u != "" {
				return u
			}
		}
	}
	return c.ClientIP()
}
