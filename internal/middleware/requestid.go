package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID принимает X-Request-ID клиента или генерирует новый и отдаёт его в ответе.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		c.Set(CtxRequestID, reqID)
		c.Header(RequestIDHeader, reqID)
		c.Next()
	}
}
