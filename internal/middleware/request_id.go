package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitdocsync/internal/pkg/logutil"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = newRequestID()
		}
		c.Writer.Header().Set("X-Request-Id", reqID)
		c.Set("request_id", reqID)
		logger := logutil.L().With(zap.String("request_id", reqID))
		c.Request = c.Request.WithContext(logutil.WithContext(c.Request.Context(), logger))
		c.Next()
	}
}

func newRequestID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
