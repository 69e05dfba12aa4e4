package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quitbridge-backend/internal/platform/ctxutil"
)

// AttachRequestContext guarantees downstream handlers a non-nil context.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxutil.Default(c.Request.Context()))
		c.Next()
	}
}
