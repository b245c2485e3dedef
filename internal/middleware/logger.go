package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
)

// RequestLogger logs one line per request once it has been served.
func RequestLogger(log logr.Logger) gin.HandlerFunc {
	log = log.WithName("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"size", c.Writer.Size(),
			"duration", time.Since(start).String(),
			"clientIP", c.ClientIP(),
			"referrer", c.Request.Referer(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}
		log.Info("HTTP request", kv...)
	}
}
