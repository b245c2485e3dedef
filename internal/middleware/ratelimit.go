package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/ratelimit"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/response"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// SkipPaths exempts any request whose path contains one of these.
	SkipPaths []string
	// KeyFunc picks the client key; defaults to the client IP.
	KeyFunc func(*gin.Context) string
	Now     func() time.Time
}

// RateLimit counts each request against l. Requests over the limit get a
// 429 and never reach the handler. When the counter store fails the request
// is let through and the failure logged.
func RateLimit(l *ratelimit.Limiter, log logr.Logger, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log = log.WithName("ratelimit").WithValues("group", l.Name())

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.Contains(path, skip) {
				c.Next()
				return
			}
		}

		d, err := l.Allow(c.Request.Context(), cfg.KeyFunc(c))
		if err != nil {
			log.Error(err, "counter store unavailable, allowing request", "path", path)
			c.Next()
			return
		}

		retryAfter := d.RetryAfter(cfg.Now())
		c.Header("RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
		c.Header("RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		c.Header("RateLimit-Reset", strconv.FormatInt(ceilSeconds(retryAfter), 10))

		if !d.Allowed {
			c.Header("Retry-After", strconv.FormatInt(ceilSeconds(retryAfter), 10))
			response.Abort(c, response.KindRateLimited, l.Message())
			return
		}
		c.Next()
	}
}

func ceilSeconds(d time.Duration) int64 {
	return int64((d + time.Second - 1) / time.Second)
}
