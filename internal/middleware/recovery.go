package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/response"
)

// Recovery turns a panic into a 500 envelope.
func Recovery(log logr.Logger) gin.HandlerFunc {
	log = log.WithName("recovery")
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error(fmt.Errorf("%v", recovered), "panic serving request", "method", c.Request.Method, "path", c.Request.URL.Path)
		response.Abort(c, response.KindInternal, "")
	})
}
