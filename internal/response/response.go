// Package response writes the JSON envelopes every endpoint answers with:
// {"status":"success", ...payload} or {"status":"error","message":...}.
package response

import (
	"github.com/gin-gonic/gin"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/validation"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Body is the error envelope.
type Body struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Errors  []validation.Violation `json:"errors,omitempty"`
}

// Success writes status with payload merged next to "status":"success".
func Success(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"status": StatusSuccess}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Data writes {"status":"success","data":data}.
func Data(c *gin.Context, status int, data interface{}) {
	Success(c, status, gin.H{"data": data})
}

// Fail writes the error envelope for kind. An empty message falls back to the
// kind's generic one.
func Fail(c *gin.Context, kind Kind, message string) {
	c.JSON(kind.Status(), errorBody(kind, message))
}

// Abort is Fail for middleware: later handlers are not run.
func Abort(c *gin.Context, kind Kind, message string) {
	c.AbortWithStatusJSON(kind.Status(), errorBody(kind, message))
}

// ValidationFailed writes a 400 listing every violation in err.
func ValidationFailed(c *gin.Context, err *validation.Error) {
	c.JSON(KindValidation.Status(), Body{
		Status:  StatusError,
		Message: KindValidation.Message(),
		Errors:  err.Violations,
	})
}

func errorBody(kind Kind, message string) Body {
	if message == "" {
		message = kind.Message()
	}
	return Body{Status: StatusError, Message: message}
}
