package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/response"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/validation"
)

// bindRecord decodes the body into a generic record for rule set validation.
// On failure the response has already been written.
func bindRecord(c *gin.Context) (map[string]interface{}, bool) {
	var record map[string]interface{}
	if err := c.ShouldBindJSON(&record); err != nil || record == nil {
		response.Fail(c, response.KindValidation, msgInvalidBody)
		return nil, false
	}
	return record, true
}

func rejectInvalid(c *gin.Context, log logr.Logger, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.ValidationFailed(c, verr)
		return
	}
	log.Error(err, "validation could not run")
	response.Fail(c, response.KindInternal, msgSomethingWentWrong)
}

// pick keeps only the listed keys of record.
func pick(record map[string]interface{}, keys []string) map[string]interface{} {
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := record[k]; ok {
			out[k] = v
		}
	}
	return out
}

func stringField(record map[string]interface{}, key string) string {
	s, _ := record[key].(string)
	return s
}
