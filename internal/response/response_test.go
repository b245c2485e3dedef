package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestKindStatus(t *testing.T) {
	tests := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindNotFound:        http.StatusNotFound,
		KindUnauthenticated: http.StatusUnauthorized,
		KindRateLimited:     http.StatusTooManyRequests,
		KindConflict:        http.StatusBadRequest,
		KindInternal:        http.StatusInternalServerError,
		KindUnavailable:     http.StatusServiceUnavailable,
		Kind(99):            http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.Status(), "kind %d", kind)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessMergesPayload(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusCreated, gin.H{"newEmployee": gin.H{"id": "1"}})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, map[string]interface{}{"id": "1"}, body["newEmployee"])
}

func TestFailUsesGenericMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, KindNotFound, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, map[string]interface{}{"status": "error", "message": "Resource not found."}, decode(t, w))
}

func TestAbortStopsChain(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, KindUnauthenticated, "Unauthorized. Please log in.")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized. Please log in.", decode(t, w)["message"])
}

func TestValidationFailedListsViolations(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ValidationFailed(c, &validation.Error{Violations: []validation.Violation{
		{Field: "dob", Rule: validation.RuleRequired, Message: "Date of birth is required"},
	}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Validation failed.", body["message"])
	require.Len(t, body["errors"], 1)
	assert.Equal(t, "dob", body["errors"].([]interface{})[0].(map[string]interface{})["field"])
}
