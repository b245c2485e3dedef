package response

import "net/http"

// Kind classifies a failure for the client.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindUnauthenticated
	KindRateLimited
	KindConflict
	KindInternal
	KindUnavailable
)

var statusByKind = map[Kind]int{
	KindValidation:      http.StatusBadRequest,
	KindNotFound:        http.StatusNotFound,
	KindUnauthenticated: http.StatusUnauthorized,
	KindRateLimited:     http.StatusTooManyRequests,
	KindConflict:        http.StatusBadRequest,
	KindInternal:        http.StatusInternalServerError,
	KindUnavailable:     http.StatusServiceUnavailable,
}

var defaultMessage = map[Kind]string{
	KindValidation:      "Validation failed.",
	KindNotFound:        "Resource not found.",
	KindUnauthenticated: "Unauthorized.",
	KindRateLimited:     "Too many requests.",
	KindConflict:        "Resource already exists.",
	KindInternal:        "Something went wrong.",
	KindUnavailable:     "Service unavailable.",
}

// Status returns the HTTP status for k; unknown kinds map to 500.
func (k Kind) Status() int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Message returns the generic message for k.
func (k Kind) Message() string {
	if m, ok := defaultMessage[k]; ok {
		return m
	}
	return defaultMessage[KindInternal]
}
