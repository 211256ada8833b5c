package client

import (
	"fmt"
	"net/http"
)

// APIError wraps any non-2xx response with enough context to act on it.
type APIError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.Status, e.Body)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsForbidden reports whether err is an APIError with status 403. A 403 is
// never retried automatically.
func IsForbidden(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusForbidden
}
