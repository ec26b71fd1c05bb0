package notion

import (
	"fmt"
	"net/http"

	"github.com/Laisky/errors/v2"
)

// ErrNotFound is matched by any APIError with status 404
var ErrNotFound = errors.New("notion object not found")

// APIError is the error body returned by the Notion API
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api [%d] %s: %s", e.Status, e.Code, e.Message)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// clientError reports whether err is a request the caller got wrong,
// those do not count against the circuit breaker.
func clientError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.Status >= 400 && apiErr.Status < 500 &&
		apiErr.Status != http.StatusTooManyRequests
}
