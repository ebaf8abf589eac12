package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned for responses outside the 2xx range
type StatusError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error returns the error message
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// Temporary reports whether the request is worth retrying
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NewStatusError creates a new status error
func NewStatusError(statusCode int, url, message string) *StatusError {
	return &StatusError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
	}
}

// IsNotFound reports whether err is a 404 StatusError
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
