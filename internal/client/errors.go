package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNetwork matches any *NetworkError with errors.Is.
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if body == "" {
		body = "Unknown error"
	}
	return fmt.Sprintf("Error %d: %s", e.StatusCode, body)
}

func (e *APIError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) Forbidden() bool    { return e.StatusCode == http.StatusForbidden }
func (e *APIError) RateLimited() bool  { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) NotFound() bool     { return e.StatusCode == http.StatusNotFound }

// NetworkError is a request that never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsTimeout reports whether err is a deadline or transport timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
