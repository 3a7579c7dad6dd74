package services

import (
	"errors"
	"net/http"
	"strings"

	"smallbasket/internal/client"
)

// User-facing messages shown for failed calls.
const (
	MsgNotAuthenticated = "Not authenticated. Please log in again."
	MsgUnauthorized     = "Authentication failed. Please log out and log in again."
	MsgForbidden        = "Access forbidden. Please check your account permissions."
	MsgRateLimited      = "Rate limit exceeded. Please wait before refreshing again."
)

var (
	ErrNotAuthenticated = errors.New("no user signed in")
	ErrRateLimited      = errors.New("client rate limit exceeded")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrMissingRequestID = errors.New("request id is required")
)

// Failure is what every service operation returns on error: a message fit
// for the user plus the underlying cause.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// fail wraps err as a *Failure. A nil err stays nil and an existing
// *Failure is returned unchanged.
func fail(err error) error {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Message: UserMessage(err), Err: err}
}

// UserMessage maps an error from the client layer to the text shown to the
// user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return MsgNotAuthenticated
	}
	if errors.Is(err, ErrRateLimited) {
		return MsgRateLimited
	}
	if errors.Is(err, ErrInvalidRating) || errors.Is(err, ErrMissingRequestID) {
		return capitalize(err.Error())
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return MsgUnauthorized
		case http.StatusForbidden:
			return MsgForbidden
		case http.StatusTooManyRequests:
			return MsgRateLimited
		case http.StatusInternalServerError:
			return "Server error. Please try again later.\nDetails: " + bodyOrUnknown(apiErr.Body)
		default:
			return apiErr.Error()
		}
	}

	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return "Network error: " + netErr.Err.Error()
	}
	return "Network error: " + err.Error()
}

// ShortMessage is the compact wording used for counters on the home
// screen.
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case client.StatusCode(err) == http.StatusTooManyRequests,
		errors.Is(err, ErrRateLimited),
		strings.Contains(err.Error(), "429"):
		return "Too many requests. Please wait."
	case client.IsTimeout(err), strings.Contains(strings.ToLower(err.Error()), "timeout"):
		return "Request timed out. Try again."
	case errors.Is(err, client.ErrNetwork), strings.Contains(strings.ToLower(err.Error()), "network"):
		return "Network error. Check connection."
	default:
		return "Failed to load count"
	}
}

func bodyOrUnknown(body string) string {
	if body == "" {
		return "Unknown error"
	}
	return body
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// validateRating enforces the 1..5 star range before a call goes out.
func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
