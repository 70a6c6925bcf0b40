package backend

import (
	"errors"
	"fmt"
)

// Common errors returned by the backend client.
var (
	// ErrAuthError indicates a missing or rejected API key.
	ErrAuthError = errors.New("backend authentication error")

	// ErrRateLimited indicates the backend refused the request for rate.
	ErrRateLimited = errors.New("backend rate limit exceeded")

	// ErrNetworkError indicates the backend could not be reached.
	ErrNetworkError = errors.New("network error communicating with backend")

	// ErrInvalidResponse indicates an unexpected response body.
	ErrInvalidResponse = errors.New("invalid response from backend")

	// ErrEmptyTopic is returned before any request when no topic is given.
	ErrEmptyTopic = errors.New("topic is required")
)

// APIError represents a non-success HTTP response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsUnavailable returns true if the backend could not be reached or failed
// on its side.
func IsUnavailable(err error) bool {
	if errors.Is(err, ErrNetworkError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
