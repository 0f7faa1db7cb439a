package dataaccess

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthError indicates the data-access layer rejected the credentials.
	ErrAuthError = errors.New("data-access authentication error")

	// ErrRateLimited indicates the data-access layer is throttling us.
	ErrRateLimited = errors.New("data-access rate limit exceeded")

	// ErrNetworkError indicates the data-access layer could not be reached.
	ErrNetworkError = errors.New("network error communicating with data-access layer")

	// ErrInvalidResponse indicates a body that is not JSON.
	ErrInvalidResponse = errors.New("invalid response from data-access layer")
)

// APIError is a non-2xx answer from the data-access layer.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data-access error (status %d, path %s): %s", e.StatusCode, e.Path, e.Message)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func checkHTTPErrors(resp *http.Response, path string) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return nil
}
