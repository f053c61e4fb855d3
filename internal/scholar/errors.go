package scholar

import (
	"errors"
	"fmt"
)

// Errors produced by the graph API client. The relevance engine never
// sees these: client methods log and degrade to empty results. They
// exist so logs and tests can classify failures.
var (
	// ErrNotFound indicates the paper was not found.
	ErrNotFound = errors.New("not found in graph API")

	// ErrRateLimited indicates the remote rate limit was exceeded.
	ErrRateLimited = errors.New("graph API rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with graph API")

	// ErrInvalidResponse indicates an unexpected API response body.
	ErrInvalidResponse = errors.New("invalid response from graph API")
)

// APIError represents a non-2xx response from the graph API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsRateLimited returns true if the error indicates remote throttling.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}
