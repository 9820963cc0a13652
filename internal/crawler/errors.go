package crawler

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidRequest marks a request rejected before any fetch was attempted.
var ErrInvalidRequest = errors.New("invalid request")

// HTTPError is a non-retryable HTTP status.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// RetriesExhaustedError reports a retryable failure that never succeeded.
// LastStatus is 0 when the final attempt failed below the HTTP layer.
type RetriesExhaustedError struct {
	URL        string
	Attempts   int
	LastStatus int
	Err        error
}

func (e *RetriesExhaustedError) Error() string {
	if e.LastStatus == 0 {
		return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("retries exhausted after %d attempts: last status %d %s",
		e.Attempts, e.LastStatus, http.StatusText(e.LastStatus))
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}

// StartPageUnreachableError is fatal for a crawl: the seed page failed.
type StartPageUnreachableError struct {
	URL string
	Err error
}

func (e *StartPageUnreachableError) Error() string {
	return fmt.Sprintf("start page %s unreachable: %v", e.URL, e.Err)
}

func (e *StartPageUnreachableError) Unwrap() error {
	return e.Err
}

// IsRetryableStatus reports whether an HTTP status is worth another attempt.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusForbidden, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

// StatusOf extracts the upstream HTTP status carried by a fetch error, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	var exhausted *RetriesExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted.LastStatus
	}
	return 0
}
