package crawler

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrOriginUnreachable is returned when the origin probe fails.
	// The crawl ends in the failed state with zero pages.
	ErrOriginUnreachable = errors.New("origin unreachable")

	// ErrPageFetchFailed marks a single page that could not be fetched.
	// The crawl goes on without that page's record and links.
	ErrPageFetchFailed = errors.New("page fetch failed")

	// ErrParseFailure marks a page that was fetched but could not be parsed.
	// It is a kind of ErrPageFetchFailed.
	ErrParseFailure = fmt.Errorf("%w: parse failure", ErrPageFetchFailed)
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap makes errors.Is(err, ErrPageFetchFailed) hold.
func (e *StatusError) Unwrap() error {
	return ErrPageFetchFailed
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
