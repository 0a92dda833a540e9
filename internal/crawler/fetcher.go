package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Fetch defaults.
const (
	// DefaultUserAgent is a desktop browser string; some sites serve
	// reduced pages to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36"

	// DefaultMaxBodySize caps the bytes read from one response.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Response is a fetched page.
type Response struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body holds at most the fetcher's maximum body size.
	Body []byte
}

// Fetcher retrieves pages.
type Fetcher interface {
	// Fetch GETs url. Non-2xx responses and transport failures are errors
	// wrapping ErrPageFetchFailed.
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher is a Fetcher over net/http with bounded retries.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	cookie      string
	headers     map[string]string
	maxBodySize int64

	// retries is the number of extra attempts after a temporary failure.
	retries       int
	retryBase     time.Duration
	retryMaxDelay time.Duration

	logger *slog.Logger
}

var _ Fetcher = (*HTTPFetcher)(nil)

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithCookie sets the Cookie header sent with every request.
// Format: "name=value" or "name1=value1; name2=value2"
func WithCookie(cookie string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize caps the bytes read from a response.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithRetry enables up to retries extra attempts after temporary failures.
// The delay starts at base and doubles after each attempt up to maxDelay.
func WithRetry(retries int, base, maxDelay time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.retries = retries
		f.retryBase = base
		f.retryMaxDelay = maxDelay
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a fetcher using client. The per-request timeout is
// the client's Timeout. A nil client gets a 15 second timeout.
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	f := &HTTPFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	delay := f.retryBase
	attempts := 0
	for {
		resp, err := f.fetchOnce(ctx, url)
		if err == nil {
			return resp, nil
		}
		attempts++
		if attempts > f.retries || !temporary(err) || ctx.Err() != nil {
			return nil, err
		}

		f.logger.Debug("retrying fetch", "url", url, "attempt", attempts, "delay", delay, "error", err)
		if delay > 0 {
			if f.retryMaxDelay > 0 && delay > f.retryMaxDelay {
				delay = f.retryMaxDelay
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("%w: %s: %w", ErrPageFetchFailed, url, ctx.Err())
			case <-timer.C:
			}
			delay *= 2
		}
	}
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPageFetchFailed, url, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPageFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrPageFetchFailed, url, err)
	}

	return &Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// temporary reports whether a failed fetch is worth retrying: transport
// errors and 429 or 5xx responses are, other statuses and cancellation
// are not.
func temporary(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
