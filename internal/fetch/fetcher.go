// Package fetch provides the minimal HTTP downloader used by the host
// engine to exercise the scheduler end to end.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/frontierkit/crawlsched/internal/request"
)

// Fetcher retrieves a single page for a crawl request.
type Fetcher interface {
	Fetch(ctx context.Context, req *request.Request) (*request.Response, error)
}

// Config controls the HTTP fetcher.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
}

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 1 << 20
)

// HTTPFetcher fetches over net/http. Redirects are surfaced to the
// caller one hop at a time instead of being followed, so the engine can
// admit each continuation through the scheduler.
type HTTPFetcher struct {
	client *http.Client
	cfg    Config
}

// NewHTTPFetcher builds a fetcher with sane defaults for unset knobs.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cfg: cfg,
	}
}

// Fetch performs the request and returns the response with a bounded
// body read. A 3xx response is returned as-is, not followed.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *request.Request) (*request.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if f.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read side already handled

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &request.Response{
		Request:    req,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
