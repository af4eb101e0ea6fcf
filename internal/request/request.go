// Package request defines the crawl request and response types routed
// between the host engine, the scheduler and the frontier.
package request

import "net/http"

// Request identifies a single fetch the crawl wants performed. The
// scheduler never mutates a Request; it only routes it between the
// frontier and the pending buffer, so callers may share one instance
// across those hand-offs.
type Request struct {
	URL     string
	Method  string
	Headers http.Header
	// Depth is the link distance from the seed that discovered this URL.
	Depth int
	// RedirectTimes counts redirect hops taken so far; zero means the
	// original fetch.
	RedirectTimes int
	// Meta carries host-engine data the scheduler passes through untouched.
	Meta map[string]any
}

// New builds a GET request for url at depth zero.
func New(url string) *Request {
	return &Request{URL: url, Method: http.MethodGet}
}

// Redirected reports whether the request is a redirect continuation
// rather than a fresh fetch.
func (r *Request) Redirected() bool {
	return r.RedirectTimes > 0
}

// Continuation derives the follow-up request for a redirect to location.
// Depth, method, headers and meta carry over; only the URL and the hop
// counter change.
func (r *Request) Continuation(location string) *Request {
	next := *r
	next.URL = location
	next.RedirectTimes = r.RedirectTimes + 1
	return &next
}

// Response carries a downloader outcome back through the scheduler to
// the frontier.
type Response struct {
	Request    *Request
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Location returns the redirect target header, if any.
func (r *Response) Location() string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get("Location")
}

// Redirect reports whether the response asks for another hop.
func (r *Response) Redirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400 && r.Location() != ""
}
