// Package fetch retrieves vendor documentation pages over HTTP.
//
// The client carries a fixed default header set and a request timeout;
// it performs no retries and no caching. A failed request is returned
// as a typed *Error and the caller decides what to do with it.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Kind discriminates fetch failure classes.
type Kind string

const (
	// KindTimeout reports a request that exceeded its deadline.
	KindTimeout Kind = "TIMEOUT"
	// KindHTTPStatus reports a response outside the 2xx range.
	KindHTTPStatus Kind = "HTTP_STATUS"
	// KindConnection reports a transport failure before any response.
	KindConnection Kind = "CONNECTION"
)

// Error is a typed fetch failure.
type Error struct {
	Kind   Kind
	URL    string
	Status int // HTTP status code, set only for KindHTTPStatus
	err    error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, strings.ToLower(string(e.Kind)), e.err)
}

func (e *Error) Unwrap() error { return e.err }

// IsKind reports whether err is a fetch *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ferr *Error
	return errors.As(err, &ferr) && ferr.Kind == kind
}

// Page is a fetched documentation page: the raw body bytes plus the
// status code that delivered them.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Config holds the fetcher's transport settings. Vendor documentation
// servers reject the default Go user agent, so a browser user agent is
// part of the default header set rather than an option.
type Config struct {
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
	Accept    string        `koanf:"accept"`
}

// NewDefaultConfig returns transport settings matching what the vendor
// site accepts.
func NewDefaultConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Accept:    "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8",
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	return nil
}

// Client issues GET requests against documentation pages. It is safe
// for concurrent use; every request is independent.
type Client struct {
	rc *resty.Client
}

// NewClient builds a client from config. The underlying transport does
// not retry; retry policy belongs to callers.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fetch config: %w", err)
	}

	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)
	if cfg.Accept != "" {
		rc.SetHeader("Accept", cfg.Accept)
	}

	return &Client{rc: rc}, nil
}

// Get fetches one page. Per-call headers are merged over the client's
// default set, caller values winning. Non-2xx responses, transport
// failures, and deadline hits come back as *Error with the matching
// kind; the body is returned only for success.
func (c *Client) Get(ctx context.Context, pageURL string, headers map[string]string) (*Page, error) {
	req := c.rc.R().SetContext(ctx)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Get(pageURL)
	if err != nil {
		return nil, classifyTransport(pageURL, err)
	}
	if !resp.IsSuccess() {
		return nil, &Error{Kind: KindHTTPStatus, URL: pageURL, Status: resp.StatusCode()}
	}

	return &Page{URL: pageURL, StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// classifyTransport maps a transport error onto the failure taxonomy.
// Deadline hits from either the client timeout or the caller's context
// are timeouts; everything else that failed before a response is a
// connection failure.
func classifyTransport(pageURL string, err error) *Error {
	kind := KindConnection
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	return &Error{Kind: kind, URL: pageURL, err: err}
}
