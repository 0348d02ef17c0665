// Package fetch downloads profile pages and reduces their HTML to readable text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds a single page download
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the importer to profile hosts
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeBuilder/1.0)"
	// MaxBodySize caps how much of a page is read
	MaxBodySize = 5 << 20
)

var (
	// ErrInvalidURL is returned for anything other than an absolute http(s) URL
	ErrInvalidURL = errors.New("invalid URL")
	// ErrStatus is returned when the host answers with a non-200 status
	ErrStatus = errors.New("unexpected HTTP status")
)

// Error records the URL and step at which a download failed
type Error struct {
	URL string
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Page is a downloaded document
type Page struct {
	URL         string
	Platform    Platform
	HTML        string
	ContentType string
	StatusCode  int
}

// Client downloads pages over plain HTTP
type Client struct {
	httpClient   *http.Client
	timeout      time.Duration
	allowPrivate bool
	userAgent    string
	header       http.Header
	maxBody      int64
}

// Option customises a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent overrides DefaultUserAgent
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHeader adds a header to every request
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// AllowPrivateNetworks lets the client reach loopback, private and
// link-local addresses, which are refused by default.
func AllowPrivateNetworks() Option {
	return func(c *Client) { c.allowPrivate = true }
}

// WithHTTPClient replaces the underlying transport client. The caller's
// client is used as is, without the address guard.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a Client with DefaultTimeout and DefaultUserAgent.
// Connections to non-public addresses fail with ErrBlockedAddress unless
// AllowPrivateNetworks is given.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		header:    make(http.Header),
		maxBody:   MaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout, Transport: newTransport(c.allowPrivate)}
	}
	return c
}

// ParseURL accepts absolute http and https URLs only
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "parse", Err: fmt.Errorf("%w: %w", ErrInvalidURL, err)}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &Error{URL: rawURL, Op: "parse", Err: ErrInvalidURL}
	}
	return u, nil
}

// Get downloads rawURL. On a non-200 status the page is returned together
// with an error wrapping ErrStatus.
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "request", Err: err}
	}
	for key, values := range c.header {
		req.Header[key] = values
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "read", Err: err}
	}

	page := &Page{
		URL:         rawURL,
		Platform:    DetectPlatform(rawURL),
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return page, &Error{URL: rawURL, Op: "status", Err: fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)}
	}
	return page, nil
}
