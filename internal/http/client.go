package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/proxy"
)

// DefaultUserAgent is sent when no other User-Agent is configured.
const DefaultUserAgent = "album-downloader"

// StatusError is returned by Get when the server answers with a status
// outside the 2xx range.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// IsSuccess reports whether code is in the 2xx range.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// Client wraps HTTP operations with the downloader's configuration.
//
// The underlying http.Client has no overall timeout: audio bodies are
// streamed and may take long. Deadlines are applied per request through
// the context.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTransport replaces the transport of the underlying http.Client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// NewSOCKS5Transport returns a transport that dials every connection
// through the SOCKS5 proxy at addr. Credentials are sent only when both
// username and password are set. Host names are resolved by the proxy.
func NewSOCKS5Transport(addr, username, password string) (*http.Transport, error) {
	var auth *proxy.Auth
	if len(username) > 0 && len(password) > 0 {
		auth = &proxy.Auth{
			User:     username,
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", addr, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("create socks5 dialer: %w", err)
	}

	dc, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("failed to cast proxy to ContextDialer")
	}

	t := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
	t.Proxy = nil
	t.DialContext = dc.DialContext

	return t, nil
}

// NewClient creates a new HTTP client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{}, //nolint:exhaustruct
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Open sends a GET request and returns the response as is.
//
// The status code is not checked. The caller owns resp.Body and must
// close it. Transport errors (DNS, connection, context) are returned
// unwrapped enough for errors.As to reach *net.DNSError.
func (c *Client) Open(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	return c.httpClient.Do(req)
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns a *StatusError if the response status is not 2xx.
func (c *Client) Get(ctx context.Context, url string) (b []byte, err error) {
	resp, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close response body: %w", closeErr)
		}
	}()

	if !IsSuccess(resp.StatusCode) {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for fetching text content like HTML.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
