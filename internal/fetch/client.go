// Package fetch retrieves dataset files over HTTP or from the local
// filesystem and decodes them into in-memory tripload.Datasets.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// Config configures the HTTP client.
//
// Zero values keep the behavior of a plain GET: no client timeout and
// http.DefaultTransport. Failures are not retried.
type Config struct {
	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// BaseHeaders are added to every request.
	BaseHeaders http.Header

	// Transport is an optional custom RoundTripper.
	Transport http.RoundTripper
}

// Client reads whole files into memory.
type Client struct {
	httpClient  *http.Client
	baseHeaders http.Header
}

// NewClient constructs a Client from Config.
func NewClient(cfg Config) *Client {
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	hdr := http.Header{}
	for k, vs := range cfg.BaseHeaders {
		for _, v := range vs {
			hdr.Add(k, v)
		}
	}
	if hdr.Get("User-Agent") == "" {
		hdr.Set("User-Agent", tripload.DefaultAppName)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		baseHeaders: hdr,
	}
}

// Read returns the full contents of rawURL. http and https URLs are fetched
// with GET; file:// URLs and bare paths are read from disk.
func (c *Client) Read(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: url must not be empty", tripload.ErrFetchFailed)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// No scheme (or a Windows drive letter): treat as a local path.
		return readFile(rawURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return c.Get(ctx, rawURL)
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + u.Path
		}
		return readFile(path)
	default:
		return nil, fmt.Errorf("%w: unsupported URL scheme %q", tripload.ErrFetchFailed, u.Scheme)
	}
}

// Get performs one HTTP GET and returns the body. Any non-2xx status is an error.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", tripload.ErrFetchFailed, err)
	}
	for k, vs := range c.baseHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", tripload.ErrFetchFailed, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: unexpected status %s", tripload.ErrFetchFailed, rawURL, resp.Status)
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("%w: GET %s: read body: %w", tripload.ErrFetchFailed, rawURL, err)
	}
	return buf.Bytes(), nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tripload.ErrFetchFailed, err)
	}
	return data, nil
}
