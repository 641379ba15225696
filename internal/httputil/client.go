// Package httputil provides a hardened HTTP client and input validation utilities.
package httputil

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"

// MaxBody caps how much of any response body is read.
const MaxBody = 10 * 1024 * 1024

// StatusError reports a non-OK HTTP status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// NewClient creates a hardened HTTP client with secure defaults.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        20,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}
}

// LimitBody wraps a response body so at most MaxBody bytes are read.
func LimitBody(r io.Reader) io.Reader {
	return io.LimitReader(r, MaxBody)
}

// redact rewrites a transport error so the request URL it carries has its
// credentials stripped.
func redact(err error, rawURL string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: RedactQuery(rawURL), Err: uerr.Err}
	}
	return err
}

func newRequest(ctx context.Context, method, rawURL, accept string) (*http.Request, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	return req, nil
}

// Get performs a GET request with standard browser-like headers.
// The caller owns the response body.
func Get(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := newRequest(ctx, http.MethodGet, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, redact(err, rawURL)
	}
	return resp, nil
}

// Head performs a HEAD request and returns the status code.
func Head(ctx context.Context, client *http.Client, rawURL string) (int, error) {
	req, err := newRequest(ctx, http.MethodHead, rawURL, "*/*")
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, redact(err, rawURL)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// GetJSON performs a GET request and decodes a JSON response into v.
// Non-200 responses return a *StatusError.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, v any) error {
	req, err := newRequest(ctx, http.MethodGet, rawURL, "application/json")
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", redact(err, rawURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, URL: RedactQuery(rawURL)}
	}

	body, err := io.ReadAll(LimitBody(resp.Body))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
