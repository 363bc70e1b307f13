package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTimeout is the default per-request timeout for waifud API calls.
const HTTPTimeout = 30 * time.Second

// RemoteError is returned when the waifud API answers with an unexpected
// status. Body is the raw response body, kept verbatim for display.
type RemoteError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: wrong status code: %d\n\n%s", e.Method, e.URL, e.Status, e.Body)
}

// NewHTTPClient creates the HTTP client used for waifud API calls.
// Every request it sends carries userAgent.
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	if timeout <= 0 {
		timeout = HTTPTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &uaTransport{ua: userAgent, base: http.DefaultTransport},
	}
}

type uaTransport struct {
	ua   string
	base http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.ua != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.ua)
	}
	return t.base.RoundTrip(req)
}

// DoAPI sends an HTTP request and validates the response status code.
// url must be a fully-formed URL (e.g., "http://waifud:23818/api/v1/distros").
// Returns the response body on success. There is no retry: every call is
// issued exactly once.
func DoAPI(ctx context.Context, hc *http.Client, method, url string, body []byte, expectedStatus int) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s → %d (read body: %w)", method, url, resp.StatusCode, err)
	}
	if resp.StatusCode != expectedStatus {
		return nil, &RemoteError{
			Method: method,
			URL:    url,
			Status: resp.StatusCode,
			Body:   string(rb),
		}
	}
	return rb, nil
}
