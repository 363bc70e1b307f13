// Package client talks to the waifud HTTP API. Every method is a single
// request/response round trip; nothing is cached and nothing is retried.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/projecteru2/waifuadmin/utils"
	"github.com/projecteru2/waifuadmin/version"
)

// ErrInvalidID is returned before any request when an instance id is not a UUID.
var ErrInvalidID = errors.New("invalid instance id")

// Client is a waifud API client bound to one base URL.
type Client struct {
	base *url.URL
	hc   *http.Client
}

// New creates a Client for the waifud instance at baseURL
// (e.g. "http://waifud:23818"). A zero timeout uses utils.HTTPTimeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse waifud url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("waifud url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("waifud url %q: missing host", baseURL)
	}
	return &Client{
		base: u,
		hc:   utils.NewHTTPClient(timeout, version.UserAgent()),
	}, nil
}

// NewWithHTTPClient is New with a caller-provided http.Client (tests use
// httptest's client).
func NewWithHTTPClient(baseURL string, hc *http.Client) (*Client, error) {
	c, err := New(baseURL, 0)
	if err != nil {
		return nil, err
	}
	c.hc = hc
	return c, nil
}

// endpoint appends path, already escaped, to the base URL.
func (c *Client) endpoint(path string) string {
	u := *c.base
	u.RawQuery, u.Fragment = "", ""
	return strings.TrimSuffix(u.String(), "/") + path
}

// do issues one request. in, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}
	rb, err := utils.DoAPI(ctx, c.hc, method, c.endpoint(path), body, http.StatusOK)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rb, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func instanceID(id string) (string, error) {
	norm, err := utils.NormalizeUUID(id)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return norm, nil
}
