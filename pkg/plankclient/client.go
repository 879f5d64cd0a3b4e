// Package plankclient is a Go client for the plankdash HTTP API.
package plankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBody bounds how much of a response the client reads.
const maxBody = 16 << 20

// Client talks to a running plankdash server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Health fetches the server's health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/api/v1/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Snapshot fetches the last generated snapshot. Returns an error matching
// ErrNotFound when nothing has been generated yet.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/snapshot", nil)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(resp)
}

// Regenerate asks the server to run the pipeline now. An empty today uses
// the server's clock.
func (c *Client) Regenerate(ctx context.Context, today string) (*Snapshot, error) {
	var body io.Reader
	if today != "" {
		data, err := json.Marshal(map[string]string{"today": today})
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/snapshot", body)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(resp)
}

// SnapshotURL fetches a pre-signed download URL. Returns an error matching
// ErrNotFound when the server has no remote publisher.
func (c *Client) SnapshotURL(ctx context.Context) (*SnapshotURL, error) {
	var u SnapshotURL
	if err := c.getJSON(ctx, "/api/v1/snapshot/url", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends a request and converts non-2xx responses into *APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	_ = json.Unmarshal(data, apiErr)
	apiErr.StatusCode = resp.StatusCode
	return nil, apiErr
}

func decodeSnapshot(resp *http.Response) (*Snapshot, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	s.Raw = data
	s.RunID = resp.Header.Get("X-Run-ID")
	return &s, nil
}
