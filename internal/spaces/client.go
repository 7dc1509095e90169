// Package spaces is the client for the backend's space-provisioning API.
package spaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CreatePath is the backend route that provisions a new space.
const CreatePath = "/api/spaces"

// maxBodyBytes bounds how much of a success body is decoded.
const maxBodyBytes = 1 << 20

// Space is a provisioned meeting space.
type Space struct {
	ID string `json:"id"`
}

// Client issues space-creation requests to a backend. It performs exactly
// one request per call and never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero leaves the transport defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// NewClient returns a client for the backend at baseURL
// (e.g. "http://localhost:3000").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSpace asks the backend for a new space. Every error it returns is a
// *CreationError:
//
//   - 401 → KindAuthorization
//   - 419 → KindCapacityLimit
//   - any other non-2xx, transport failure, or malformed body → KindGeneric
func (c *Client) CreateSpace(ctx context.Context) (Space, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CreatePath, nil)
	if err != nil {
		return Space{}, &CreationError{Kind: KindGeneric, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Space{}, &CreationError{Kind: KindGeneric, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return Space{}, &CreationError{
			Kind:   classifyStatus(resp.StatusCode),
			Status: resp.StatusCode,
		}
	}

	var space Space
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&space); err != nil {
		return Space{}, &CreationError{
			Kind:   KindGeneric,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode body: %w", err),
		}
	}
	if space.ID == "" {
		return Space{}, &CreationError{
			Kind:   KindGeneric,
			Status: resp.StatusCode,
			Err:    errors.New("response has no space id"),
		}
	}
	return space, nil
}
