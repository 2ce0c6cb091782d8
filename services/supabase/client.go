// Package supabase is the Remote Data Service client: row-level CRUD on
// the notes table through PostgREST, and session handling through the
// GoTrue auth API.
//
// The client is deliberately thin. It shapes requests, attaches the
// project anon key and the caller's access token, and decodes either the
// result rows or a structured APIError. All note-list semantics (ordering
// as authoritative state, zero-row contract checks, label derivation)
// live in the store, not here.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient allows injecting a mock transport in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds connection settings for a Supabase project.
type Config struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co.
	URL string
	// AnonKey is the project's public API key, sent on every request.
	AnonKey string
	// HTTPClient overrides the default transport. Nil uses a client
	// with a 30s timeout.
	HTTPClient HTTPClient
}

// Client talks to one Supabase project.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient HTTPClient
}

// NewClient validates cfg and returns a ready Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase: project URL is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("supabase: invalid project URL: %w", err)
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("supabase: anon key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		httpClient: httpClient,
	}, nil
}

// do performs one request against the project. token is the caller's
// access token; when empty the anon key doubles as the bearer, matching
// the provider's client convention. The response body is returned raw so
// callers can decode rows or nothing at all.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, token string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("supabase: encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("supabase: build request: %w", err)
	}

	bearer := token
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, data)
	}
	return data, nil
}
