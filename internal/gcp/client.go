// Package gcp talks to the Google Cloud REST APIs: transport, method
// dispatch, list fetching, and long-running operation tracking.
package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Constants
const (
	RequestTimeout = 15 * time.Second
	PollInterval   = 2 * time.Second
	userAgent      = "tgcp/0.1.0"
)

// Client is the interface for raw API transport. URLs are absolute;
// responses are raw JSON bodies.
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
	Delete(ctx context.Context, url string) ([]byte, error)
}

// APIClient implements Client over net/http with bearer-token auth.
type APIClient struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
}

// NewAPIClient creates a client using the given token source.
func NewAPIClient(tokens oauth2.TokenSource) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: RequestTimeout},
		tokens:     tokens,
	}
}

func (c *APIClient) Get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil)
}

func (c *APIClient) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body)
}

func (c *APIClient) Delete(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, url, nil)
}

func (c *APIClient) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("api request", "method", method, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("api error", "method", method, "url", url, "status", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	slog.Debug("api response", "method", method, "url", url, "status", resp.StatusCode, "bytes", len(data))
	return data, nil
}

// Invoke performs the HTTP call described by a resolved CallSpec.
func Invoke(ctx context.Context, client Client, spec CallSpec) ([]byte, error) {
	switch spec.Verb {
	case http.MethodGet:
		return client.Get(ctx, spec.URL)
	case http.MethodPost:
		return client.Post(ctx, spec.URL, spec.Body)
	case http.MethodDelete:
		return client.Delete(ctx, spec.URL)
	default:
		return nil, fmt.Errorf("unsupported verb %q", spec.Verb)
	}
}
