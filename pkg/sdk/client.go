package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client calls a docdex server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search runs a query and returns the requested page of results.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	var resp SearchResponse
	err := c.do(ctx, http.MethodPost, "/v1/search", req, &resp)
	return resp, err
}

// Analyze runs a query and returns statistics over the visible page.
func (c *Client) Analyze(ctx context.Context, req SearchRequest) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodPost, "/v1/analyze", req, &resp)
	return resp, err
}

// Ingest upserts chunks, replacing each named document's chunks wholesale.
func (c *Client) Ingest(ctx context.Context, chunks []Chunk) (IngestResponse, error) {
	var resp IngestResponse
	err := c.do(ctx, http.MethodPost, "/v1/chunks", map[string][]Chunk{"chunks": chunks}, &resp)
	return resp, err
}

// Invalidate drops all cached result pages on the server.
func (c *Client) Invalidate(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/invalidate", nil, nil)
}

// History returns the most recent recorded searches.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	path := "/v1/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Entries []HistoryEntry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var resp Health
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("docdex: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("docdex: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("docdex: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("docdex: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	if apiErr.Code == "" {
		apiErr.Code = "http_" + strconv.Itoa(resp.StatusCode)
	}
	return apiErr
}
