// Package kvstore is a minimal client for an Upstash-style REST key-value
// service. Commands are issued as GET requests against the REST endpoint
// and authenticated with a bearer token; responses carry a single
// {"result": ...} body where a null result means the key is absent.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yamato758/mikupost/internal/config"
)

const defaultTimeout = 5 * time.Second

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a KV client from configuration. The client is usable even
// when the KV service is unconfigured; Enabled reports whether calls can
// succeed.
func New(cfg config.KVConfig) *Client {
	return &Client{
		baseURL:    cfg.GetKVRestAPIURL(),
		token:      cfg.GetKVRestAPIToken(),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithEndpoint creates a client against an explicit endpoint,
// primarily for tests.
func NewWithEndpoint(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Enabled reports whether the remote KV service is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.token != ""
}

type commandResult struct {
	Result *string `json:"result"`
}

// Get reads a key. The second return value reports whether the key was
// present. Transport errors and non-2xx responses are returned as errors;
// callers decide whether absence and failure need distinguishing.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := c.command(ctx, fmt.Sprintf("get/%s", url.PathEscape(key)))
	if err != nil {
		return "", false, err
	}
	if result == nil {
		return "", false, nil
	}
	return *result, true, nil
}

// Set writes a key with an expiry in seconds. A ttl of zero writes
// without expiry.
func (c *Client) Set(ctx context.Context, key, value string, ttlSeconds int) error {
	path := fmt.Sprintf("set/%s/%s", url.PathEscape(key), url.PathEscape(value))
	if ttlSeconds > 0 {
		path = fmt.Sprintf("%s/ex/%d", path, ttlSeconds)
	}
	_, err := c.command(ctx, path)
	return err
}

// Del removes a key. Deleting an absent key is not an error.
func (c *Client) Del(ctx context.Context, key string) error {
	_, err := c.command(ctx, fmt.Sprintf("del/%s", url.PathEscape(key)))
	return err
}

func (c *Client) command(ctx context.Context, path string) (*string, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("kv service is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, path), nil)
	if err != nil {
		return nil, fmt.Errorf("kv request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kv request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kv response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("kv command failed: %s: %s", resp.Status, body)
	}

	var result commandResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("kv response: %w", err)
	}
	return result.Result, nil
}
