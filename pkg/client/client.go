// Package client is a Go client for the sharkdb HTTP API. It is the client
// the bundled CLI, demo and load generator use; values are opaque bytes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrNotFound = errors.New("client: not found")
	ErrConflict = errors.New("client: already exists")
)

// APIError is any non-2xx response that is not a plain not-found/conflict.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: server returned %d: %s", e.Status, e.Message)
}

type Entry struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

type Stats struct {
	Count        int       `json:"count"`
	TotalBytes   int64     `json:"total_bytes"`
	LastModified time.Time `json:"last_modified"`
	Height       int       `json:"height"`
	MinKey       string    `json:"min_key"`
	MaxKey       string    `json:"max_key"`
}

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("client: build request: %w", err)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("client: read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// call runs a request and maps error statuses onto sentinels.
func (c *Client) call(ctx context.Context, method, path string, body []byte, out any) error {
	status, respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status >= 400 {
		return statusError(status, respBody)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("client: decode response: %w", err)
		}
	}
	return nil
}

func statusError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, envelope.Error)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, envelope.Error)
	}
	return &APIError{Status: status, Message: envelope.Error}
}

func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) CreateTable(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodPost, "/tables?name="+url.QueryEscape(name), nil, nil)
}

func (c *Client) DropTable(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, "/tables/"+url.PathEscape(name), nil, nil)
}

func (c *Client) RenameTable(ctx context.Context, oldName, newName string) error {
	path := "/tables/" + url.PathEscape(oldName) + "/rename?to=" + url.QueryEscape(newName)
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) TruncateTable(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodPost, "/tables/"+url.PathEscape(name)+"/truncate", nil, nil)
}

func (c *Client) DumpTable(ctx context.Context, name, file string) error {
	path := "/tables/" + url.PathEscape(name) + "/dump"
	if file != "" {
		path += "?file=" + url.QueryEscape(file)
	}
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) LoadTable(ctx context.Context, name, file string) error {
	path := "/tables/" + url.PathEscape(name) + "/load"
	if file != "" {
		path += "?file=" + url.QueryEscape(file)
	}
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.call(ctx, http.MethodGet, "/tables", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func kvPath(table, key string) string {
	return "/kv/" + url.PathEscape(table) + "/" + url.PathEscape(key)
}

// Put stores value under key and reports whether the key was newly created.
func (c *Client) Put(ctx context.Context, table, key string, value []byte) (bool, error) {
	var resp struct {
		Created bool `json:"created"`
	}
	if err := c.call(ctx, http.MethodPut, kvPath(table, key), value, &resp); err != nil {
		return false, err
	}
	return resp.Created, nil
}

// Get returns the raw value bytes, or ErrNotFound.
func (c *Client) Get(ctx context.Context, table, key string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, kvPath(table, key), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, statusError(status, body)
	}
	return body, nil
}

func (c *Client) Exists(ctx context.Context, table, key string) (bool, error) {
	status, _, err := c.do(ctx, http.MethodHead, kvPath(table, key), nil)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, &APIError{Status: status}
}

// Delete removes key and reports whether it existed.
func (c *Client) Delete(ctx context.Context, table, key string) (bool, error) {
	var resp struct {
		Existed bool `json:"existed"`
	}
	if err := c.call(ctx, http.MethodDelete, kvPath(table, key), nil, &resp); err != nil {
		return false, err
	}
	return resp.Existed, nil
}

// Scan returns entries in key order from start (inclusive), all of them when
// limit is 0.
func (c *Client) Scan(ctx context.Context, table, start string, limit int) ([]Entry, error) {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	path := "/scan/" + url.PathEscape(table)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var entries []Entry
	if err := c.call(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PrefixScan returns entries whose keys start with prefix, in key order.
func (c *Client) PrefixScan(ctx context.Context, table, prefix string, limit int) ([]Entry, error) {
	q := url.Values{}
	q.Set("prefix", prefix)
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var entries []Entry
	if err := c.call(ctx, http.MethodGet, "/prefix/"+url.PathEscape(table)+"?"+q.Encode(), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) Stats(ctx context.Context, table string) (Stats, error) {
	var stats Stats
	if err := c.call(ctx, http.MethodGet, "/stats/"+url.PathEscape(table), nil, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
