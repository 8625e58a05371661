// Package remote talks to the cloud backend, a PostgREST-style REST
// service exposing table inserts/selects/updates and named remote
// procedures. Any non-2xx response is treated as failure; this layer
// does not distinguish transient from permanent errors.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"worklog-backend/config"
)

// Client is the remote backend surface consumed by the sync repository
// and the accounts service.
type Client interface {
	// Insert writes one row into table.
	Insert(ctx context.Context, table string, payload any) error
	// InsertReturning writes one row and decodes the created row
	// (with backend-assigned columns) into dest.
	InsertReturning(ctx context.Context, table string, payload, dest any) error
	// Select decodes all rows matching the equality filters into dest
	// (a pointer to a slice). Order is a PostgREST order expression
	// such as "created_at.desc" and may be empty.
	Select(ctx context.Context, table string, filters map[string]any, order string, dest any) error
	// SelectSingle decodes at most one matching row into dest and
	// reports whether a row was found.
	SelectSingle(ctx context.Context, table string, filters map[string]any, dest any) (bool, error)
	// Update applies patch to all rows matching the equality filters.
	Update(ctx context.Context, table string, filters map[string]any, patch any) error
	// Rpc invokes a named remote procedure with the given parameters.
	Rpc(ctx context.Context, fn string, params any) error
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// HTTPClient implements Client against a configured base URL.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client from configuration. An invalid proxy
// URL is logged and ignored, matching how the service treats other
// optional config.
func NewHTTPClient(cfg *config.RemoteConfig) *HTTPClient {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: invalid proxy URL %q: %v. Remote client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &HTTPClient{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *HTTPClient) Insert(ctx context.Context, table string, payload any) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/"+table, nil, payload, nil, "return=minimal")
}

func (c *HTTPClient) InsertReturning(ctx context.Context, table string, payload, dest any) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/"+table, nil, payload, dest, "return=representation")
}

func (c *HTTPClient) Select(ctx context.Context, table string, filters map[string]any, order string, dest any) error {
	query := filterQuery(filters)
	if order != "" {
		query.Set("order", order)
	}
	return c.do(ctx, http.MethodGet, "/rest/v1/"+table, query, nil, dest, "")
}

func (c *HTTPClient) SelectSingle(ctx context.Context, table string, filters map[string]any, dest any) (bool, error) {
	query := filterQuery(filters)
	query.Set("limit", "1")

	var rows []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/rest/v1/"+table, query, nil, &rows, ""); err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s row: %w", table, err)
	}
	return true, nil
}

func (c *HTTPClient) Update(ctx context.Context, table string, filters map[string]any, patch any) error {
	return c.do(ctx, http.MethodPatch, "/rest/v1/"+table, filterQuery(filters), patch, nil, "return=minimal")
}

func (c *HTTPClient) Rpc(ctx context.Context, fn string, params any) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/rpc/"+fn, nil, params, nil, "")
}

func filterQuery(filters map[string]any) url.Values {
	query := url.Values{}
	for column, value := range filters {
		query.Set(column, fmt.Sprintf("eq.%v", value))
	}
	return query
}

// do performs one request against the backend. dest, when non-nil,
// receives the decoded JSON response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, payload, dest any, prefer string) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	if dest != nil && method == http.MethodPost {
		// PostgREST wraps representation responses in an array unless
		// asked for a single object.
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if dest != nil {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(body)
}
