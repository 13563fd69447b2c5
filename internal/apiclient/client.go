// Package apiclient is the HTTP sink. Each record is posted as JSON to a path
// named after its kind.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rras-datagen/internal/entities"
	"rras-datagen/internal/sink"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Client posts records to the regulatory reporting API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sends an Authorization: Bearer header on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks API health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	var resp HealthResponse
	if _, err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Supports reports the kinds the API exposes. Loans are accepted and posted
// as loan exposures.
func (c *Client) Supports(kind entities.Kind) bool {
	switch kind {
	case entities.KindCustomer, entities.KindAccount, entities.KindLoan, entities.KindLoanExposure,
		entities.KindOffBalanceSheet, entities.KindCapitalComponent, entities.KindLiquidityCashflow:
		return true
	default:
		return false
	}
}

// Put posts rec. Any status other than 200 or 201 is a failure and is not
// retried.
func (c *Client) Put(ctx context.Context, rec entities.Record) sink.Result {
	kind := rec.RecordKind()
	if !c.Supports(kind) {
		return sink.Unsupported(kind)
	}

	var payload any = rec
	path := kind
	if lr, ok := rec.(*entities.LoanRecord); ok {
		payload = lr.Exposure()
		path = entities.KindLoanExposure
	}

	var created CreatedResponse
	status, err := c.post(ctx, "/"+string(path), payload, &created)
	res := sink.Result{Kind: kind, Key: sink.NaturalKey(rec), Status: status, Err: err}
	if err == nil && created.ID != "" {
		res.Key = created.ID
	}
	return res
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, result any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) (int, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, sink.Transient(fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, sink.Transient(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return resp.StatusCode, &StatusError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 512),
		}
	}

	if result != nil && len(bytes.TrimSpace(body)) > 0 {
		// Acknowledgements are informational; a body that isn't JSON still
		// counts as accepted.
		_ = json.Unmarshal(body, result)
	}
	return resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
