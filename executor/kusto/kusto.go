// Package kusto implements core.Executor against the Azure Data Explorer
// REST query endpoint.
//
// The backing HTTP client (including the AAD token source) is constructed
// lazily on first use behind a single-flight group, so the process starts
// even when the cluster or credentials are unavailable and concurrent first
// queries build exactly one client. Query rejections that arrive as a
// structured service error are surfaced as *core.ServiceError so the
// classifier can read the message; everything else (transport, auth, DNS)
// surfaces raw and lands in the system lane. The adapter is read-only: it
// only ever calls the query endpoint.
package kusto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/logging"
)

// maxResponseBytes bounds how much of a query response is read.
const maxResponseBytes = 64 << 20

// Options configure the executor.
type Options struct {
	// Endpoint is the cluster URL, e.g. https://mycluster.kusto.windows.net.
	Endpoint string
	// Database is the database queries run against.
	Database string

	// Service principal credentials. When ClientSecret is empty the client
	// falls back to unauthenticated requests (local emulators).
	ClientID     string
	ClientSecret string
	TenantID     string

	// HTTPClient overrides the lazily built client entirely. Used in tests.
	HTTPClient *http.Client

	// Timeout bounds a single query round trip (default 60s).
	Timeout time.Duration

	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Client is a lazily connected Kusto query executor. Safe for concurrent use.
type Client struct {
	opts   Options
	logger logging.Logger

	mu         sync.Mutex
	httpClient *http.Client
	group      singleflight.Group
}

// New creates an executor for the given cluster and database.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		Timeout: 60 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{
		opts:       opts,
		logger:     logging.OrNoOp(opts.Logger),
		httpClient: opts.HTTPClient,
	}
}

// Execute implements core.Executor. It runs the validated query and returns
// the primary result table as rows keyed by column name.
func (c *Client) Execute(ctx context.Context, query string) ([]core.Row, error) {
	hc, err := c.client()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"db":  c.opts.Database,
		"csl": query,
	})
	if err != nil {
		return nil, fmt.Errorf("encode query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint+"/v1/rest/query", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-ms-client-request-id", "kustopilot;"+uuid.NewString())

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read query response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.queryError(resp.StatusCode, body)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("query executed", "rows", len(rows), "duration", time.Since(start))
	return rows, nil
}

// Close releases the backing connection pool. The client can be rebuilt
// lazily if Execute is called again.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
	return nil
}

// client returns the shared HTTP client, building it on first use. The
// single-flight group guarantees concurrent callers construct one client;
// a benign race on re-check reuses the first stored result.
func (c *Client) client() (*http.Client, error) {
	c.mu.Lock()
	if c.httpClient != nil {
		hc := c.httpClient
		c.mu.Unlock()
		return hc, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("client", func() (any, error) {
		built := c.buildClient()

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.httpClient == nil {
			c.httpClient = built
		}
		return c.httpClient, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Client), nil
}

// buildClient constructs the HTTP client, wiring the AAD client-credentials
// token source when a service principal is configured.
func (c *Client) buildClient() *http.Client {
	base := &http.Client{Timeout: c.opts.Timeout}
	if c.opts.ClientSecret == "" {
		c.logger.Warn("no client secret configured, querying without authentication")
		return base
	}

	cfg := clientcredentials.Config{
		ClientID:     c.opts.ClientID,
		ClientSecret: c.opts.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", c.opts.TenantID),
		Scopes:       []string{c.opts.Endpoint + "/.default"},
	}

	// Token refreshes must outlive any single request context.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	c.logger.Info("kusto client initialized", "endpoint", c.opts.Endpoint, "database", c.opts.Database)
	return cfg.Client(ctx)
}

// queryError maps a non-200 response. A structured rejection becomes a
// *core.ServiceError whose message the classifier inspects; anything else is
// returned raw and defaults to the system lane.
func (c *Client) queryError(status int, body []byte) error {
	if status == http.StatusBadRequest {
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
			return &core.ServiceError{Code: envelope.Error.Code, Message: envelope.Error.Message}
		}
	}
	return fmt.Errorf("query failed: status %d: %s", status, truncate(string(body), 512))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
