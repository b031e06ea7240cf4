// Package remote talks to the remote search, sync and restore endpoints over HTTP.
package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/casenav/internal/logging"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

const (
	// DefaultTimeout bounds every remote call.
	DefaultTimeout = 30 * time.Second

	// SessionCookieName is the cookie carrying Auth.SessionCookie.
	SessionCookieName = "sessionid"

	maxBody = 16 << 20
)

// Client implements ports.SearchClient and ports.SyncClient.
type Client struct {
	http       *http.Client
	restoreURL string
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client. restoreURL may contain a "{domain}" placeholder.
func New(restoreURL string, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: DefaultTimeout},
		restoreURL: restoreURL,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ ports.SearchClient = (*Client)(nil)
	_ ports.SyncClient   = (*Client)(nil)
)

// PostForm posts req.Params form-encoded to req.URL.
func (c *Client) PostForm(ctx context.Context, req domain.RemoteRequest, auth domain.Auth) (*ports.RemoteResponse, error) {
	return c.post(ctx, req, auth)
}

// Sync posts a sync request. Non-2xx statuses are returned, not treated as errors.
func (c *Client) Sync(ctx context.Context, req domain.RemoteRequest, auth domain.Auth) (*ports.RemoteResponse, error) {
	return c.post(ctx, req, auth)
}

// Restore fetches the local storage payload for identity.
func (c *Client) Restore(ctx context.Context, identity domain.Identity, auth domain.Auth) ([]byte, error) {
	if c.restoreURL == "" {
		return nil, fmt.Errorf("restore url is not configured")
	}
	u, err := url.Parse(strings.ReplaceAll(c.restoreURL, "{domain}", url.PathEscape(identity.Domain)))
	if err != nil {
		return nil, fmt.Errorf("invalid restore url: %w", err)
	}
	q := u.Query()
	if identity.AsUser != "" {
		q.Set("as", identity.AsUser)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, auth)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("restore failed with status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) post(ctx context.Context, r domain.RemoteRequest, auth domain.Auth) (*ports.RemoteResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, strings.NewReader(r.Params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, auth)
}

func (c *Client) do(req *http.Request, auth domain.Auth) (*ports.RemoteResponse, error) {
	if auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	}
	if auth.SessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: auth.SessionCookie})
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Remote call failed", "method", req.Method, "url", req.URL.Redacted(), "err", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	c.logger.Debug("Remote call",
		"method", req.Method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return &ports.RemoteResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
