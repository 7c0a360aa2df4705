// Package panel is the HTTP adapter for the Pterodactyl API. It owns
// the one pooled connection shared by every tool invocation and
// normalizes the panel's two failure universes (HTTP error statuses
// and transport faults) into a single error channel.
package panel

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pteromcp/config"
)

// Surface selects which of the panel's two API families a request
// targets, and therefore which credential authenticates it.
type Surface string

const (
	// SurfaceClient is the user-scoped API (own servers, files, databases).
	SurfaceClient Surface = "client"
	// SurfaceApplication is the admin-scoped API (all servers, users, nodes).
	SurfaceApplication Surface = "application"
)

// Request describes one call against the panel. Path is resolved
// against the configured base URL with standard URL-joining rules,
// so a leading slash replaces the base path rather than extending it.
type Request struct {
	Method  string
	Path    string
	Surface Surface
	Body    map[string]any
	Query   url.Values
}

// Client issues authenticated requests against one panel. A single
// Client is shared by all tool invocations for the process lifetime
// and is safe for concurrent use without external locking.
type Client struct {
	baseURL   *url.URL
	clientKey string
	appKey    string
	http      *http.Client
	logger    *slog.Logger
}

// New builds a Client from cfg. It validates the base URL but opens no
// connection; the underlying pool fills lazily on first use.
func New(cfg config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	base, err := url.Parse(cfg.PanelURL)
	if err != nil {
		return nil, fmt.Errorf("parse panel URL %q: %w", cfg.PanelURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("panel URL %q must be absolute", cfg.PanelURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:   base,
		clientKey: cfg.ClientAPIKey,
		appKey:    cfg.ApplicationAPIKey,
		http: &http.Client{
			Timeout:   time.Duration(cfg.Timeout) * time.Second,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

// Close releases pooled connections. Call exactly once at shutdown.
// Cancellation of an individual request never tears the pool down.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) headers(surface Surface) (http.Header, error) {
	var key string
	switch surface {
	case SurfaceClient:
		key = c.clientKey
	case SurfaceApplication:
		key = c.appKey
	default:
		return nil, fmt.Errorf("unknown API surface %q", surface)
	}
	if key == "" {
		return nil, &MissingCredentialError{Surface: surface}
	}

	h := make(http.Header)
	h.Set("Authorization", "Bearer "+key)
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	return h, nil
}

// Do issues one request and returns the decoded JSON response. HTTP
// 204 yields {"success": true} without touching the body. Failing
// statuses and transport errors both surface as *RequestError; callers
// never see the raw transport exception.
func (c *Client) Do(ctx context.Context, req Request) (any, error) {
	headers, err := c.headers(req.Surface)
	if err != nil {
		return nil, err
	}

	u, err := c.baseURL.Parse(req.Path)
	if err != nil {
		return nil, &RequestError{Detail: fmt.Sprintf("resolve endpoint %q: %v", req.Path, err)}
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &RequestError{Detail: fmt.Sprintf("encode request body: %v", err)}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, &RequestError{Detail: err.Error()}
	}
	httpReq.Header = headers

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.InfoContext(ctx, "panel request",
			"method", req.Method,
			"path", req.Path,
			"surface", string(req.Surface),
			"outcome", "transport_error",
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, &RequestError{Detail: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Detail: fmt.Sprintf("read response body: %v", err)}
	}

	c.logger.InfoContext(ctx, "panel request",
		"method", req.Method,
		"path", req.Path,
		"surface", string(req.Surface),
		"outcome", outcomeForStatus(resp.StatusCode),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return map[string]any{"success": true}, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, &RequestError{Detail: fmt.Sprintf("decode response body: %v", err)}
		}
		return decoded, nil
	default:
		return nil, normalizeAPIError(resp, raw)
	}
}

// normalizeAPIError derives a human-readable message from a failing
// response: the panel's error envelope when it decodes, the raw body
// text otherwise, the status line when the body is empty.
func normalizeAPIError(resp *http.Response, raw []byte) *RequestError {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Errors) > 0 {
		parts := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			code := e.Code
			if code == "" {
				code = "Unknown"
			}
			detail := e.Detail
			if detail == "" {
				detail = "No details"
			}
			parts = append(parts, code+": "+detail)
		}
		return &RequestError{StatusCode: resp.StatusCode, Detail: strings.Join(parts, "; ")}
	}

	detail := strings.TrimSpace(string(raw))
	if detail == "" {
		detail = resp.Status
	}
	return &RequestError{StatusCode: resp.StatusCode, Detail: detail}
}

func outcomeForStatus(status int) string {
	if status >= 200 && status < 300 {
		return "success"
	}
	return "api_error"
}
