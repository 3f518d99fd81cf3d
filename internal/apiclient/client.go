// Package apiclient is the single HTTP client every GradLink resource call
// goes through.
//
// REQUEST PIPELINE:
//
//	Client.Do
//	  → RequestID   (X-Request-ID)
//	  → Metrics     (optional, WithMetrics)
//	  → Logger      (one slog line per request)
//	  → Authorize   (Authorization: Token <t>, read from the session store)
//	  → network
//
// Responses come back untouched: there is no caching, retrying or
// reshaping. A transport failure is returned exactly as net/http produced
// it; a non-2xx answer becomes an *Error that errors.Is can classify.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/gradlink/internal/auth"
	"github.com/sakif/gradlink/internal/middleware"
	"github.com/sakif/gradlink/internal/session"
)

// DefaultBaseURL is the backend's local development address.
const DefaultBaseURL = "http://localhost:8000/api/"

// maxErrorBody caps how much of an error response is kept in memory.
const maxErrorBody = 1 << 20

// Config holds the settings that are fixed once a Client is built.
type Config struct {
	BaseURL   string        // API root; a trailing slash is added if missing
	Timeout   time.Duration // per-request limit on top of ctx; 0 means none
	UserAgent string
}

// Client sends requests to one GradLink backend.
type Client struct {
	base      *url.URL
	userAgent string
	http      *http.Client
}

type options struct {
	metrics   *middleware.ClientMetrics
	transport http.RoundTripper
}

// Option customises New.
type Option func(*options)

// WithMetrics records every request in m.
func WithMetrics(m *middleware.ClientMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTransport replaces the network transport at the bottom of the chain.
// The other stages, authorization included, still run.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// New builds a Client whose requests are authorized from store.
func New(cfg Config, store session.Store, logger *slog.Logger, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parsing base URL %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base URL %q must be http or https", raw)
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "gradlink-go"
	}

	transport := middleware.Chain(o.transport,
		middleware.RequestID(),
		middleware.Metrics(o.metrics),
		middleware.Logger(logger),
		auth.Authorize(store, base.Host),
	)

	return &Client{
		base:      base,
		userAgent: ua,
		http:      &http.Client{Transport: transport, Timeout: cfg.Timeout},
	}, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Do sends one request and decodes a successful JSON answer into out.
//
// path is relative to the API root ("events/42/"). query may be nil.
// payload may be nil for requests without a body. out may be nil, and is
// left untouched when the response has no body (204 on delete).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, payload Payload, out any) error {
	u := c.resolve(path, query)

	var (
		body        io.Reader
		contentType string
	)
	if payload != nil {
		var err error
		body, contentType, err = payload.encode()
		if err != nil {
			return fmt.Errorf("apiclient: encoding %s %s body: %w", method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("apiclient: building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Method:     method,
			URL:        u,
			StatusCode: resp.StatusCode,
			Body:       raw,
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: reading %s %s response: %w", method, path, err)
	}
	if out == nil || len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("apiclient: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) resolve(path string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.base.ResolveReference(ref).String()
}

// MediaURL turns a media path returned by the backend into a fetchable URL.
//
// Absolute URLs (anything starting with "http") are returned unchanged,
// relative paths get the backend origin (scheme and host of the base URL,
// without the /api/ part) prepended, and "" stays "".
func (c *Client) MediaURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.Scheme + "://" + c.base.Host + path
}
