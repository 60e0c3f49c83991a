// Package client implements the resilient API-client runtime for the QR
// Share backend: request execution with timeouts and retry backoff,
// transparent credential refresh, response-envelope normalization, error
// classification, and progress-tracked uploads.
package client

import (
	"context"
	"net/http"
	"time"

	glog "github.com/Laisky/go-utils/v5/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/qrshare/qrshare-go/common/config"
	"github.com/qrshare/qrshare-go/common/logger"
	"github.com/qrshare/qrshare-go/credential"
)

const refreshPath = "/auth/refresh"

// Client executes API requests against the QR Share backend. All methods
// are safe for concurrent use; the injected credential store is the only
// shared mutable state.
type Client struct {
	base       string
	httpClient *http.Client
	store      credential.Store
	logger     glog.Logger
	limiter    *rate.Limiter

	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration

	// onForcedLogout is invoked after an irrecoverable 401 clears the
	// credential store; callers use it to route to the sign-in entry point.
	onForcedLogout func()

	refreshGroup singleflight.Group
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithBaseURL overrides the configured backend origin. The value passes
// through the legacy-port normalization rule.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.base = config.NormalizeBaseURL(baseURL) }
}

// WithHTTPClient substitutes the underlying transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger substitutes the structured logger.
func WithLogger(lg glog.Logger) Option {
	return func(c *Client) { c.logger = lg }
}

// WithDefaultTimeout sets the default per-attempt timeout.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithMaxRetries sets the default retry budget.
func WithMaxRetries(retries int) Option {
	return func(c *Client) { c.maxRetries = retries }
}

// WithBaseDelay sets the unit retry delay: fixed for 5xx and network
// failures, scaled linearly by attempt number for 429.
func WithBaseDelay(delay time.Duration) Option {
	return func(c *Client) { c.baseDelay = delay }
}

// WithRateLimit throttles outbound attempts to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithForcedLogoutHook registers the sign-in redirect hook.
func WithForcedLogoutHook(hook func()) Option {
	return func(c *Client) { c.onForcedLogout = hook }
}

// New constructs a Client around the injected credential store. Defaults
// come from package config; options override them.
func New(store credential.Store, opts ...Option) *Client {
	c := &Client{
		base:       config.BaseURL,
		httpClient: &http.Client{},
		store:      store,
		logger:     logger.Logger,
		timeout:    config.RequestTimeout,
		maxRetries: config.MaxRetries,
		baseDelay:  config.RetryBaseDelay,
	}
	if config.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the injected credential store.
func (c *Client) Store() credential.Store {
	return c.store
}

func (c *Client) request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Envelope, error) {
	d := RequestDescriptor{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&d)
	}
	return c.Do(ctx, d)
}

// Get issues a GET request against the versioned API path.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Envelope, error) {
	return c.request(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.request(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.request(ctx, http.MethodPut, path, body, opts...)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.request(ctx, http.MethodPatch, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Envelope, error) {
	return c.request(ctx, http.MethodDelete, path, nil, opts...)
}

// url joins the backend origin, the versioned prefix, and the request path.
func (c *Client) url(path string) string {
	return c.base + config.APIPrefix + path
}
