package lib

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/traduct/dashsync/internal/gateway"
	"github.com/traduct/dashsync/internal/log"
	"github.com/traduct/dashsync/internal/model"
	"github.com/traduct/dashsync/internal/mutate"
)

// Config configures the SDK client.
//
// Server is required. Everything else has sensible defaults: silent logger,
// 30s fallback polling, ~300ms mutation reconciliation debounce and a
// 10 req/s client-side rate limit.
type Config struct {
	// Server is the dashboard root URL, e.g. "https://dash.example.com".
	// Required.
	Server string

	// Token is the admin session bearer token sent on every request.
	Token string

	// PollInterval is the fallback poll cadence used while the push channel
	// is down. Zero uses the default.
	PollInterval time.Duration

	// ReconcileDelay is the quiet period after a settled mutation before the
	// affected view refetches its baseline. Zero uses the default.
	ReconcileDelay time.Duration

	// RateLimit is the client-side API request budget in requests per
	// second. Zero uses the default.
	RateLimit float64

	// HTTPClient overrides the HTTP client used for API calls.
	// Default: a client with a request timeout.
	HTTPClient *http.Client

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Server == "" {
		return fmt.Errorf("server is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for consuming the dashboard admin API
// programmatically.
//
// Create a Client with [New]. The client itself holds no connections; the
// live views created through [Client.TaskBoard] and [Client.AccessList] own
// theirs and release them on Close. A Client is safe for concurrent use.
type Client struct {
	api            gateway.API
	pollInterval   time.Duration
	reconcileDelay time.Duration
	logger         log.Logger
}

// New creates a new SDK client for a dashboard server.
func New(cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	api, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL:    cfg.Server,
		Token:      cfg.Token,
		HTTPClient: cfg.HTTPClient,
		RateLimit:  cfg.RateLimit,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create API client: %w", err)
	}

	return &Client{
		api:            api,
		pollInterval:   cfg.PollInterval,
		reconcileDelay: cfg.ReconcileDelay,
		logger:         cfg.Logger,
	}, nil
}

// Providers lists the translation provider configurations. Provider
// credentials never cross the SDK boundary, only the backend summary does.
func (c *Client) Providers(ctx context.Context) ([]Provider, error) {
	ps, err := c.api.ListProviders(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalProviderList(ps), nil
}

// Users lists the dashboard user accounts.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	us, err := c.api.ListUsers(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalUserList(us), nil
}

// SetUserActive activates or deactivates a user account. Deactivating the
// last remaining administrator is refused by the server and surfaces as
// [ErrPolicyDenied].
func (c *Client) SetUserActive(ctx context.Context, id string, active bool) error {
	return mapError(c.api.SetUserActive(ctx, id, active))
}

func notifierFor(fn func(Notification)) mutate.Notifier {
	if fn == nil {
		return nil
	}
	return mutate.NotifierFunc(func(_ context.Context, n model.Notification) {
		fn(fromInternalNotification(n))
	})
}
