// Package gateway implements the dashboard admin API client: the REST
// operations the controllers dispatch, bearer auth, client-side rate
// limiting, and the mapping from HTTP responses to the error taxonomy the
// mutation coordinator settles on.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/log"
	"github.com/traduct/dashsync/internal/model"
)

// API is the dashboard admin API as the sync controllers consume it.
type API interface {
	ListTasks(ctx context.Context, q TaskQuery) (cache.Collection[model.Task], error)
	CancelTask(ctx context.Context, id string) error
	RetryTask(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error
	ListGrants(ctx context.Context, groupID string) (cache.Collection[model.Grant], error)
	GrantAccess(ctx context.Context, groupID, providerID string, sortOrder int) (model.Grant, error)
	RevokeAccess(ctx context.Context, groupID, providerID string) error
	ReorderAccess(ctx context.Context, groupID string, providerIDs []string) error
	ListProviders(ctx context.Context) ([]model.Provider, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserActive(ctx context.Context, id string, active bool) error
	WebsocketURL() string
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// TaskQuery filters the admin task listing.
type TaskQuery struct {
	OwnerID    string
	OwnerEmail string
	Status     string
	Engine     string
	Priority   string
	Limit      int
	Offset     int
}

const (
	defaultUserAgent = "dashsync/0.1"
	defaultTimeout   = 15 * time.Second
	// defaultRateLimit is requests per second towards the API.
	defaultRateLimit = 10
	// maxErrorBody bounds how much of an error response body is read.
	maxErrorBody = 4 << 10
)

// ClientConfig is the configuration for the API client.
type ClientConfig struct {
	// BaseURL is the dashboard root, e.g. "https://dash.example.com".
	BaseURL string
	// Token is the admin session bearer token.
	Token string
	// HTTPClient defaults to a client with a request timeout.
	HTTPClient *http.Client
	// RateLimit is the client-side request budget in requests per second.
	RateLimit float64
	UserAgent string
	Logger    log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}

	if c.RateLimit == 0 {
		c.RateLimit = defaultRateLimit
	}

	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "gateway.Client"})

	return nil
}

// Client talks to the dashboard admin HTTP API.
type Client struct {
	baseURL   *url.URL
	token     string
	httpc     *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    log.Logger
}

// NewClient creates a new dashboard API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		baseURL:   base,
		token:     cfg.Token,
		httpc:     cfg.HTTPClient,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
	}, nil
}

// ListTasks retrieves one page of the admin task listing.
func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (cache.Collection[model.Task], error) {
	values := url.Values{}
	if q.OwnerID != "" {
		values.Set("ownerId", q.OwnerID)
	}
	if q.OwnerEmail != "" {
		values.Set("ownerEmail", q.OwnerEmail)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Engine != "" {
		values.Set("engine", q.Engine)
	}
	if q.Priority != "" {
		values.Set("priority", q.Priority)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}

	var payload taskListResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/tasks", values, nil, &payload); err != nil {
		return cache.Collection[model.Task]{}, fmt.Errorf("could not list tasks: %w", err)
	}

	return payload.toModel(), nil
}

// CancelTask requests cancellation of a queued or running task.
func (c *Client) CancelTask(ctx context.Context, id string) error {
	return c.taskAction(ctx, id, "cancel")
}

// RetryTask requeues a failed or cancelled task.
func (c *Client) RetryTask(ctx context.Context, id string) error {
	return c.taskAction(ctx, id, "retry")
}

func (c *Client) taskAction(ctx context.Context, id, action string) error {
	body := taskActionRequest{Action: action}
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), nil, body, nil); err != nil {
		return fmt.Errorf("could not %s task: %w", action, err)
	}

	return nil
}

// DeleteTask removes a task and its artifacts.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}

	return nil
}

// ListGrants retrieves a group's provider access list in priority order.
// The endpoint is unpaginated, so the pagination metadata is synthesized.
func (c *Client) ListGrants(ctx context.Context, groupID string) (cache.Collection[model.Grant], error) {
	var payload []grantDTO
	path := "/api/admin/groups/" + url.PathEscape(groupID) + "/access"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return cache.Collection[model.Grant]{}, fmt.Errorf("could not list grants: %w", err)
	}

	grants := make([]model.Grant, 0, len(payload))
	for _, d := range payload {
		grants = append(grants, d.toModel())
	}

	return cache.Collection[model.Grant]{
		Entities: grants,
		Total:    len(grants),
		Filters:  map[string]string{"groupId": groupID},
	}, nil
}

// GrantAccess grants a group access to a provider and returns the created
// grant.
func (c *Client) GrantAccess(ctx context.Context, groupID, providerID string, sortOrder int) (model.Grant, error) {
	body := grantRequest{ProviderConfigID: providerID, SortOrder: sortOrder}
	var payload grantDTO
	path := "/api/admin/groups/" + url.PathEscape(groupID) + "/access"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &payload); err != nil {
		return model.Grant{}, fmt.Errorf("could not grant access: %w", err)
	}

	return payload.toModel(), nil
}

// RevokeAccess removes a group's access to a provider.
func (c *Client) RevokeAccess(ctx context.Context, groupID, providerID string) error {
	path := "/api/admin/groups/" + url.PathEscape(groupID) + "/access/" + url.PathEscape(providerID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("could not revoke access: %w", err)
	}

	return nil
}

// ReorderAccess imposes a new provider priority order on a group.
func (c *Client) ReorderAccess(ctx context.Context, groupID string, providerIDs []string) error {
	body := reorderRequest{ProviderIDs: providerIDs}
	path := "/api/admin/groups/" + url.PathEscape(groupID) + "/access/reorder"
	if err := c.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("could not reorder access: %w", err)
	}

	return nil
}

// ListProviders retrieves every provider configuration.
func (c *Client) ListProviders(ctx context.Context) ([]model.Provider, error) {
	var payload []providerDTO
	if err := c.do(ctx, http.MethodGet, "/api/admin/providers", nil, nil, &payload); err != nil {
		return nil, fmt.Errorf("could not list providers: %w", err)
	}

	providers := make([]model.Provider, 0, len(payload))
	for _, d := range payload {
		p, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("could not decode provider %q: %w", d.ID, err)
		}
		providers = append(providers, p)
	}

	return providers, nil
}

// ListUsers retrieves every dashboard user account.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var payload []userDTO
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil, &payload); err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	users := make([]model.User, 0, len(payload))
	for _, d := range payload {
		users = append(users, d.toModel())
	}

	return users, nil
}

// SetUserActive activates or deactivates a user account.
func (c *Client) SetUserActive(ctx context.Context, id string, active bool) error {
	body := updateUserRequest{IsActive: &active}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/users/"+url.PathEscape(id), nil, body, nil); err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}

	return nil
}

// WebsocketURL derives the push endpoint from the API base URL.
func (c *Client) WebsocketURL() string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/api/ws"

	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugf("%s %s", method, reqURL.Path)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %v: %w", err, model.ErrTransient)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// apiError maps a non-2xx response to an APIError carrying the server's
// detail message.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err == nil {
		apiErr.Detail = payload.Detail
	}

	return apiErr
}

// APIError is a non-2xx response from the dashboard API. It unwraps to the
// sentinel matching its status code so callers settle mutations with
// errors.Is, and keeps the server's detail message for notifications.
type APIError struct {
	StatusCode int
	// Detail is the server supplied failure reason, when present.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api returned status %d", e.StatusCode)
}

// Reason returns the user facing failure reason.
func (e *APIError) Reason() string {
	if e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(e.StatusCode)
}

// Unwrap maps the status code onto the error taxonomy: 404 means the
// entity is gone, 400/403/409 mean the server rejected the operation,
// 422 means the request was malformed, everything else (401, 5xx) is
// worth retrying.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusBadRequest, http.StatusForbidden, http.StatusConflict:
		return model.ErrPolicyDenied
	case http.StatusUnprocessableEntity:
		return model.ErrNotValid
	default:
		return model.ErrTransient
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""

	return u, nil
}
