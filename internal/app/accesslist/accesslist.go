// Package accesslist is the controller behind a group's provider access
// list: a live ordered view of which translation providers a group may
// use, with optimistic revoke and reorder, bulk revoke over the selection,
// and dispatch-then-fetch grants.
package accesslist

import (
	"context"
	"fmt"
	"time"

	"github.com/traduct/dashsync/internal/app/view"
	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/channel"
	"github.com/traduct/dashsync/internal/gateway"
	"github.com/traduct/dashsync/internal/log"
	"github.com/traduct/dashsync/internal/model"
	"github.com/traduct/dashsync/internal/mutate"
	"github.com/traduct/dashsync/internal/selection"
)

// Config is the configuration of the access list controller.
type Config struct {
	// Gateway is the dashboard API client.
	Gateway gateway.API
	// GroupID is the group whose access list this view owns.
	GroupID string
	// Notifier receives mutation outcome notifications. Optional.
	Notifier mutate.Notifier
	// Dial overrides the websocket dialer.
	Dial channel.Dialer
	// PollInterval is the fallback poll cadence while the channel is down.
	PollInterval time.Duration
	// ReconcileDelay is the debounce quiet period for post-mutation
	// reconciliation.
	ReconcileDelay time.Duration
	Logger         log.Logger
}

func (c *Config) defaults() error {
	if c.Gateway == nil {
		return fmt.Errorf("gateway is required")
	}

	if c.GroupID == "" {
		return fmt.Errorf("group id is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"group": c.GroupID})

	return nil
}

// Controller synchronizes one group's provider access list and dispatches
// its actions.
type Controller struct {
	*view.Core[model.Grant]

	gateway gateway.API
	groupID string
}

// NewController creates a new access list controller.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Controller{
		gateway: cfg.Gateway,
		groupID: cfg.GroupID,
	}

	core, err := view.New(view.Config[model.Grant]{
		Name:         "access",
		WebsocketURL: cfg.Gateway.WebsocketURL(),
		Fetch: func(ctx context.Context) (cache.Collection[model.Grant], error) {
			return cfg.Gateway.ListGrants(ctx, cfg.GroupID)
		},
		EventType:      channel.EventAccessUpdate,
		DecodePatch:    c.decodeGrantPatch,
		Dial:           cfg.Dial,
		Notifier:       cfg.Notifier,
		PollInterval:   cfg.PollInterval,
		ReconcileDelay: cfg.ReconcileDelay,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	c.Core = core

	return c, nil
}

// decodeGrantPatch drops events belonging to other groups, the channel
// broadcasts access updates for all of them.
func (c *Controller) decodeGrantPatch(data []byte) (cache.Patch[model.Grant], error) {
	p, err := gateway.DecodeGrantPatch(data)
	if err != nil {
		return nil, err
	}
	if p.GroupID != nil && *p.GroupID != c.groupID {
		return nil, nil
	}

	return p, nil
}

// Grants returns the current access list in priority order.
func (c *Controller) Grants() cache.Collection[model.Grant] {
	return c.Store().List()
}

// Grant grants the group access to a provider and refetches the list. The
// server assigns the link id and the final position, so there is no
// optimistic insert to reconcile.
func (c *Controller) Grant(ctx context.Context, providerID string) error {
	_, err := c.gateway.GrantAccess(ctx, c.groupID, providerID, c.Store().Len())
	if err != nil {
		return fmt.Errorf("could not grant access to %s: %w", providerID, err)
	}

	return c.Refresh(ctx)
}

// Revoke optimistically removes a provider from the access list.
func (c *Controller) Revoke(ctx context.Context, providerID string) error {
	return c.Coordinator().Delete(ctx, providerID, func(ctx context.Context) error {
		return c.gateway.RevokeAccess(ctx, c.groupID, providerID)
	})
}

// RevokeSelected revokes every selected provider as independent concurrent
// revocations, each confirmed or rolled back on its own.
func (c *Controller) RevokeSelected(ctx context.Context) error {
	ids := c.Selected()
	if len(ids) == 0 {
		return nil
	}

	return c.Coordinator().BulkDelete(ctx, ids, func(ctx context.Context, id string) error {
		return c.gateway.RevokeAccess(ctx, c.groupID, id)
	})
}

// Move optimistically moves the provider at index from to index to and
// ships the complete resulting order to the server.
func (c *Controller) Move(ctx context.Context, from, to int) error {
	order, err := selection.Move(c.Store().IDs(), from, to)
	if err != nil {
		return err
	}

	return c.Coordinator().Reorder(ctx, order, func(ctx context.Context) error {
		return c.gateway.ReorderAccess(ctx, c.groupID, order)
	})
}
