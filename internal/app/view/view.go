// Package view composes the synchronization machinery every live admin
// view runs: one entity cache, the selection set, the optimistic mutation
// coordinator, the push channel and the polling fallback. Each view owns
// its instances and tears them down together.
package view

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/run"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/channel"
	"github.com/traduct/dashsync/internal/log"
	"github.com/traduct/dashsync/internal/mutate"
	"github.com/traduct/dashsync/internal/poll"
	"github.com/traduct/dashsync/internal/selection"
)

// Config is the configuration of a view core.
type Config[E cache.Entity] struct {
	// Name tags the logs and the reconcile debounce key.
	Name string
	// WebsocketURL is the push endpoint the view subscribes to.
	WebsocketURL string
	// Fetch retrieves the baseline collection.
	Fetch func(ctx context.Context) (cache.Collection[E], error)
	// EventType is the push event type this view consumes.
	EventType string
	// DecodePatch decodes an event's entity payload. Returning a nil
	// patch skips the event.
	DecodePatch func(data []byte) (cache.Patch[E], error)
	// Dial overrides the websocket dialer.
	Dial channel.Dialer
	// Notifier receives mutation outcome notifications. Optional.
	Notifier mutate.Notifier
	// PollInterval is the fallback poll cadence while the channel is down.
	PollInterval time.Duration
	// ReconcileDelay is the debounce quiet period for post-mutation
	// reconciliation.
	ReconcileDelay time.Duration
	Logger         log.Logger
}

func (c *Config[E]) defaults() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	if c.WebsocketURL == "" {
		return fmt.Errorf("websocket url is required")
	}

	if c.Fetch == nil {
		return fmt.Errorf("fetch is required")
	}

	if c.EventType == "" {
		return fmt.Errorf("event type is required")
	}

	if c.DecodePatch == nil {
		return fmt.Errorf("decode patch is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"view": c.Name})

	return nil
}

// Core keeps one server-owned collection synchronized through pushes,
// fallback polls and the user's own optimistic mutations.
type Core[E cache.Entity] struct {
	name      string
	store     *cache.Store[E]
	tracker   *selection.Tracker
	coord     *mutate.Coordinator[E]
	channel   *channel.Manager
	poller    *poll.Scheduler
	fetch     func(ctx context.Context) (cache.Collection[E], error)
	eventType string
	decode    func(data []byte) (cache.Patch[E], error)
	logger    log.Logger

	refreshMu    sync.Mutex
	refreshAgain atomic.Bool
}

// New creates a new view core.
func New[E cache.Entity](cfg Config[E]) (*Core[E], error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := cache.NewStore[E](cache.StoreConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	c := &Core[E]{
		name:      cfg.Name,
		store:     store,
		tracker:   selection.NewTracker(),
		fetch:     cfg.Fetch,
		eventType: cfg.EventType,
		decode:    cfg.DecodePatch,
		logger:    cfg.Logger,
	}

	c.coord, err = mutate.NewCoordinator(mutate.CoordinatorConfig[E]{
		Store:          store,
		Notifier:       cfg.Notifier,
		Reconcile:      c.backgroundRefresh,
		ReconcileKey:   cfg.Name,
		ReconcileDelay: cfg.ReconcileDelay,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create mutation coordinator: %w", err)
	}

	c.poller, err = poll.NewScheduler(poll.SchedulerConfig{
		Interval: cfg.PollInterval,
		Refresh:  c.backgroundRefresh,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create poll scheduler: %w", err)
	}

	c.channel, err = channel.NewManager(channel.ManagerConfig{
		WebsocketURL:  cfg.WebsocketURL,
		Dial:          cfg.Dial,
		OnEvent:       c.onEvent,
		OnStateChange: c.onStateChange,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create channel manager: %w", err)
	}

	// The selection may only reference entities present in the collection.
	store.Subscribe(func() { c.tracker.Prune(store.IDs()) })

	return c, nil
}

// Run fetches the baseline and keeps the view synchronized until the
// context is cancelled or Close is called. It blocks.
func (c *Core[E]) Run(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}

	var g run.Group

	// Live push channel.
	{
		g.Add(
			func() error { return c.channel.Run(ctx) },
			func(_ error) { c.channel.Disconnect() },
		)
	}

	// Polling fallback.
	{
		pollCtx, pollCancel := context.WithCancel(ctx)
		g.Add(
			func() error { return c.poller.Run(pollCtx) },
			func(_ error) { pollCancel() },
		)
	}

	defer c.coord.Stop()

	return g.Run()
}

// Close tears the view down: the channel stops reconnecting and pending
// debounce timers are dropped. Idempotent, and safe while Run is active,
// in which case Run returns.
func (c *Core[E]) Close() error {
	c.channel.Disconnect()
	c.coord.Stop()

	return nil
}

// Refresh fetches the baseline collection and replaces the cache with it.
// It is single flight: a call landing while a fetch is running coalesces
// into exactly one follow-up fetch instead of racing it.
func (c *Core[E]) Refresh(ctx context.Context) error {
	if !c.refreshMu.TryLock() {
		c.refreshAgain.Store(true)
		return nil
	}
	defer c.refreshMu.Unlock()

	for {
		c.refreshAgain.Store(false)

		collection, err := c.fetch(ctx)
		if err != nil {
			return fmt.Errorf("could not refresh %s view: %w", c.name, err)
		}
		c.store.ReplaceBaseline(collection)

		if !c.refreshAgain.Load() {
			return nil
		}
	}
}

// Focus refetches on window focus unless the channel is live.
func (c *Core[E]) Focus(ctx context.Context) {
	c.poller.Focus(ctx)
}

// Live reports whether the push channel is connected.
func (c *Core[E]) Live() bool {
	return c.channel.State() == channel.StateConnected
}

// Store returns the view's entity cache.
func (c *Core[E]) Store() *cache.Store[E] {
	return c.store
}

// Coordinator returns the view's mutation coordinator.
func (c *Core[E]) Coordinator() *mutate.Coordinator[E] {
	return c.coord
}

// ToggleSelect flips one entity's membership in the selection set. Ids not
// present in the collection are ignored.
func (c *Core[E]) ToggleSelect(id string) {
	if _, ok := c.store.Get(id); !ok {
		return
	}
	c.tracker.Toggle(id)
}

// SelectAll selects every entity in the collection, or clears the
// selection when everything was already selected.
func (c *Core[E]) SelectAll() {
	c.tracker.ToggleAll(c.store.IDs())
}

// Selected returns the selected ids sorted lexically.
func (c *Core[E]) Selected() []string {
	return c.tracker.Selected()
}

// IsSelected reports whether an id is selected.
func (c *Core[E]) IsSelected(id string) bool {
	return c.tracker.Has(id)
}

// Indeterminate reports whether the selection is a non-empty strict subset
// of the collection.
func (c *Core[E]) Indeterminate() bool {
	return c.tracker.Indeterminate(c.store.IDs())
}

// Pending returns the in-flight mutations, oldest first.
func (c *Core[E]) Pending() []mutate.Mutation {
	return c.coord.Pending()
}

// IsPending reports whether an entity has an in-flight mutation.
func (c *Core[E]) IsPending(id string) bool {
	return c.coord.IsPending(id)
}

// backgroundRefresh is the refresh used by timers, where there is no
// caller to return the error to.
func (c *Core[E]) backgroundRefresh(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Errorf("background refresh failed: %v", err)
	}
}

func (c *Core[E]) onEvent(e channel.Event) {
	if e.Type != c.eventType {
		return
	}

	patch, err := c.decode(e.Entity)
	if err != nil {
		c.logger.Warningf("dropping %s event: %v", e.Type, err)
		return
	}
	if patch == nil {
		return
	}

	c.store.ApplyPatch(patch)
}

func (c *Core[E]) onStateChange(s channel.State) {
	c.poller.SetLive(s == channel.StateConnected)
}
