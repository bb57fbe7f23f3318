// Package mutate coordinates optimistic mutations over a cache store:
// it snapshots state, applies the optimistic write, dispatches the remote
// call, and settles with a rollback or a confirmation when the call
// returns.
package mutate

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/log"
	"github.com/traduct/dashsync/internal/model"
)

// Notifier receives the outcome of settled mutations. Implementations
// must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n model.Notification)

// Notify satisfies Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n model.Notification) { f(ctx, n) }

// CoordinatorConfig is the configuration for a mutation coordinator.
type CoordinatorConfig[E cache.Entity] struct {
	// Store is the cache the optimistic writes and rollbacks act on.
	Store *cache.Store[E]
	// Notifier receives one notification per settled mutation.
	Notifier Notifier
	// Reconcile is called once per quiet period after mutations settle,
	// normally a baseline refetch. Optional.
	Reconcile func(ctx context.Context)
	// ReconcileKey groups mutations into a single debounced reconcile.
	ReconcileKey string
	// ReconcileDelay is the debounce quiet period.
	ReconcileDelay time.Duration
	Logger         log.Logger
}

func (c *CoordinatorConfig[E]) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}

	if c.Notifier == nil {
		c.Notifier = NotifierFunc(func(context.Context, model.Notification) {})
	}

	if c.ReconcileKey == "" {
		c.ReconcileKey = "reconcile"
	}

	if c.ReconcileDelay == 0 {
		c.ReconcileDelay = 300 * time.Millisecond
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "mutate.Coordinator"})

	return nil
}

// Mutation describes an in-flight optimistic mutation.
type Mutation struct {
	// ID is a ULID assigned when the mutation is dispatched.
	ID       string
	Action   model.Action
	EntityID string
}

// Coordinator runs optimistic mutations against a store. Every mutation
// applies its local write first, dispatches the remote call, and settles
// by confirming or rolling back the snapshot depending on the error
// taxonomy. Settled mutations schedule a debounced reconciliation so a
// burst of operations collapses into one refetch.
type Coordinator[E cache.Entity] struct {
	store     *cache.Store[E]
	notifier  Notifier
	reconcile func(ctx context.Context)
	debouncer *Debouncer
	key       string
	logger    log.Logger

	mu      sync.Mutex
	pending map[string]Mutation
}

// NewCoordinator creates a new mutation coordinator.
func NewCoordinator[E cache.Entity](cfg CoordinatorConfig[E]) (*Coordinator[E], error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Coordinator[E]{
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		reconcile: cfg.Reconcile,
		debouncer: NewDebouncer(cfg.ReconcileDelay),
		key:       cfg.ReconcileKey,
		logger:    cfg.Logger,
	}, nil
}

// Update applies an optimistic in-place transformation to the entity and
// dispatches the remote call. On failure the entity is restored to the
// exact snapshotted state unless a fresher server write landed in between.
func (c *Coordinator[E]) Update(ctx context.Context, id string, action model.Action, apply func(E) E, call func(ctx context.Context) error) error {
	snap, ok := c.store.Mutate(id, apply)
	if !ok {
		return fmt.Errorf("entity not cached: %s: %w", id, model.ErrNotFound)
	}

	mutID := c.track(action, id)
	defer c.untrack(mutID)

	return c.settle(ctx, snap, action, call(ctx))
}

// Delete removes the entity optimistically and dispatches the remote
// call. A failed call restores the entity at its previous position.
func (c *Coordinator[E]) Delete(ctx context.Context, id string, call func(ctx context.Context) error) error {
	snap, ok := c.store.Remove(id)
	if !ok {
		return fmt.Errorf("entity not cached: %s: %w", id, model.ErrNotFound)
	}

	mutID := c.track(model.ActionDelete, id)
	defer c.untrack(mutID)

	return c.settle(ctx, snap, model.ActionDelete, call(ctx))
}

// BulkDelete runs one independent delete per id: all removals are applied
// up front, the calls are dispatched concurrently, and each failure rolls
// back only its own entity. The returned error joins the individual
// failures.
func (c *Coordinator[E]) BulkDelete(ctx context.Context, ids []string, call func(ctx context.Context, id string) error) error {
	type removal struct {
		id   string
		snap cache.Snapshot[E]
	}

	removals := make([]removal, 0, len(ids))
	for _, id := range ids {
		snap, ok := c.store.Remove(id)
		if !ok {
			c.logger.Warningf("skipping delete of uncached entity: %s", id)
			continue
		}
		removals = append(removals, removal{id: id, snap: snap})
	}

	errs := make([]error, len(removals))
	var wg sync.WaitGroup
	for i, r := range removals {
		wg.Add(1)
		go func(i int, r removal) {
			defer wg.Done()

			mutID := c.track(model.ActionDelete, r.id)
			defer c.untrack(mutID)

			errs[i] = c.settle(ctx, r.snap, model.ActionDelete, call(ctx, r.id))
		}(i, r)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Reorder applies the new order optimistically and dispatches the remote
// call. A failed call restores the previous order unless the baseline was
// replaced in between.
func (c *Coordinator[E]) Reorder(ctx context.Context, ids []string, call func(ctx context.Context) error) error {
	snap, ok := c.store.Reorder(ids)
	if !ok {
		return fmt.Errorf("order is not a permutation of the cached ids: %w", model.ErrNotValid)
	}

	mutID := c.track(model.ActionReorder, "")
	defer c.untrack(mutID)

	return c.settle(ctx, snap, model.ActionReorder, call(ctx))
}

// Pending returns the in-flight mutations ordered by dispatch time.
func (c *Coordinator[E]) Pending() []Mutation {
	c.mu.Lock()
	defer c.mu.Unlock()

	muts := make([]Mutation, 0, len(c.pending))
	for _, m := range c.pending {
		muts = append(muts, m)
	}
	// ULIDs sort lexicographically by creation time.
	sort.Slice(muts, func(i, j int) bool { return muts[i].ID < muts[j].ID })

	return muts
}

// IsPending reports whether the entity has an in-flight mutation.
func (c *Coordinator[E]) IsPending(entityID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.pending {
		if m.EntityID == entityID {
			return true
		}
	}

	return false
}

// Stop cancels the pending reconciliation, if any.
func (c *Coordinator[E]) Stop() {
	c.debouncer.Stop()
}

// settle resolves a dispatched mutation: confirmations discard the
// snapshot, failures roll it back according to the error taxonomy. Every
// settled mutation reschedules the debounced reconciliation.
func (c *Coordinator[E]) settle(ctx context.Context, snap cache.Snapshot[E], action model.Action, err error) error {
	defer c.scheduleReconcile(ctx)

	switch {
	case err == nil:
		c.notifier.Notify(ctx, model.Notification{
			Level:    model.NotificationSuccess,
			Action:   action,
			EntityID: snap.EntityID(),
		})
		return nil

	case errors.Is(err, model.ErrNotFound):
		// The server already lost the entity, keeping the optimistic
		// state is the correct outcome. Resurrecting it would undo a
		// delete that succeeded elsewhere.
		c.logger.Warningf("entity already removed on server: %s", snap.EntityID())
		c.notifier.Notify(ctx, model.Notification{
			Level:    model.NotificationWarning,
			Action:   action,
			EntityID: snap.EntityID(),
			Message:  "already removed",
		})
		return nil

	case errors.Is(err, model.ErrPolicyDenied), errors.Is(err, model.ErrNotValid):
		c.rollback(snap)
		c.notifier.Notify(ctx, model.Notification{
			Level:    model.NotificationFailure,
			Action:   action,
			EntityID: snap.EntityID(),
			Message:  reason(err),
		})
		return err

	default:
		c.rollback(snap)
		c.logger.Errorf("mutation failed, rolled back: %v", err)
		c.notifier.Notify(ctx, model.Notification{
			Level:    model.NotificationFailure,
			Action:   action,
			EntityID: snap.EntityID(),
			Message:  reason(err),
			Retry:    true,
		})
		return err
	}
}

func (c *Coordinator[E]) rollback(snap cache.Snapshot[E]) {
	if !c.store.Restore(snap) {
		c.logger.Debugf("rollback suppressed, fresher server state present: %s", snap.EntityID())
	}
}

func (c *Coordinator[E]) scheduleReconcile(ctx context.Context) {
	if c.reconcile == nil {
		return
	}

	// The mutation context is likely short lived, the reconcile fires
	// after it returns.
	c.debouncer.Trigger(c.key, func() {
		c.reconcile(context.WithoutCancel(ctx))
	})
}

func (c *Coordinator[E]) track(action model.Action, entityID string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		c.pending = map[string]Mutation{}
	}
	c.pending[id] = Mutation{ID: id, Action: action, EntityID: entityID}

	return id
}

func (c *Coordinator[E]) untrack(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, id)
}

// reason extracts the user facing message from an error, preferring the
// server supplied reason over the sentinel chain.
func reason(err error) string {
	var rerr interface{ Reason() string }
	if errors.As(err, &rerr) {
		return rerr.Reason()
	}

	return err.Error()
}
