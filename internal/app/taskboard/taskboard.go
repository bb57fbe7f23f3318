// Package taskboard is the controller behind the admin translation-task
// list: a live view over every user's tasks with optimistic cancel, retry
// and delete actions, and bulk delete over the selection.
package taskboard

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
)

// Config is the configuration of the task board controller.
type Config struct {
	// Gateway is the dashboard API client.
	Gateway gateway.API
	// Query filters the task baseline fetches.
	Query gateway.TaskQuery
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

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Controller synchronizes the admin task list and dispatches its actions.
type Controller struct {
	*view.Core[model.Task]

	gateway gateway.API
}

// NewController creates a new task board controller.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Controller{gateway: cfg.Gateway}

	core, err := view.New(view.Config[model.Task]{
		Name:         "tasks",
		WebsocketURL: cfg.Gateway.WebsocketURL(),
		Fetch: func(ctx context.Context) (cache.Collection[model.Task], error) {
			return cfg.Gateway.ListTasks(ctx, cfg.Query)
		},
		EventType:      channel.EventTaskUpdate,
		DecodePatch:    decodeTaskPatch,
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

func decodeTaskPatch(data []byte) (cache.Patch[model.Task], error) {
	p, err := gateway.DecodeTaskPatch(data)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Tasks returns the current task collection.
func (c *Controller) Tasks() cache.Collection[model.Task] {
	return c.Store().List()
}

// Cancel optimistically cancels a task. Only pending or processing tasks
// accept the action; violations are returned without dispatching.
func (c *Controller) Cancel(ctx context.Context, id string) error {
	task, ok := c.Store().Get(id)
	if !ok {
		return fmt.Errorf("task not cached: %s: %w", id, model.ErrNotFound)
	}
	if !task.Status.Cancellable() {
		return fmt.Errorf("task is %s, only pending or processing tasks can be cancelled: %w", task.Status, model.ErrNotValid)
	}

	return c.Coordinator().Update(ctx, id, model.ActionCancel,
		func(t model.Task) model.Task {
			t.Status = model.TaskStatusCancelled
			return t
		},
		func(ctx context.Context) error { return c.gateway.CancelTask(ctx, id) },
	)
}

// Retry optimistically requeues a task. Only failed or cancelled tasks
// accept the action; violations are returned without dispatching.
func (c *Controller) Retry(ctx context.Context, id string) error {
	task, ok := c.Store().Get(id)
	if !ok {
		return fmt.Errorf("task not cached: %s: %w", id, model.ErrNotFound)
	}
	if !task.Status.Retryable() {
		return fmt.Errorf("task is %s, only failed or cancelled tasks can be retried: %w", task.Status, model.ErrNotValid)
	}

	return c.Coordinator().Update(ctx, id, model.ActionRetry,
		func(t model.Task) model.Task {
			t.Status = model.TaskStatusPending
			t.Progress = 0
			t.ProgressMessage = ""
			t.Error = ""
			t.OutputURL = ""
			t.CompletedAt = nil
			return t
		},
		func(ctx context.Context) error { return c.gateway.RetryTask(ctx, id) },
	)
}

// Delete optimistically removes a task. The selection prunes itself
// through the cache subscription.
func (c *Controller) Delete(ctx context.Context, id string) error {
	return c.Coordinator().Delete(ctx, id, func(ctx context.Context) error {
		return c.gateway.DeleteTask(ctx, id)
	})
}

// DeleteSelected deletes every selected task as independent concurrent
// deletes, each confirmed or rolled back on its own.
func (c *Controller) DeleteSelected(ctx context.Context) error {
	ids := c.Selected()
	if len(ids) == 0 {
		return nil
	}

	return c.Coordinator().BulkDelete(ctx, ids, func(ctx context.Context, id string) error {
		return c.gateway.DeleteTask(ctx, id)
	})
}
