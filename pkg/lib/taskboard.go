package lib

import (
	"context"
	"fmt"

	"github.com/traduct/dashsync/internal/app/taskboard"
)

// TaskBoardOpts configures a task board view.
//
// Pass the zero value to synchronize every user's tasks with defaults.
type TaskBoardOpts struct {
	// Query filters the baseline fetches. Zero value lists everything.
	Query TaskQuery

	// OnNotification receives a report for every settled optimistic
	// mutation (confirmed, warning or rolled back). Optional. Called from
	// the SDK's goroutines; implementations must be safe for that.
	OnNotification func(Notification)
}

// TaskBoard is a live synchronized view over the admin task list.
//
// Create one with [Client.TaskBoard], drive it with [TaskBoard.Run] and
// release it with [TaskBoard.Close]. All read methods serve from the local
// cache and never block on the network; action methods apply optimistically
// and settle in the background.
type TaskBoard struct {
	ctrl *taskboard.Controller
}

// TaskBoard creates a live task list view.
//
// The view is inert until [TaskBoard.Run] is called: Run fetches the
// baseline, subscribes to the push channel and keeps the polling fallback
// armed until its context is cancelled.
func (c *Client) TaskBoard(opts TaskBoardOpts) (*TaskBoard, error) {
	ctrl, err := taskboard.NewController(taskboard.Config{
		Gateway:        c.api,
		Query:          toInternalTaskQuery(opts.Query),
		Notifier:       notifierFor(opts.OnNotification),
		PollInterval:   c.pollInterval,
		ReconcileDelay: c.reconcileDelay,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task board: %w", err)
	}

	return &TaskBoard{ctrl: ctrl}, nil
}

// Run fetches the baseline and keeps the view synchronized until the context
// is cancelled or [TaskBoard.Close] is called. It blocks.
func (b *TaskBoard) Run(ctx context.Context) error {
	return mapError(b.ctrl.Run(ctx))
}

// Close tears the view down. Idempotent, and safe while Run is active, in
// which case Run returns.
func (b *TaskBoard) Close() error {
	return b.ctrl.Close()
}

// Refresh refetches the baseline immediately. Concurrent calls coalesce into
// a single follow-up fetch.
func (b *TaskBoard) Refresh(ctx context.Context) error {
	return mapError(b.ctrl.Refresh(ctx))
}

// Tasks returns the current synchronized task page.
func (b *TaskBoard) Tasks() TaskList {
	return fromInternalTaskCollection(b.ctrl.Tasks())
}

// Live reports whether the push channel is connected. While false the view
// falls back to interval polling.
func (b *TaskBoard) Live() bool {
	return b.ctrl.Live()
}

// Focus refetches the baseline unless the push channel is live. Call it
// when the embedding UI regains focus after being backgrounded.
func (b *TaskBoard) Focus(ctx context.Context) {
	b.ctrl.Focus(ctx)
}

// Subscribe registers a callback invoked after every cache change: baseline
// refreshes, push updates and optimistic writes alike. Called from the SDK's
// goroutines; implementations must be safe for that.
func (b *TaskBoard) Subscribe(fn func()) {
	b.ctrl.Store().Subscribe(fn)
}

// Cancel optimistically cancels a task. Only pending or processing tasks
// accept the action; violations return [ErrNotValid] without dispatching.
func (b *TaskBoard) Cancel(ctx context.Context, id string) error {
	return mapError(b.ctrl.Cancel(ctx, id))
}

// Retry optimistically requeues a failed or cancelled task.
func (b *TaskBoard) Retry(ctx context.Context, id string) error {
	return mapError(b.ctrl.Retry(ctx, id))
}

// Delete optimistically removes a task.
func (b *TaskBoard) Delete(ctx context.Context, id string) error {
	return mapError(b.ctrl.Delete(ctx, id))
}

// ToggleSelect flips one task's membership in the selection set. Ids not
// present in the collection are ignored.
func (b *TaskBoard) ToggleSelect(id string) {
	b.ctrl.ToggleSelect(id)
}

// SelectAll selects every task in the collection, or clears the selection
// when everything was already selected.
func (b *TaskBoard) SelectAll() {
	b.ctrl.SelectAll()
}

// Selected returns the selected task ids sorted lexically.
func (b *TaskBoard) Selected() []string {
	return b.ctrl.Selected()
}

// DeleteSelected deletes every selected task as independent concurrent
// deletes, each confirmed or rolled back on its own. The returned error
// joins the per-task failures.
func (b *TaskBoard) DeleteSelected(ctx context.Context) error {
	return mapError(b.ctrl.DeleteSelected(ctx))
}
