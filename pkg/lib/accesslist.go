package lib

import (
	"context"
	"fmt"

	"github.com/traduct/dashsync/internal/app/accesslist"
)

// AccessListOpts configures a group access list view.
type AccessListOpts struct {
	// Group is the group whose provider access list this view owns.
	// Required.
	Group string

	// OnNotification receives a report for every settled optimistic
	// mutation. Optional. Called from the SDK's goroutines.
	OnNotification func(Notification)
}

// AccessList is a live synchronized view over one group's ordered provider
// access list.
//
// Create one with [Client.AccessList], drive it with [AccessList.Run] and
// release it with [AccessList.Close].
type AccessList struct {
	ctrl *accesslist.Controller
}

// AccessList creates a live access list view for a group.
func (c *Client) AccessList(opts AccessListOpts) (*AccessList, error) {
	ctrl, err := accesslist.NewController(accesslist.Config{
		Gateway:        c.api,
		GroupID:        opts.Group,
		Notifier:       notifierFor(opts.OnNotification),
		PollInterval:   c.pollInterval,
		ReconcileDelay: c.reconcileDelay,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create access list: %w", err)
	}

	return &AccessList{ctrl: ctrl}, nil
}

// Run fetches the baseline and keeps the view synchronized until the context
// is cancelled or [AccessList.Close] is called. It blocks.
func (l *AccessList) Run(ctx context.Context) error {
	return mapError(l.ctrl.Run(ctx))
}

// Close tears the view down. Idempotent, and safe while Run is active, in
// which case Run returns.
func (l *AccessList) Close() error {
	return l.ctrl.Close()
}

// Refresh refetches the baseline immediately. Concurrent calls coalesce into
// a single follow-up fetch.
func (l *AccessList) Refresh(ctx context.Context) error {
	return mapError(l.ctrl.Refresh(ctx))
}

// Grants returns the current access list in priority order.
func (l *AccessList) Grants() []Grant {
	return fromInternalGrantList(l.ctrl.Grants().Entities)
}

// Live reports whether the push channel is connected.
func (l *AccessList) Live() bool {
	return l.ctrl.Live()
}

// Focus refetches the baseline unless the push channel is live. Call it
// when the embedding UI regains focus after being backgrounded.
func (l *AccessList) Focus(ctx context.Context) {
	l.ctrl.Focus(ctx)
}

// Subscribe registers a callback invoked after every cache change. Called
// from the SDK's goroutines; implementations must be safe for that.
func (l *AccessList) Subscribe(fn func()) {
	l.ctrl.Store().Subscribe(fn)
}

// Grant grants the group access to a provider and refetches the list. The
// server assigns the final position.
func (l *AccessList) Grant(ctx context.Context, providerID string) error {
	return mapError(l.ctrl.Grant(ctx, providerID))
}

// Revoke optimistically removes a provider from the access list.
func (l *AccessList) Revoke(ctx context.Context, providerID string) error {
	return mapError(l.ctrl.Revoke(ctx, providerID))
}

// ToggleSelect flips one provider's membership in the selection set. Ids
// not present in the list are ignored.
func (l *AccessList) ToggleSelect(providerID string) {
	l.ctrl.ToggleSelect(providerID)
}

// Selected returns the selected provider ids sorted lexically.
func (l *AccessList) Selected() []string {
	return l.ctrl.Selected()
}

// RevokeSelected revokes every selected provider as independent concurrent
// revocations, each confirmed or rolled back on its own. The returned error
// joins the per-provider failures.
func (l *AccessList) RevokeSelected(ctx context.Context) error {
	return mapError(l.ctrl.RevokeSelected(ctx))
}

// Move optimistically moves the provider at index from to index to and ships
// the complete resulting order to the server. Out-of-range indexes return
// [ErrNotValid].
func (l *AccessList) Move(ctx context.Context, from, to int) error {
	return mapError(l.ctrl.Move(ctx, from, to))
}
