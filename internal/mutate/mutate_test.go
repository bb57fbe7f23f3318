package mutate_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tassert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/log"
	"github.com/traduct/dashsync/internal/model"
	"github.com/traduct/dashsync/internal/mutate"
	"github.com/traduct/dashsync/internal/mutate/mutatemock"
)

// serverError mimics the gateway's API errors: a sentinel in the chain
// plus the server supplied reason.
type serverError struct {
	sentinel error
	reason   string
}

func (e serverError) Error() string  { return e.reason }
func (e serverError) Reason() string { return e.reason }
func (e serverError) Unwrap() error  { return e.sentinel }

func baselineTasks() []model.Task {
	return []model.Task{
		{ID: "t1", DocumentName: "contract.pdf", Status: model.TaskStatusProcessing, Progress: 40},
		{ID: "t2", DocumentName: "report.docx", Status: model.TaskStatusPending},
		{ID: "t3", DocumentName: "manual.pdf", Status: model.TaskStatusFailed, Error: "engine timeout"},
	}
}

func newTaskStore(t *testing.T) *cache.Store[model.Task] {
	t.Helper()

	store, err := cache.NewStore[model.Task](cache.StoreConfig{})
	require.NoError(t, err)
	store.ReplaceBaseline(cache.Collection[model.Task]{Entities: baselineTasks(), Total: 3})

	return store
}

func newCoordinator(t *testing.T, store *cache.Store[model.Task], notifier mutate.Notifier) *mutate.Coordinator[model.Task] {
	t.Helper()

	c, err := mutate.NewCoordinator(mutate.CoordinatorConfig[model.Task]{
		Store:    store,
		Notifier: notifier,
		Logger:   log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	return c
}

func cancelTask(tk model.Task) model.Task {
	tk.Status = model.TaskStatusCancelled
	return tk
}

func TestNewCoordinator(t *testing.T) {
	store, err := cache.NewStore[model.Task](cache.StoreConfig{})
	require.NoError(t, err)

	tests := map[string]struct {
		config mutate.CoordinatorConfig[model.Task]
		expErr bool
	}{
		"valid config should create coordinator": {
			config: mutate.CoordinatorConfig[model.Task]{
				Store:    store,
				Notifier: &mutatemock.MockNotifier{},
				Logger:   log.Noop,
			},
			expErr: false,
		},
		"missing store should fail": {
			config: mutate.CoordinatorConfig[model.Task]{
				Notifier: &mutatemock.MockNotifier{},
			},
			expErr: true,
		},
		"missing notifier and logger should default": {
			config: mutate.CoordinatorConfig[model.Task]{
				Store: store,
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			c, err := mutate.NewCoordinator(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(c)
			} else {
				require.NoError(err)
				require.NotNil(c)
				c.Stop()
			}
		})
	}
}

func TestCoordinatorUpdate(t *testing.T) {
	tests := map[string]struct {
		id           string
		callErr      error
		mockNotifier func(m *mutatemock.MockNotifier)
		expErr       error
		expStatus    model.TaskStatus
	}{
		"a confirmed update should keep the optimistic state and notify success": {
			id: "t1",
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationSuccess &&
						n.Action == model.ActionCancel &&
						n.EntityID == "t1"
				})).Once()
			},
			expStatus: model.TaskStatusCancelled,
		},
		"a transient failure should roll back and notify a retryable failure": {
			id:      "t1",
			callErr: fmt.Errorf("dispatch request: %w", model.ErrTransient),
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationFailure && n.Retry
				})).Once()
			},
			expErr:    model.ErrTransient,
			expStatus: model.TaskStatusProcessing,
		},
		"an unclassified failure should roll back like a transient one": {
			id:      "t1",
			callErr: fmt.Errorf("connection reset"),
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationFailure && n.Retry
				})).Once()
			},
			expErr:    assert.AnError,
			expStatus: model.TaskStatusProcessing,
		},
		"a policy denial should roll back and surface the server reason verbatim": {
			id:      "t1",
			callErr: serverError{sentinel: model.ErrPolicyDenied, reason: "Task is no longer cancellable"},
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationFailure &&
						n.Message == "Task is no longer cancellable" &&
						!n.Retry
				})).Once()
			},
			expErr:    model.ErrPolicyDenied,
			expStatus: model.TaskStatusProcessing,
		},
		"a validation rejection should roll back and surface the reason": {
			id:      "t1",
			callErr: serverError{sentinel: model.ErrNotValid, reason: "Unknown action"},
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationFailure && n.Message == "Unknown action"
				})).Once()
			},
			expErr:    model.ErrNotValid,
			expStatus: model.TaskStatusProcessing,
		},
		"a not found response should keep the optimistic state and warn": {
			id:      "t1",
			callErr: serverError{sentinel: model.ErrNotFound, reason: "Task not found"},
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationWarning && n.EntityID == "t1"
				})).Once()
			},
			expStatus: model.TaskStatusCancelled,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			store := newTaskStore(t)
			mNotifier := &mutatemock.MockNotifier{}
			test.mockNotifier(mNotifier)
			c := newCoordinator(t, store, mNotifier)

			err := c.Update(context.Background(), test.id, model.ActionCancel, cancelTask, func(context.Context) error {
				return test.callErr
			})

			switch {
			case test.expErr == nil:
				assert.NoError(err)
			case errors.Is(test.expErr, tassert.AnError):
				assert.Error(err)
			default:
				assert.ErrorIs(err, test.expErr)
			}

			got, ok := store.Get(test.id)
			require.True(ok)
			assert.Equal(test.expStatus, got.Status)
			assert.Equal(40, got.Progress)
			assert.Equal("contract.pdf", got.DocumentName)

			mNotifier.AssertExpectations(t)
		})
	}
}

func TestCoordinatorUpdateUncachedID(t *testing.T) {
	assert := assert.New(t)

	store := newTaskStore(t)
	mNotifier := &mutatemock.MockNotifier{}
	c := newCoordinator(t, store, mNotifier)

	dispatched := false
	err := c.Update(context.Background(), "missing", model.ActionCancel, cancelTask, func(context.Context) error {
		dispatched = true
		return nil
	})

	assert.ErrorIs(err, model.ErrNotFound)
	assert.False(dispatched)
	mNotifier.AssertExpectations(t)
}

func TestCoordinatorUpdateRollbackSuppressedByFresherPush(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t)
	mNotifier := &mutatemock.MockNotifier{}
	mNotifier.On("Notify", mock.Anything, mock.Anything).Once()
	c := newCoordinator(t, store, mNotifier)

	progress := 80
	err := c.Update(context.Background(), "t1", model.ActionCancel, cancelTask, func(context.Context) error {
		// A fresher server update lands while the call is in flight.
		store.ApplyPatch(model.TaskPatch{ID: "t1", Progress: &progress})
		return fmt.Errorf("dispatch request: %w", model.ErrTransient)
	})
	assert.ErrorIs(err, model.ErrTransient)

	// The rollback must not regress the fresher push.
	got, ok := store.Get("t1")
	require.True(ok)
	assert.Equal(80, got.Progress)
	mNotifier.AssertExpectations(t)
}

func TestCoordinatorDelete(t *testing.T) {
	tests := map[string]struct {
		callErr      error
		mockNotifier func(m *mutatemock.MockNotifier)
		expErr       error
		expIDs       []string
		expTotal     int
	}{
		"a confirmed delete should keep the entity removed": {
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationSuccess && n.Action == model.ActionDelete
				})).Once()
			},
			expIDs:   []string{"t1", "t3"},
			expTotal: 2,
		},
		"a failed delete should restore the entity at its previous position": {
			callErr: fmt.Errorf("dispatch request: %w", model.ErrTransient),
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationFailure && n.Retry
				})).Once()
			},
			expErr:   model.ErrTransient,
			expIDs:   []string{"t1", "t2", "t3"},
			expTotal: 3,
		},
		"deleting an entity already gone on the server should not resurrect it": {
			callErr: serverError{sentinel: model.ErrNotFound, reason: "Task not found"},
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationWarning && n.Message == "already removed"
				})).Once()
			},
			expIDs:   []string{"t1", "t3"},
			expTotal: 2,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			store := newTaskStore(t)
			mNotifier := &mutatemock.MockNotifier{}
			test.mockNotifier(mNotifier)
			c := newCoordinator(t, store, mNotifier)

			err := c.Delete(context.Background(), "t2", func(context.Context) error {
				return test.callErr
			})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				assert.NoError(err)
			}

			assert.Equal(test.expIDs, store.IDs())
			assert.Equal(test.expTotal, store.List().Total)
			mNotifier.AssertExpectations(t)
		})
	}
}

func TestCoordinatorBulkDelete(t *testing.T) {
	assert := assert.New(t)

	store := newTaskStore(t)
	mNotifier := &mutatemock.MockNotifier{}
	mNotifier.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
		return n.Level == model.NotificationSuccess
	})).Twice()
	mNotifier.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
		return n.Level == model.NotificationFailure && n.EntityID == "t2"
	})).Once()
	c := newCoordinator(t, store, mNotifier)

	err := c.BulkDelete(context.Background(), []string{"t1", "t2", "t3"}, func(_ context.Context, id string) error {
		if id == "t2" {
			return fmt.Errorf("dispatch request: %w", model.ErrTransient)
		}
		return nil
	})

	// Only the failed delete rolls back, the confirmed ones stay removed.
	assert.ErrorIs(err, model.ErrTransient)
	assert.Equal([]string{"t2"}, store.IDs())
	assert.Equal(1, store.List().Total)
	mNotifier.AssertExpectations(t)
}

func TestCoordinatorBulkDeleteSkipsUncachedIDs(t *testing.T) {
	assert := assert.New(t)

	store := newTaskStore(t)
	mNotifier := &mutatemock.MockNotifier{}
	mNotifier.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
		return n.Level == model.NotificationSuccess && n.EntityID == "t1"
	})).Once()
	c := newCoordinator(t, store, mNotifier)

	calls := 0
	err := c.BulkDelete(context.Background(), []string{"t1", "missing"}, func(_ context.Context, id string) error {
		calls++
		return nil
	})

	assert.NoError(err)
	assert.Equal(1, calls)
	assert.Equal([]string{"t2", "t3"}, store.IDs())
	mNotifier.AssertExpectations(t)
}

func TestCoordinatorReorder(t *testing.T) {
	tests := map[string]struct {
		ids          []string
		callErr      error
		mockNotifier func(m *mutatemock.MockNotifier)
		expErr       error
		expDispatch  bool
		expIDs       []string
	}{
		"a confirmed reorder should keep the new order": {
			ids: []string{"t3", "t1", "t2"},
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationSuccess && n.Action == model.ActionReorder
				})).Once()
			},
			expDispatch: true,
			expIDs:      []string{"t3", "t1", "t2"},
		},
		"a failed reorder should restore the previous order": {
			ids:     []string{"t3", "t1", "t2"},
			callErr: fmt.Errorf("dispatch request: %w", model.ErrTransient),
			mockNotifier: func(m *mutatemock.MockNotifier) {
				m.On("Notify", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
					return n.Level == model.NotificationFailure
				})).Once()
			},
			expErr:      model.ErrTransient,
			expDispatch: true,
			expIDs:      []string{"t1", "t2", "t3"},
		},
		"an order that is not a permutation should fail without dispatching": {
			ids:          []string{"t3", "t1"},
			mockNotifier: func(m *mutatemock.MockNotifier) {},
			expErr:       model.ErrNotValid,
			expIDs:       []string{"t1", "t2", "t3"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			store := newTaskStore(t)
			mNotifier := &mutatemock.MockNotifier{}
			test.mockNotifier(mNotifier)
			c := newCoordinator(t, store, mNotifier)

			dispatched := false
			err := c.Reorder(context.Background(), test.ids, func(context.Context) error {
				dispatched = true
				return test.callErr
			})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				assert.NoError(err)
			}

			assert.Equal(test.expDispatch, dispatched)
			assert.Equal(test.expIDs, store.IDs())
			mNotifier.AssertExpectations(t)
		})
	}
}

func TestCoordinatorReconcileCoalesces(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t)
	mNotifier := &mutatemock.MockNotifier{}
	mNotifier.On("Notify", mock.Anything, mock.Anything).Times(3)

	var reconciles atomic.Int32
	reconciled := make(chan struct{}, 5)
	c, err := mutate.NewCoordinator(mutate.CoordinatorConfig[model.Task]{
		Store:    store,
		Notifier: mNotifier,
		Reconcile: func(context.Context) {
			reconciles.Add(1)
			reconciled <- struct{}{}
		},
		ReconcileDelay: 50 * time.Millisecond,
		Logger:         log.Noop,
	})
	require.NoError(err)
	defer c.Stop()

	// A burst of settled mutations collapses into a single reconcile.
	for _, id := range []string{"t1", "t2", "t3"} {
		err := c.Update(context.Background(), id, model.ActionCancel, cancelTask, func(context.Context) error {
			return nil
		})
		require.NoError(err)
	}

	select {
	case <-reconciled:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reconcile")
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(int32(1), reconciles.Load())
	mNotifier.AssertExpectations(t)
}

func TestCoordinatorPending(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t)
	mNotifier := &mutatemock.MockNotifier{}
	mNotifier.On("Notify", mock.Anything, mock.Anything).Once()
	c := newCoordinator(t, store, mNotifier)

	inFlight := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- c.Update(context.Background(), "t1", model.ActionCancel, cancelTask, func(context.Context) error {
			close(inFlight)
			<-release
			return nil
		})
	}()

	<-inFlight
	assert.True(c.IsPending("t1"))
	assert.False(c.IsPending("t2"))
	pending := c.Pending()
	require.Len(pending, 1)
	assert.Equal(model.ActionCancel, pending[0].Action)
	assert.Equal("t1", pending[0].EntityID)

	close(release)
	require.NoError(<-done)

	assert.Empty(c.Pending())
	assert.False(c.IsPending("t1"))
	mNotifier.AssertExpectations(t)
}
