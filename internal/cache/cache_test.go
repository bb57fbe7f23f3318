package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/model"
)

func ptr[T any](v T) *T { return &v }

func newTaskStore(t *testing.T, tasks ...model.Task) *cache.Store[model.Task] {
	t.Helper()

	store, err := cache.NewStore[model.Task](cache.StoreConfig{})
	require.NoError(t, err)

	store.ReplaceBaseline(cache.Collection[model.Task]{
		Entities: tasks,
		Total:    len(tasks),
		Limit:    50,
	})
	return store
}

func taskIDs(c cache.Collection[model.Task]) []string {
	ids := make([]string, 0, len(c.Entities))
	for _, e := range c.Entities {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestStoreApplyPatch(t *testing.T) {
	tests := map[string]struct {
		tasks    []model.Task
		patch    model.TaskPatch
		expIDs   []string
		expTotal int
		check    func(assert *assert.Assertions, c cache.Collection[model.Task])
	}{
		"A patch for a cached id should merge in place keeping position and total": {
			tasks: []model.Task{
				{ID: "task1", Status: model.TaskStatusProcessing, Progress: 40, InputURL: "https://files/contract.pdf"},
				{ID: "task2", Status: model.TaskStatusPending},
			},
			patch: model.TaskPatch{
				ID:       "task1",
				Status:   ptr(model.TaskStatusProcessing),
				Progress: ptr(65),
			},
			expIDs:   []string{"task1", "task2"},
			expTotal: 2,
			check: func(assert *assert.Assertions, c cache.Collection[model.Task]) {
				assert.Equal(65, c.Entities[0].Progress)
				assert.Equal(model.TaskStatusProcessing, c.Entities[0].Status)
				assert.Equal("https://files/contract.pdf", c.Entities[0].InputURL)
			},
		},

		"A patch omitting populated fields should not erase them": {
			tasks: []model.Task{
				{ID: "task1", Status: model.TaskStatusProcessing, Progress: 80, InputURL: "https://files/contract.pdf"},
			},
			patch: model.TaskPatch{
				ID:     "task1",
				Status: ptr(model.TaskStatusCompleted),
			},
			expIDs:   []string{"task1"},
			expTotal: 1,
			check: func(assert *assert.Assertions, c cache.Collection[model.Task]) {
				assert.Equal(model.TaskStatusCompleted, c.Entities[0].Status)
				assert.Equal("https://files/contract.pdf", c.Entities[0].InputURL)
			},
		},

		"A patch for an unknown id should insert at the head and bump the total": {
			tasks: []model.Task{
				{ID: "task1", Status: model.TaskStatusProcessing},
			},
			patch: model.TaskPatch{
				ID:           "task9",
				DocumentName: ptr("new.pdf"),
				Status:       ptr(model.TaskStatusPending),
			},
			expIDs:   []string{"task9", "task1"},
			expTotal: 2,
			check: func(assert *assert.Assertions, c cache.Collection[model.Task]) {
				assert.Equal("new.pdf", c.Entities[0].DocumentName)
			},
		},

		"A patch without id should be dropped": {
			tasks: []model.Task{
				{ID: "task1", Status: model.TaskStatusProcessing},
			},
			patch:    model.TaskPatch{},
			expIDs:   []string{"task1"},
			expTotal: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			store := newTaskStore(t, test.tasks...)
			store.ApplyPatch(test.patch)

			got := store.List()
			assert.Equal(test.expIDs, taskIDs(got))
			assert.Equal(test.expTotal, got.Total)
			if test.check != nil {
				test.check(assert, got)
			}

			// Idempotence: the same patch twice yields the same collection.
			store.ApplyPatch(test.patch)
			assert.Equal(got, store.List())
		})
	}
}

func TestStoreReplaceBaseline(t *testing.T) {
	assert := assert.New(t)

	store := newTaskStore(t,
		model.Task{ID: "task1", Status: model.TaskStatusProcessing},
		model.Task{ID: "task2", Status: model.TaskStatusPending},
	)

	store.ReplaceBaseline(cache.Collection[model.Task]{
		Entities: []model.Task{{ID: "task3", Status: model.TaskStatusCompleted}},
		Total:    41,
		Limit:    20,
		Offset:   20,
		Filters:  map[string]string{"status": "completed"},
	})

	got := store.List()
	assert.Equal([]string{"task3"}, taskIDs(got))
	assert.Equal(41, got.Total)
	assert.Equal(20, got.Limit)
	assert.Equal(20, got.Offset)
	assert.Equal(map[string]string{"status": "completed"}, got.Filters)
}

func TestStoreMutateAndRestore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t,
		model.Task{ID: "task1", Status: model.TaskStatusProcessing, Progress: 40},
		model.Task{ID: "task2", Status: model.TaskStatusPending},
	)

	snap, ok := store.Mutate("task1", func(t model.Task) model.Task {
		t.Status = model.TaskStatusCancelled
		t.Progress = 0
		return t
	})
	require.True(ok)

	got, _ := store.Get("task1")
	assert.Equal(model.TaskStatusCancelled, got.Status)
	assert.Equal(0, got.Progress)

	// Rollback restores the exact pre-mutation snapshot, progress included.
	assert.True(store.Restore(snap))
	got, _ = store.Get("task1")
	assert.Equal(model.TaskStatusProcessing, got.Status)
	assert.Equal(40, got.Progress)
	assert.Equal([]string{"task1", "task2"}, taskIDs(store.List()))
}

func TestStoreMutateUnknownID(t *testing.T) {
	assert := assert.New(t)

	store := newTaskStore(t, model.Task{ID: "task1"})

	_, ok := store.Mutate("missing", func(t model.Task) model.Task { return t })
	assert.False(ok)
	_, ok = store.Remove("missing")
	assert.False(ok)
}

func TestStoreRemoveAndRestore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t,
		model.Task{ID: "task1"},
		model.Task{ID: "task2", Status: model.TaskStatusFailed},
		model.Task{ID: "task3"},
	)

	snap, ok := store.Remove("task2")
	require.True(ok)
	assert.Equal([]string{"task1", "task3"}, taskIDs(store.List()))
	assert.Equal(2, store.List().Total)

	// Rollback re-inserts at the original position and restores the total.
	assert.True(store.Restore(snap))
	got := store.List()
	assert.Equal([]string{"task1", "task2", "task3"}, taskIDs(got))
	assert.Equal(3, got.Total)
	assert.Equal(model.TaskStatusFailed, got.Entities[1].Status)
}

func TestStoreRestoreSuppressedByNewerPush(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t,
		model.Task{ID: "task1", Status: model.TaskStatusProcessing, Progress: 40},
	)

	snap, ok := store.Mutate("task1", func(t model.Task) model.Task {
		t.Status = model.TaskStatusCancelled
		return t
	})
	require.True(ok)

	// A push observed after the optimistic write is authoritative.
	store.ApplyPatch(model.TaskPatch{
		ID:       "task1",
		Status:   ptr(model.TaskStatusCompleted),
		Progress: ptr(100),
	})

	assert.False(store.Restore(snap))
	got, _ := store.Get("task1")
	assert.Equal(model.TaskStatusCompleted, got.Status)
	assert.Equal(100, got.Progress)
}

func TestStoreRestoreSuppressedByBaselineReplace(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t, model.Task{ID: "task1", Status: model.TaskStatusProcessing})

	snap, ok := store.Remove("task1")
	require.True(ok)

	// A reconciliation fetch lands before the rollback.
	store.ReplaceBaseline(cache.Collection[model.Task]{
		Entities: []model.Task{{ID: "task1", Status: model.TaskStatusCompleted}},
		Total:    1,
	})

	assert.False(store.Restore(snap))
	got, _ := store.Get("task1")
	assert.Equal(model.TaskStatusCompleted, got.Status)
	assert.Equal(1, store.List().Total)
}

func TestStoreReorder(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t,
		model.Task{ID: "task1"},
		model.Task{ID: "task2"},
		model.Task{ID: "task3"},
	)

	snap, ok := store.Reorder([]string{"task3", "task1", "task2"})
	require.True(ok)
	assert.Equal([]string{"task3", "task1", "task2"}, taskIDs(store.List()))

	assert.True(store.Restore(snap))
	assert.Equal([]string{"task1", "task2", "task3"}, taskIDs(store.List()))
}

func TestStoreReorderRejectsNonPermutations(t *testing.T) {
	tests := map[string]struct {
		ids []string
	}{
		"Missing ids should be rejected":    {ids: []string{"task1"}},
		"Unknown ids should be rejected":    {ids: []string{"task1", "task9"}},
		"Duplicated ids should be rejected": {ids: []string{"task1", "task1"}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			store := newTaskStore(t, model.Task{ID: "task1"}, model.Task{ID: "task2"})

			_, ok := store.Reorder(test.ids)
			assert.False(ok)
			assert.Equal([]string{"task1", "task2"}, taskIDs(store.List()))
		})
	}
}

func TestStoreReorderRestoreSuppressedByBaselineReplace(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTaskStore(t, model.Task{ID: "task1"}, model.Task{ID: "task2"})

	snap, ok := store.Reorder([]string{"task2", "task1"})
	require.True(ok)

	store.ReplaceBaseline(cache.Collection[model.Task]{
		Entities: []model.Task{{ID: "task2"}, {ID: "task1"}},
		Total:    2,
	})

	assert.False(store.Restore(snap))
	assert.Equal([]string{"task2", "task1"}, taskIDs(store.List()))
}

func TestStoreSubscribe(t *testing.T) {
	assert := assert.New(t)

	store := newTaskStore(t, model.Task{ID: "task1"})

	changes := 0
	store.Subscribe(func() { changes++ })

	store.ApplyPatch(model.TaskPatch{ID: "task1", Progress: ptr(10)})
	store.ReplaceBaseline(cache.Collection[model.Task]{Entities: []model.Task{{ID: "task1"}}, Total: 1})
	_, _ = store.Mutate("task1", func(t model.Task) model.Task { return t })
	_, _ = store.Remove("task1")

	assert.Equal(4, changes)
}

func TestStoreListCopies(t *testing.T) {
	assert := assert.New(t)

	store := newTaskStore(t, model.Task{ID: "task1", Progress: 10})

	got := store.List()
	got.Entities[0].Progress = 99

	fresh, _ := store.Get("task1")
	assert.Equal(10, fresh.Progress)
}
