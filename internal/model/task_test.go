package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/traduct/dashsync/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestTaskPatchApply(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	baseline := model.Task{
		ID:           "task1",
		OwnerEmail:   "ana@example.com",
		DocumentName: "contract.pdf",
		SourceLang:   "en",
		TargetLang:   "es",
		Engine:       "babeldoc",
		Status:       model.TaskStatusProcessing,
		Progress:     40,
		InputURL:     "https://files.example.com/contract.pdf",
		PageCount:    12,
		CreatedAt:    now,
	}

	tests := map[string]struct {
		task    model.Task
		patch   model.TaskPatch
		expTask model.Task
	}{
		"A status and progress patch should update only those fields": {
			task: baseline,
			patch: model.TaskPatch{
				ID:       "task1",
				Status:   ptr(model.TaskStatusProcessing),
				Progress: ptr(65),
			},
			expTask: func() model.Task {
				t := baseline
				t.Progress = 65
				return t
			}(),
		},

		"A patch omitting a populated field should retain it verbatim": {
			task: baseline,
			patch: model.TaskPatch{
				ID:     "task1",
				Status: ptr(model.TaskStatusCompleted),
			},
			expTask: func() model.Task {
				t := baseline
				t.Status = model.TaskStatusCompleted
				return t
			}(),
		},

		"A patch carrying zero values should overwrite with them": {
			task: baseline,
			patch: model.TaskPatch{
				ID:       "task1",
				Status:   ptr(model.TaskStatusPending),
				Progress: ptr(0),
				Error:    ptr(""),
			},
			expTask: func() model.Task {
				t := baseline
				t.Status = model.TaskStatusPending
				t.Progress = 0
				t.Error = ""
				return t
			}(),
		},

		"A completion patch should set the completion timestamp": {
			task: baseline,
			patch: model.TaskPatch{
				ID:          "task1",
				Status:      ptr(model.TaskStatusCompleted),
				Progress:    ptr(100),
				OutputURL:   ptr("https://files.example.com/contract.es.pdf"),
				CompletedAt: ptr(now.Add(5 * time.Minute)),
			},
			expTask: func() model.Task {
				t := baseline
				t.Status = model.TaskStatusCompleted
				t.Progress = 100
				t.OutputURL = "https://files.example.com/contract.es.pdf"
				t.CompletedAt = ptr(now.Add(5 * time.Minute))
				return t
			}(),
		},

		"An empty patch should leave the task untouched": {
			task:    baseline,
			patch:   model.TaskPatch{ID: "task1"},
			expTask: baseline,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			got := test.patch.Apply(test.task)

			assert.Equal(test.expTask, got)
			// Applying twice must give the same result as applying once.
			assert.Equal(test.expTask, test.patch.Apply(got))
		})
	}
}

func TestTaskPatchMaterialize(t *testing.T) {
	assert := assert.New(t)

	patch := model.TaskPatch{
		ID:           "task9",
		DocumentName: ptr("report.pdf"),
		Status:       ptr(model.TaskStatusPending),
		Progress:     ptr(0),
	}

	got := patch.Materialize()

	assert.Equal("task9", got.ID)
	assert.Equal("report.pdf", got.DocumentName)
	assert.Equal(model.TaskStatusPending, got.Status)
	assert.Empty(got.InputURL)
}

func TestTaskStatusTransitions(t *testing.T) {
	tests := map[string]struct {
		status         model.TaskStatus
		expCancellable bool
		expRetryable   bool
	}{
		"Pending tasks can be cancelled but not retried": {
			status:         model.TaskStatusPending,
			expCancellable: true,
		},
		"Processing tasks can be cancelled but not retried": {
			status:         model.TaskStatusProcessing,
			expCancellable: true,
		},
		"Completed tasks accept neither action": {
			status: model.TaskStatusCompleted,
		},
		"Failed tasks can be retried but not cancelled": {
			status:       model.TaskStatusFailed,
			expRetryable: true,
		},
		"Cancelled tasks can be retried but not cancelled again": {
			status:       model.TaskStatusCancelled,
			expRetryable: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expCancellable, test.status.Cancellable())
			assert.Equal(test.expRetryable, test.status.Retryable())
		})
	}
}

func TestGrantPatchApply(t *testing.T) {
	assert := assert.New(t)

	grant := model.Grant{
		ID:         "link1",
		GroupID:    "group1",
		ProviderID: "prov1",
		SortOrder:  2,
	}

	got := model.GrantPatch{
		ProviderID: "prov1",
		SortOrder:  ptr(0),
	}.Apply(grant)

	assert.Equal(0, got.SortOrder)
	assert.Equal("link1", got.ID)
	assert.Equal("group1", got.GroupID)
}
