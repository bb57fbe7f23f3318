package model

import (
	"time"
)

// TaskStatus represents the status of a translation task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is queued and waiting for a worker.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusProcessing indicates the task is being translated.
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusCancelled indicates the task was cancelled by a user.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Cancellable reports whether a task in this status accepts a cancel action.
func (s TaskStatus) Cancellable() bool {
	return s == TaskStatusPending || s == TaskStatusProcessing
}

// Retryable reports whether a task in this status accepts a retry action.
func (s TaskStatus) Retryable() bool {
	return s == TaskStatusFailed || s == TaskStatusCancelled
}

// TaskPriority represents the queue priority of a task.
type TaskPriority string

const (
	TaskPriorityNormal TaskPriority = "normal"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a document translation task.
type Task struct {
	ID              string
	OwnerID         string
	OwnerEmail      string
	DocumentName    string
	SourceLang      string
	TargetLang      string
	Engine          string
	Priority        TaskPriority
	Notes           string
	Status          TaskStatus
	Progress        int // 0-100.
	ProgressMessage string
	Error           string
	InputURL        string
	OutputURL       string
	PageCount       int
	ProviderID      string
	TaskType        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

// EntityID returns the cache identity of the task.
func (t Task) EntityID() string { return t.ID }

// TaskPatch is a partial update for a task. Nil fields were omitted by the
// producer and keep the value the cached task already holds.
type TaskPatch struct {
	ID              string
	OwnerID         *string
	OwnerEmail      *string
	DocumentName    *string
	SourceLang      *string
	TargetLang      *string
	Engine          *string
	Priority        *TaskPriority
	Notes           *string
	Status          *TaskStatus
	Progress        *int
	ProgressMessage *string
	Error           *string
	InputURL        *string
	OutputURL       *string
	PageCount       *int
	ProviderID      *string
	TaskType        *string
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
	CompletedAt     *time.Time
}

// EntityID returns the cache identity of the patched task.
func (p TaskPatch) EntityID() string { return p.ID }

// Apply merges the patch into an existing task and returns the result.
// Omitted fields are retained verbatim.
func (p TaskPatch) Apply(t Task) Task {
	if p.OwnerID != nil {
		t.OwnerID = *p.OwnerID
	}
	if p.OwnerEmail != nil {
		t.OwnerEmail = *p.OwnerEmail
	}
	if p.DocumentName != nil {
		t.DocumentName = *p.DocumentName
	}
	if p.SourceLang != nil {
		t.SourceLang = *p.SourceLang
	}
	if p.TargetLang != nil {
		t.TargetLang = *p.TargetLang
	}
	if p.Engine != nil {
		t.Engine = *p.Engine
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.ProgressMessage != nil {
		t.ProgressMessage = *p.ProgressMessage
	}
	if p.Error != nil {
		t.Error = *p.Error
	}
	if p.InputURL != nil {
		t.InputURL = *p.InputURL
	}
	if p.OutputURL != nil {
		t.OutputURL = *p.OutputURL
	}
	if p.PageCount != nil {
		t.PageCount = *p.PageCount
	}
	if p.ProviderID != nil {
		t.ProviderID = *p.ProviderID
	}
	if p.TaskType != nil {
		t.TaskType = *p.TaskType
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
	if p.CompletedAt != nil {
		t.CompletedAt = p.CompletedAt
	}
	return t
}

// Materialize builds a task from the patch alone, used when an update event
// references a task the cache has never seen.
func (p TaskPatch) Materialize() Task {
	return p.Apply(Task{ID: p.ID})
}
