package lib

import (
	"time"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/gateway"
	"github.com/traduct/dashsync/internal/model"
)

// TaskStatus represents the lifecycle state of a translation task.
//
// The typical lifecycle is:
//
//	pending -> processing -> completed
//
// A task can also end up failed or cancelled, from which retry requeues it
// as pending again.
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

// TaskPriority represents the queue priority of a task.
type TaskPriority string

const (
	TaskPriorityNormal TaskPriority = "normal"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a document translation task.
//
// This is a read-only snapshot of the synchronized state at the time of the
// call. Use [TaskBoard.Tasks] again (or subscribe) for the latest state.
type Task struct {
	// ID is the unique task identifier.
	ID string
	// OwnerID identifies the user that submitted the task.
	OwnerID string
	// OwnerEmail is the submitting user's email.
	OwnerEmail string
	// DocumentName is the uploaded document's file name.
	DocumentName string
	// SourceLang and TargetLang are the translation language pair.
	SourceLang string
	TargetLang string
	// Engine is the translation engine name.
	Engine string
	// Priority is the queue priority.
	Priority TaskPriority
	// Status is the current lifecycle state.
	Status TaskStatus
	// Progress is the completion percentage (0-100).
	Progress int
	// ProgressMessage is the human-readable progress detail.
	ProgressMessage string
	// Error holds the failure reason for failed tasks.
	Error string
	// OutputURL is the translated document download URL, set on completion.
	OutputURL string
	// PageCount is the document page count.
	PageCount int
	// CreatedAt is when the task was submitted.
	CreatedAt time.Time
	// UpdatedAt is when the task state last changed.
	UpdatedAt time.Time
	// CompletedAt is when the task finished. Nil while not terminal.
	CompletedAt *time.Time
}

// TaskList is a page of tasks plus the pagination totals of the fetch that
// produced it.
type TaskList struct {
	// Tasks is the page content in server order.
	Tasks []Task
	// Total is the number of tasks matching the query across all pages.
	Total int
	// Limit and Offset are the pagination window of the fetch.
	Limit  int
	Offset int
}

// TaskQuery filters the task board's baseline fetches.
type TaskQuery struct {
	// OwnerID filters by submitting user id.
	OwnerID string
	// OwnerEmail filters by submitting user email.
	OwnerEmail string
	// Status filters by lifecycle state. Empty means all.
	Status TaskStatus
	// Engine filters by translation engine name.
	Engine string
	// Priority filters by queue priority.
	Priority TaskPriority
	// Limit and Offset select the pagination window. Zero limit uses the
	// server default page size.
	Limit  int
	Offset int
}

// Grant links a translation provider into a group's ordered access list.
type Grant struct {
	// ProviderID is the provider configuration this grant exposes. It is
	// the id the revoke and reorder operations address.
	ProviderID string
	// GroupID is the owning group.
	GroupID string
	// SortOrder is the grant's position in the group's priority order.
	SortOrder int
	// CreatedAt is when access was granted.
	CreatedAt time.Time
}

// ProviderType identifies the translation backend a provider configuration
// targets.
type ProviderType string

const (
	ProviderTypeOpenAI      ProviderType = "openai"
	ProviderTypeAzureOpenAI ProviderType = "azure_openai"
	ProviderTypeDeepL       ProviderType = "deepl"
	ProviderTypeOllama      ProviderType = "ollama"
	ProviderTypeTencent     ProviderType = "tencent"
	ProviderTypeMinerU      ProviderType = "mineru"
	// ProviderTypeGeneric covers the OpenAI-compatible vendors.
	ProviderTypeGeneric ProviderType = "generic"
)

// Provider represents a translation provider configuration.
//
// Provider credentials (API keys, secrets) are deliberately not exposed;
// Backend carries a redacted summary of the settings instead.
type Provider struct {
	// ID is the provider configuration id.
	ID string
	// Name is the human-friendly configuration name.
	Name string
	// Type is the translation backend.
	Type ProviderType
	// Description is the free-form configuration description.
	Description string
	// Active reports whether the configuration is enabled.
	Active bool
	// Backend is a redacted one-line summary of the backend settings
	// (model, endpoint, region), never credentials.
	Backend string
	// CreatedAt is when the configuration was created.
	CreatedAt time.Time
	// UpdatedAt is when the configuration was last modified.
	UpdatedAt time.Time
}

// UserRole represents the access level of a dashboard user.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User represents a dashboard user account.
type User struct {
	// ID is the user id.
	ID string
	// Email is the login email.
	Email string
	// Name is the display name.
	Name string
	// Role is the access level.
	Role UserRole
	// Active reports whether the account may log in and submit tasks.
	Active bool
	// DailyPageLimit is the account's daily translation page quota.
	DailyPageLimit int
	// DailyPageUsed is today's consumed quota.
	DailyPageUsed int
	// CreatedAt is when the account was created.
	CreatedAt time.Time
}

// Action identifies a user-triggered mutation.
type Action string

const (
	ActionCancel  Action = "cancel"
	ActionRetry   Action = "retry"
	ActionDelete  Action = "delete"
	ActionRevoke  Action = "revoke"
	ActionReorder Action = "reorder"
)

// NotificationLevel represents the severity of a mutation notification.
type NotificationLevel string

const (
	// NotificationSuccess reports a confirmed mutation.
	NotificationSuccess NotificationLevel = "success"
	// NotificationWarning reports a settled mutation that needed no
	// rollback (e.g. the entity was already gone).
	NotificationWarning NotificationLevel = "warning"
	// NotificationFailure reports a rolled-back mutation.
	NotificationFailure NotificationLevel = "failure"
)

// Notification is a user-visible report of a settled optimistic mutation.
type Notification struct {
	// Level is the outcome severity.
	Level NotificationLevel
	// Action is the mutation that settled.
	Action Action
	// EntityID is the affected entity. Empty for reorders.
	EntityID string
	// Message is the human-readable outcome description.
	Message string
	// Retry marks failures worth retrying (transport faults, server
	// errors) as opposed to rejections that will fail again.
	Retry bool
}

// --- Internal conversion helpers ---

func toInternalTaskQuery(q TaskQuery) gateway.TaskQuery {
	return gateway.TaskQuery{
		OwnerID:    q.OwnerID,
		OwnerEmail: q.OwnerEmail,
		Status:     string(q.Status),
		Engine:     q.Engine,
		Priority:   string(q.Priority),
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
}

func fromInternalTask(t model.Task) Task {
	return Task{
		ID:              t.ID,
		OwnerID:         t.OwnerID,
		OwnerEmail:      t.OwnerEmail,
		DocumentName:    t.DocumentName,
		SourceLang:      t.SourceLang,
		TargetLang:      t.TargetLang,
		Engine:          t.Engine,
		Priority:        TaskPriority(t.Priority),
		Status:          TaskStatus(t.Status),
		Progress:        t.Progress,
		ProgressMessage: t.ProgressMessage,
		Error:           t.Error,
		OutputURL:       t.OutputURL,
		PageCount:       t.PageCount,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CompletedAt:     t.CompletedAt,
	}
}

func fromInternalTaskCollection(c cache.Collection[model.Task]) TaskList {
	tasks := make([]Task, len(c.Entities))
	for i, t := range c.Entities {
		tasks[i] = fromInternalTask(t)
	}

	return TaskList{
		Tasks:  tasks,
		Total:  c.Total,
		Limit:  c.Limit,
		Offset: c.Offset,
	}
}

func fromInternalGrant(g model.Grant) Grant {
	return Grant{
		ProviderID: g.ProviderID,
		GroupID:    g.GroupID,
		SortOrder:  g.SortOrder,
		CreatedAt:  g.CreatedAt,
	}
}

func fromInternalGrantList(gs []model.Grant) []Grant {
	result := make([]Grant, len(gs))
	for i, g := range gs {
		result[i] = fromInternalGrant(g)
	}
	return result
}

func fromInternalProviderList(ps []model.Provider) []Provider {
	result := make([]Provider, len(ps))
	for i, p := range ps {
		result[i] = Provider{
			ID:          p.ID,
			Name:        p.Name,
			Type:        ProviderType(p.Type),
			Description: p.Description,
			Active:      p.Active,
			Backend:     model.SettingsSummary(p.Settings),
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
	}
	return result
}

func fromInternalUserList(us []model.User) []User {
	result := make([]User, len(us))
	for i, u := range us {
		result[i] = User{
			ID:             u.ID,
			Email:          u.Email,
			Name:           u.Name,
			Role:           UserRole(u.Role),
			Active:         u.Active,
			DailyPageLimit: u.DailyPageLimit,
			DailyPageUsed:  u.DailyPageUsed,
			CreatedAt:      u.CreatedAt,
		}
	}
	return result
}

func fromInternalNotification(n model.Notification) Notification {
	return Notification{
		Level:    NotificationLevel(n.Level),
		Action:   Action(n.Action),
		EntityID: n.EntityID,
		Message:  n.Message,
		Retry:    n.Retry,
	}
}
