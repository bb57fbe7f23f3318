package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/model"
)

// JSONPrinter prints dashboard information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskItem represents a task in the list output.
type taskItem struct {
	ID              string     `json:"id"`
	DocumentName    string     `json:"document_name"`
	SourceLang      string     `json:"source_lang"`
	TargetLang      string     `json:"target_lang"`
	Status          string     `json:"status"`
	Progress        int        `json:"progress"`
	ProgressMessage string     `json:"progress_message,omitempty"`
	Error           string     `json:"error,omitempty"`
	OwnerEmail      string     `json:"owner_email"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// taskListOutput represents the full task list output.
type taskListOutput struct {
	Tasks  []taskItem `json:"tasks"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
}

// grantItem represents a grant in the access list output.
type grantItem struct {
	Priority   int       `json:"priority"`
	ProviderID string    `json:"provider_id"`
	GroupID    string    `json:"group_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// providerItem represents a provider in the list output (settings omitted,
// they hold credentials).
type providerItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Active    bool      `json:"active"`
	Backend   string    `json:"backend"`
	CreatedAt time.Time `json:"created_at"`
}

// userItem represents a user in the list output.
type userItem struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	Active         bool      `json:"active"`
	DailyPageLimit int       `json:"daily_page_limit"`
	DailyPageUsed  int       `json:"daily_page_used"`
	CreatedAt      time.Time `json:"created_at"`
}

// notificationOutput represents a settled mutation outcome.
type notificationOutput struct {
	Level    string `json:"level"`
	Action   string `json:"action"`
	EntityID string `json:"entity_id,omitempty"`
	Message  string `json:"message,omitempty"`
	Retry    bool   `json:"retry,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTaskList prints tasks in JSON format with a subset of fields.
func (j *JSONPrinter) PrintTaskList(tasks cache.Collection[model.Task]) error {
	output := taskListOutput{
		Tasks:  make([]taskItem, len(tasks.Entities)),
		Total:  tasks.Total,
		Limit:  tasks.Limit,
		Offset: tasks.Offset,
	}
	for i, task := range tasks.Entities {
		item := taskItem{
			ID:              task.ID,
			DocumentName:    task.DocumentName,
			SourceLang:      task.SourceLang,
			TargetLang:      task.TargetLang,
			Status:          string(task.Status),
			Progress:        task.Progress,
			ProgressMessage: task.ProgressMessage,
			Error:           task.Error,
			OwnerEmail:      task.OwnerEmail,
			CreatedAt:       task.CreatedAt.UTC(),
		}
		if task.CompletedAt != nil {
			utcTime := task.CompletedAt.UTC()
			item.CompletedAt = &utcTime
		}
		output.Tasks[i] = item
	}

	return j.encode(output)
}

// PrintGrantList prints a group's access list in JSON format.
func (j *JSONPrinter) PrintGrantList(grants cache.Collection[model.Grant]) error {
	items := make([]grantItem, len(grants.Entities))
	for i, g := range grants.Entities {
		items[i] = grantItem{
			Priority:   i,
			ProviderID: g.ProviderID,
			GroupID:    g.GroupID,
			CreatedAt:  g.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintProviderList prints providers in JSON format.
func (j *JSONPrinter) PrintProviderList(providers []model.Provider) error {
	items := make([]providerItem, len(providers))
	for i, p := range providers {
		items[i] = providerItem{
			ID:        p.ID,
			Name:      p.Name,
			Type:      string(p.Type),
			Active:    p.Active,
			Backend:   model.SettingsSummary(p.Settings),
			CreatedAt: p.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintUserList prints users in JSON format.
func (j *JSONPrinter) PrintUserList(users []model.User) error {
	items := make([]userItem, len(users))
	for i, u := range users {
		items[i] = userItem{
			ID:             u.ID,
			Email:          u.Email,
			Name:           u.Name,
			Role:           string(u.Role),
			Active:         u.Active,
			DailyPageLimit: u.DailyPageLimit,
			DailyPageUsed:  u.DailyPageUsed,
			CreatedAt:      u.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintNotification prints a settled mutation outcome in JSON format.
func (j *JSONPrinter) PrintNotification(n model.Notification) error {
	return j.encode(notificationOutput{
		Level:    string(n.Level),
		Action:   string(n.Action),
		EntityID: n.EntityID,
		Message:  n.Message,
		Retry:    n.Retry,
	})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
