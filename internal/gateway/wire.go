package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/model"
)

// naiveTimeLayout matches timestamps serialized without a zone. The server
// emits them in UTC.
const naiveTimeLayout = "2006-01-02T15:04:05.999999999"

// wireTime decodes the API's timestamps, which arrive either as RFC3339 or
// as naive ISO 8601 without a zone suffix.
type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse time: %w", err)
	}
	if s == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		parsed, err = time.ParseInLocation(naiveTimeLayout, s, time.UTC)
		if err != nil {
			return fmt.Errorf("parse time %q: %w", s, err)
		}
	}
	t.Time = parsed

	return nil
}

func (t wireTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

type taskDTO struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	OwnerEmail      string    `json:"ownerEmail"`
	DocumentName    string    `json:"documentName"`
	SourceLang      string    `json:"sourceLang"`
	TargetLang      string    `json:"targetLang"`
	Engine          string    `json:"engine"`
	Priority        string    `json:"priority"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status"`
	Progress        int       `json:"progress"`
	ProgressMessage string    `json:"progressMessage"`
	Error           string    `json:"error"`
	InputURL        string    `json:"inputUrl"`
	OutputURL       string    `json:"outputUrl"`
	PageCount       int       `json:"pageCount"`
	ProviderID      string    `json:"providerConfigId"`
	TaskType        string    `json:"taskType"`
	CreatedAt       wireTime  `json:"createdAt"`
	UpdatedAt       wireTime  `json:"updatedAt"`
	CompletedAt     *wireTime `json:"completedAt"`
}

func (d taskDTO) toModel() model.Task {
	t := model.Task{
		ID:              d.ID,
		OwnerID:         d.OwnerID,
		OwnerEmail:      d.OwnerEmail,
		DocumentName:    d.DocumentName,
		SourceLang:      d.SourceLang,
		TargetLang:      d.TargetLang,
		Engine:          d.Engine,
		Priority:        model.TaskPriority(d.Priority),
		Notes:           d.Notes,
		Status:          model.TaskStatus(d.Status),
		Progress:        d.Progress,
		ProgressMessage: d.ProgressMessage,
		Error:           d.Error,
		InputURL:        d.InputURL,
		OutputURL:       d.OutputURL,
		PageCount:       d.PageCount,
		ProviderID:      d.ProviderID,
		TaskType:        d.TaskType,
		CreatedAt:       d.CreatedAt.Time,
		UpdatedAt:       d.UpdatedAt.Time,
	}
	if d.CompletedAt != nil {
		completed := d.CompletedAt.Time
		t.CompletedAt = &completed
	}

	return t
}

type taskListResponse struct {
	Tasks   []taskDTO          `json:"tasks"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
	Filters map[string]*string `json:"filters"`
}

func (r taskListResponse) toModel() cache.Collection[model.Task] {
	tasks := make([]model.Task, 0, len(r.Tasks))
	for _, d := range r.Tasks {
		tasks = append(tasks, d.toModel())
	}

	// The server echoes every known filter with null for the unset ones.
	filters := map[string]string{}
	for k, v := range r.Filters {
		if v != nil && *v != "" {
			filters[k] = *v
		}
	}

	return cache.Collection[model.Task]{
		Entities: tasks,
		Total:    r.Total,
		Limit:    r.Limit,
		Offset:   r.Offset,
		Filters:  filters,
	}
}

// taskPatchDTO decodes a partial task payload from a push event. Omitted
// fields stay nil so the merge keeps the cached values.
type taskPatchDTO struct {
	ID              string    `json:"id"`
	OwnerID         *string   `json:"ownerId"`
	OwnerEmail      *string   `json:"ownerEmail"`
	DocumentName    *string   `json:"documentName"`
	SourceLang      *string   `json:"sourceLang"`
	TargetLang      *string   `json:"targetLang"`
	Engine          *string   `json:"engine"`
	Priority        *string   `json:"priority"`
	Notes           *string   `json:"notes"`
	Status          *string   `json:"status"`
	Progress        *int      `json:"progress"`
	ProgressMessage *string   `json:"progressMessage"`
	Error           *string   `json:"error"`
	InputURL        *string   `json:"inputUrl"`
	OutputURL       *string   `json:"outputUrl"`
	PageCount       *int      `json:"pageCount"`
	ProviderID      *string   `json:"providerConfigId"`
	TaskType        *string   `json:"taskType"`
	CreatedAt       *wireTime `json:"createdAt"`
	UpdatedAt       *wireTime `json:"updatedAt"`
	CompletedAt     *wireTime `json:"completedAt"`
}

func (d taskPatchDTO) toModel() model.TaskPatch {
	p := model.TaskPatch{
		ID:              d.ID,
		OwnerID:         d.OwnerID,
		OwnerEmail:      d.OwnerEmail,
		DocumentName:    d.DocumentName,
		SourceLang:      d.SourceLang,
		TargetLang:      d.TargetLang,
		Engine:          d.Engine,
		Notes:           d.Notes,
		Progress:        d.Progress,
		ProgressMessage: d.ProgressMessage,
		Error:           d.Error,
		InputURL:        d.InputURL,
		OutputURL:       d.OutputURL,
		PageCount:       d.PageCount,
		ProviderID:      d.ProviderID,
		TaskType:        d.TaskType,
	}
	if d.Priority != nil {
		priority := model.TaskPriority(*d.Priority)
		p.Priority = &priority
	}
	if d.Status != nil {
		status := model.TaskStatus(*d.Status)
		p.Status = &status
	}
	if d.CreatedAt != nil {
		created := d.CreatedAt.Time
		p.CreatedAt = &created
	}
	if d.UpdatedAt != nil {
		updated := d.UpdatedAt.Time
		p.UpdatedAt = &updated
	}
	if d.CompletedAt != nil {
		completed := d.CompletedAt.Time
		p.CompletedAt = &completed
	}

	return p
}

// DecodeTaskPatch decodes the entity payload of a task update event.
func DecodeTaskPatch(data []byte) (model.TaskPatch, error) {
	var d taskPatchDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return model.TaskPatch{}, fmt.Errorf("decode task payload: %w", err)
	}
	if d.ID == "" {
		return model.TaskPatch{}, fmt.Errorf("task payload has no id: %w", model.ErrNotValid)
	}

	return d.toModel(), nil
}

type grantDTO struct {
	ID               string   `json:"id"`
	GroupID          string   `json:"groupId"`
	ProviderConfigID string   `json:"providerConfigId"`
	SortOrder        int      `json:"sortOrder"`
	CreatedAt        wireTime `json:"createdAt"`
}

func (d grantDTO) toModel() model.Grant {
	return model.Grant{
		ID:         d.ID,
		GroupID:    d.GroupID,
		ProviderID: d.ProviderConfigID,
		SortOrder:  d.SortOrder,
		CreatedAt:  d.CreatedAt.Time,
	}
}

type grantPatchDTO struct {
	ProviderConfigID string    `json:"providerConfigId"`
	ID               *string   `json:"id"`
	GroupID          *string   `json:"groupId"`
	SortOrder        *int      `json:"sortOrder"`
	CreatedAt        *wireTime `json:"createdAt"`
}

func (d grantPatchDTO) toModel() model.GrantPatch {
	p := model.GrantPatch{
		ProviderID: d.ProviderConfigID,
		ID:         d.ID,
		GroupID:    d.GroupID,
		SortOrder:  d.SortOrder,
	}
	if d.CreatedAt != nil {
		created := d.CreatedAt.Time
		p.CreatedAt = &created
	}

	return p
}

// DecodeGrantPatch decodes the entity payload of an access update event.
func DecodeGrantPatch(data []byte) (model.GrantPatch, error) {
	var d grantPatchDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return model.GrantPatch{}, fmt.Errorf("decode grant payload: %w", err)
	}
	if d.ProviderConfigID == "" {
		return model.GrantPatch{}, fmt.Errorf("grant payload has no provider config id: %w", model.ErrNotValid)
	}

	return d.toModel(), nil
}

type grantRequest struct {
	ProviderConfigID string `json:"providerConfigId"`
	SortOrder        int    `json:"sortOrder"`
}

type reorderRequest struct {
	ProviderIDs []string `json:"providerIds"`
}

type taskActionRequest struct {
	Action string `json:"action"`
}

type updateUserRequest struct {
	IsActive *bool `json:"isActive,omitempty"`
}

type providerDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ProviderType string          `json:"providerType"`
	Description  string          `json:"description"`
	IsActive     bool            `json:"isActive"`
	Settings     json.RawMessage `json:"settings"`
	CreatedAt    wireTime        `json:"createdAt"`
	UpdatedAt    wireTime        `json:"updatedAt"`
}

func (d providerDTO) toModel() (model.Provider, error) {
	providerType := model.ProviderType(d.ProviderType)
	settings, err := decodeSettings(providerType, d.Settings)
	if err != nil {
		return model.Provider{}, err
	}

	return model.Provider{
		ID:          d.ID,
		Name:        d.Name,
		Type:        providerType,
		Description: d.Description,
		Active:      d.IsActive,
		Settings:    settings,
		CreatedAt:   d.CreatedAt.Time,
		UpdatedAt:   d.UpdatedAt.Time,
	}, nil
}

// Settings records use snake_case keys on the wire, unlike the camelCase
// envelopes around them.
type openAISettingsDTO struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type azureOpenAISettingsDTO struct {
	APIKey     string `json:"api_key"`
	Endpoint   string `json:"endpoint"`
	Deployment string `json:"deployment"`
	APIVersion string `json:"api_version"`
}

type deepLSettingsDTO struct {
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
}

type ollamaSettingsDTO struct {
	Host  string `json:"host"`
	Model string `json:"model"`
}

type tencentSettingsDTO struct {
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
}

type minerUSettingsDTO struct {
	APIToken string `json:"api_token"`
	BaseURL  string `json:"base_url"`
}

type genericSettingsDTO struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

func decodeSettings(t model.ProviderType, raw json.RawMessage) (model.ProviderSettings, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	switch t.SettingsType() {
	case model.ProviderTypeOpenAI:
		var s openAISettingsDTO
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode openai settings: %w", err)
		}
		return model.OpenAISettings{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model}, nil
	case model.ProviderTypeAzureOpenAI:
		var s azureOpenAISettingsDTO
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode azure openai settings: %w", err)
		}
		return model.AzureOpenAISettings{APIKey: s.APIKey, Endpoint: s.Endpoint, Deployment: s.Deployment, APIVersion: s.APIVersion}, nil
	case model.ProviderTypeDeepL:
		var s deepLSettingsDTO
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode deepl settings: %w", err)
		}
		return model.DeepLSettings{APIKey: s.APIKey, Endpoint: s.Endpoint}, nil
	case model.ProviderTypeOllama:
		var s ollamaSettingsDTO
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode ollama settings: %w", err)
		}
		return model.OllamaSettings{Host: s.Host, Model: s.Model}, nil
	case model.ProviderTypeTencent:
		var s tencentSettingsDTO
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode tencent settings: %w", err)
		}
		return model.TencentSettings{SecretID: s.SecretID, SecretKey: s.SecretKey, Region: s.Region}, nil
	case model.ProviderTypeMinerU:
		var s minerUSettingsDTO
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode mineru settings: %w", err)
		}
		return model.MinerUSettings{APIToken: s.APIToken, BaseURL: s.BaseURL}, nil
	default:
		var s genericSettingsDTO
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode provider settings: %w", err)
		}
		return model.GenericSettings{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model}, nil
	}
}

type userDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	IsActive       bool     `json:"isActive"`
	DailyPageLimit int      `json:"dailyPageLimit"`
	DailyPageUsed  int      `json:"dailyPageUsed"`
	CreatedAt      wireTime `json:"createdAt"`
}

func (d userDTO) toModel() model.User {
	return model.User{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		Role:           model.UserRole(d.Role),
		Active:         d.IsActive,
		DailyPageLimit: d.DailyPageLimit,
		DailyPageUsed:  d.DailyPageUsed,
		CreatedAt:      d.CreatedAt.Time,
	}
}
