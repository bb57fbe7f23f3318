package model

import (
	"fmt"
	"time"
)

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
	// ProviderTypeGeneric covers the OpenAI-compatible vendors (gemini,
	// deepseek, zhipu, siliconflow, grok, groq).
	ProviderTypeGeneric ProviderType = "generic"
)

// SettingsType returns the settings variant a provider type uses. The
// dedicated backends have their own variant, every OpenAI-compatible
// vendor shares the generic one.
func (t ProviderType) SettingsType() ProviderType {
	switch t {
	case ProviderTypeOpenAI, ProviderTypeAzureOpenAI, ProviderTypeDeepL,
		ProviderTypeOllama, ProviderTypeTencent, ProviderTypeMinerU:
		return t
	default:
		return ProviderTypeGeneric
	}
}

// Provider represents a translation provider configuration.
type Provider struct {
	ID          string
	Name        string
	Type        ProviderType
	Description string
	Active      bool
	Settings    ProviderSettings
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EntityID returns the cache identity of the provider.
func (p Provider) EntityID() string { return p.ID }

// Validate validates the provider configuration.
func (p Provider) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if p.Type == "" {
		return fmt.Errorf("provider type is required: %w", ErrNotValid)
	}
	if p.Settings == nil {
		return fmt.Errorf("settings are required: %w", ErrNotValid)
	}
	if p.Settings.ProviderType() != p.Type.SettingsType() {
		return fmt.Errorf("settings are for provider type %q, expected %q: %w", p.Settings.ProviderType(), p.Type.SettingsType(), ErrNotValid)
	}
	return p.Settings.Validate()
}

// ProviderSettings is the per-type settings record of a provider
// configuration. Exactly one variant exists per ProviderType; consumers
// switch on the concrete type.
type ProviderSettings interface {
	ProviderType() ProviderType
	Validate() error
}

// SettingsSummary names the backend a settings record talks to without
// leaking credentials. The switch is exhaustive over the settings variants.
func SettingsSummary(s ProviderSettings) string {
	switch v := s.(type) {
	case OpenAISettings:
		return v.Model
	case AzureOpenAISettings:
		return v.Endpoint
	case DeepLSettings:
		if v.Endpoint != "" {
			return v.Endpoint
		}
		return "deepl"
	case OllamaSettings:
		return v.Host + " " + v.Model
	case TencentSettings:
		return v.Region
	case MinerUSettings:
		return v.BaseURL
	case GenericSettings:
		return v.BaseURL + " " + v.Model
	default:
		return "-"
	}
}

// OpenAISettings configures an OpenAI provider.
type OpenAISettings struct {
	APIKey  string
	BaseURL string
	Model   string
}

func (s OpenAISettings) ProviderType() ProviderType { return ProviderTypeOpenAI }

func (s OpenAISettings) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("openai api key is required: %w", ErrNotValid)
	}
	if s.Model == "" {
		return fmt.Errorf("openai model is required: %w", ErrNotValid)
	}
	return nil
}

// AzureOpenAISettings configures an Azure OpenAI provider.
type AzureOpenAISettings struct {
	APIKey     string
	Endpoint   string
	Deployment string
	APIVersion string
}

func (s AzureOpenAISettings) ProviderType() ProviderType { return ProviderTypeAzureOpenAI }

func (s AzureOpenAISettings) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("azure openai api key is required: %w", ErrNotValid)
	}
	if s.Endpoint == "" {
		return fmt.Errorf("azure openai endpoint is required: %w", ErrNotValid)
	}
	if s.Deployment == "" {
		return fmt.Errorf("azure openai deployment is required: %w", ErrNotValid)
	}
	return nil
}

// DeepLSettings configures a DeepL provider.
type DeepLSettings struct {
	APIKey   string
	Endpoint string
}

func (s DeepLSettings) ProviderType() ProviderType { return ProviderTypeDeepL }

func (s DeepLSettings) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("deepl api key is required: %w", ErrNotValid)
	}
	return nil
}

// OllamaSettings configures a local Ollama provider.
type OllamaSettings struct {
	Host  string
	Model string
}

func (s OllamaSettings) ProviderType() ProviderType { return ProviderTypeOllama }

func (s OllamaSettings) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("ollama host is required: %w", ErrNotValid)
	}
	if s.Model == "" {
		return fmt.Errorf("ollama model is required: %w", ErrNotValid)
	}
	return nil
}

// TencentSettings configures a Tencent machine translation provider.
type TencentSettings struct {
	SecretID  string
	SecretKey string
	Region    string
}

func (s TencentSettings) ProviderType() ProviderType { return ProviderTypeTencent }

func (s TencentSettings) Validate() error {
	if s.SecretID == "" {
		return fmt.Errorf("tencent secret id is required: %w", ErrNotValid)
	}
	if s.SecretKey == "" {
		return fmt.Errorf("tencent secret key is required: %w", ErrNotValid)
	}
	return nil
}

// MinerUSettings configures a MinerU document parsing provider.
type MinerUSettings struct {
	APIToken string
	BaseURL  string
}

func (s MinerUSettings) ProviderType() ProviderType { return ProviderTypeMinerU }

func (s MinerUSettings) Validate() error {
	if s.APIToken == "" {
		return fmt.Errorf("mineru api token is required: %w", ErrNotValid)
	}
	return nil
}

// GenericSettings configures an OpenAI-compatible provider.
type GenericSettings struct {
	APIKey  string
	BaseURL string
	Model   string
}

func (s GenericSettings) ProviderType() ProviderType { return ProviderTypeGeneric }

func (s GenericSettings) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("api key is required: %w", ErrNotValid)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base url is required: %w", ErrNotValid)
	}
	return nil
}
