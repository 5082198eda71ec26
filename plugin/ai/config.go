package ai

import (
	"errors"

	"github.com/hrygo/acutie/internal/profile"
)

// Config represents model provider configuration.
type Config struct {
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Embedding EmbeddingConfig
}

// ProviderConfig holds credentials for one chat provider family.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// Enabled reports whether the provider has credentials.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string // openai
	Model      string // text-embedding-3-small
	Dimensions int    // 0 keeps the model's native size
	APIKey     string
	BaseURL    string
}

// NewConfigFromProfile creates provider config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		OpenAI: ProviderConfig{
			APIKey:  p.OpenAIAPIKey,
			BaseURL: p.OpenAIBaseURL,
		},
		Anthropic: ProviderConfig{
			APIKey:  p.AnthropicAPIKey,
			BaseURL: p.AnthropicBaseURL,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    p.EmbeddingModel,
			APIKey:   p.OpenAIAPIKey,
			BaseURL:  p.OpenAIBaseURL,
		},
	}
}

// Validate validates the configuration.
// A deployment with no provider at all is valid: every model call then
// degrades to its scripted fallback.
func (c *Config) Validate() error {
	if c.Embedding.APIKey != "" && c.Embedding.Model == "" {
		return errors.New("embedding model is required")
	}
	if c.Embedding.Provider != "" && c.Embedding.Provider != "openai" {
		return errors.New("only the openai embedding provider is supported")
	}
	return nil
}
