// Package llm provides centralized LLM configuration and client abstractions.
// This package enables switching between model tiers and providers.
package llm

import (
	"github.com/jonathan/resume-builder/internal/config"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction, basic summarization
	TierLite ModelTier = "lite"
	// TierStandard is for structured output; resume analysis runs on this tier
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini uses the github.com/google/generative-ai-go SDK
	ProviderGemini Provider = "gemini"
	// ProviderGenAI uses the google.golang.org/genai SDK
	ProviderGenAI Provider = "genai"
	// ProviderOpenAI is the OpenAI chat completions API
	ProviderOpenAI Provider = "openai"
	// ProviderOpenRouter is the OpenRouter chat completions API
	ProviderOpenRouter Provider = "openrouter"
)

// DefaultTemperature keeps structured output stable
const DefaultTemperature float32 = 0.1

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// BaseURL overrides the provider endpoint. Empty means the provider default.
	BaseURL string
	// StreamChunkSize is the rune count per chunk when a provider replays a
	// one-shot response as a stream.
	StreamChunkSize int
}

// DefaultStreamChunkSize is used when StreamChunkSize is unset
const DefaultStreamChunkSize = 20

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.0-flash-lite",
			TierStandard: "gemini-2.0-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o-mini",
			TierAdvanced: "gpt-4o",
		},
		Temperature: DefaultTemperature,
	}
}

// DefaultOpenRouterConfig returns the default OpenRouter configuration
func DefaultOpenRouterConfig() *Config {
	return &Config{
		Provider: ProviderOpenRouter,
		Models: map[ModelTier]string{
			TierLite:     "google/gemini-2.0-flash-001",
			TierStandard: "google/gemini-2.0-flash-001",
			TierAdvanced: "anthropic/claude-3.5-sonnet",
		},
		Temperature: DefaultTemperature,
		BaseURL:     "https://openrouter.ai",
	}
}

// ConfigFromSettings builds a Config from the application AI settings. The configured
// model becomes the standard tier.
func ConfigFromSettings(ai config.AIConfig) *Config {
	var cfg *Config
	switch Provider(ai.Provider) {
	case ProviderOpenAI:
		cfg = DefaultOpenAIConfig()
	case ProviderOpenRouter:
		cfg = DefaultOpenRouterConfig()
	case ProviderGenAI:
		cfg = DefaultGeminiConfig()
		cfg.Provider = ProviderGenAI
	default:
		cfg = DefaultGeminiConfig()
	}

	if ai.Model != "" {
		cfg = cfg.WithModel(TierStandard, ai.Model)
	}
	if ai.Temperature > 0 {
		cfg.Temperature = ai.Temperature
	}
	if ai.BaseURL != "" {
		cfg.BaseURL = ai.BaseURL
	}
	cfg.StreamChunkSize = ai.StreamChunkSize
	return cfg
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:        c.Provider,
		Models:          make(map[ModelTier]string),
		Temperature:     c.Temperature,
		BaseURL:         c.BaseURL,
		StreamChunkSize: c.StreamChunkSize,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
