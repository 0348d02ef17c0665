package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.0-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.0-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, DefaultTemperature, config.Temperature)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	config.StreamChunkSize = 8
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.0-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, 8, newConfig.StreamChunkSize)
}

func TestConfigFromSettings(t *testing.T) {
	tests := []struct {
		name         string
		settings     config.AIConfig
		wantProvider Provider
		wantModel    string
		wantBaseURL  string
	}{
		{
			name:         "gemini default",
			settings:     config.AIConfig{Provider: "gemini"},
			wantProvider: ProviderGemini,
			wantModel:    "gemini-2.0-flash",
		},
		{
			name:         "genai shares gemini models",
			settings:     config.AIConfig{Provider: "genai", Model: "gemini-2.5-flash"},
			wantProvider: ProviderGenAI,
			wantModel:    "gemini-2.5-flash",
		},
		{
			name:         "openai with custom base url",
			settings:     config.AIConfig{Provider: "openai", BaseURL: "http://localhost:8080/v1"},
			wantProvider: ProviderOpenAI,
			wantModel:    "gpt-4o-mini",
			wantBaseURL:  "http://localhost:8080/v1",
		},
		{
			name:         "openrouter",
			settings:     config.AIConfig{Provider: "openrouter", Model: "meta-llama/llama-3.1-8b-instruct"},
			wantProvider: ProviderOpenRouter,
			wantModel:    "meta-llama/llama-3.1-8b-instruct",
			wantBaseURL:  "https://openrouter.ai",
		},
		{
			name:         "unknown provider falls back to gemini",
			settings:     config.AIConfig{Provider: ""},
			wantProvider: ProviderGemini,
			wantModel:    "gemini-2.0-flash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ConfigFromSettings(tt.settings)
			assert.Equal(t, tt.wantProvider, cfg.Provider)
			assert.Equal(t, tt.wantModel, cfg.GetModel(TierStandard))
			assert.Equal(t, tt.wantBaseURL, cfg.BaseURL)
		})
	}
}

func TestConfigFromSettings_Temperature(t *testing.T) {
	cfg := ConfigFromSettings(config.AIConfig{Provider: "gemini", Temperature: 0.4, StreamChunkSize: 32})
	assert.InDelta(t, 0.4, cfg.Temperature, 0.0001)
	assert.Equal(t, 32, cfg.StreamChunkSize)

	cfg = ConfigFromSettings(config.AIConfig{Provider: "gemini"})
	assert.Equal(t, DefaultTemperature, cfg.Temperature)
}

func TestModelTierConstants(t *testing.T) {
	assert.Equal(t, ModelTier("lite"), TierLite)
	assert.Equal(t, ModelTier("standard"), TierStandard)
	assert.Equal(t, ModelTier("advanced"), TierAdvanced)
}

func TestProviderConstants(t *testing.T) {
	assert.Equal(t, Provider("gemini"), ProviderGemini)
	assert.Equal(t, Provider("genai"), ProviderGenAI)
	assert.Equal(t, Provider("openai"), ProviderOpenAI)
	assert.Equal(t, Provider("openrouter"), ProviderOpenRouter)
}
