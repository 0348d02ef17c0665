package llm

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrUnsupportedProvider is returned by NewClient for an unknown Config.Provider
var ErrUnsupportedProvider = errors.New("unsupported llm provider")

// ChunkFunc receives streamed output in arrival order. Returning an error stops the stream.
type ChunkFunc func(chunk string) error

// Client is what the resume analyzer needs from a model provider
type Client interface {
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON asks the provider for a JSON-only response
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// StreamContent delivers output to fn as it arrives and returns the concatenation
	StreamContent(ctx context.Context, prompt string, tier ModelTier, fn ChunkFunc) (string, error)
	GetModel(tier ModelTier) string
	Close() error
}

type factory func(ctx context.Context, config *Config, apiKey string) (Client, error)

var factories = map[Provider]factory{
	ProviderGemini: func(ctx context.Context, c *Config, key string) (Client, error) {
		return NewGeminiClient(ctx, c, key)
	},
	ProviderGenAI: func(ctx context.Context, c *Config, key string) (Client, error) {
		return NewGenAIClient(ctx, c, key)
	},
	ProviderOpenAI: func(_ context.Context, c *Config, key string) (Client, error) {
		return NewOpenAIClient(c, key)
	},
	ProviderOpenRouter: func(_ context.Context, c *Config, key string) (Client, error) {
		return NewOpenRouterClient(c, key)
	},
}

// Providers lists the provider names NewClient accepts, sorted
func Providers() []Provider {
	out := make([]Provider, 0, len(factories))
	for p := range factories {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// NewClient builds the client for config.Provider. A nil config means DefaultConfig.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	newClient, ok := factories[config.Provider]
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnsupportedProvider, config.Provider, Providers())
	}
	return newClient(ctx, config, apiKey)
}
