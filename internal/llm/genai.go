package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIClient implements Client on the google.golang.org/genai SDK
type GenAIClient struct {
	client *genai.Client
	config *Config
}

// NewGenAIClient creates a client for the Gemini API backend
func NewGenAIClient(ctx context.Context, config *Config, apiKey string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIClient{client: client, config: config}, nil
}

func (c *GenAIClient) request(tier ModelTier, jsonOutput bool) (string, *genai.GenerateContentConfig, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	temperature := c.config.Temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if jsonOutput {
		cfg.ResponseMIMEType = "application/json"
	}
	return modelName, cfg, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, cfg, err := c.request(tier, false)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text parts in response")
	}
	return text, nil
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, cfg, err := c.request(tier, true)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return CleanJSONBlock(resp.Text()), nil
}

// StreamContent streams response chunks as the model produces them
func (c *GenAIClient) StreamContent(ctx context.Context, prompt string, tier ModelTier, fn ChunkFunc) (string, error) {
	model, cfg, err := c.request(tier, false)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for resp, err := range c.client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), cfg) {
		if err != nil {
			return full.String(), fmt.Errorf("failed to stream content: %w", err)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		full.WriteString(text)
		if err := fn(text); err != nil {
			return full.String(), err
		}
	}
	return full.String(), nil
}

// GetModel returns the model name for a tier
func (c *GenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the genai client holds no long-lived resources
func (c *GenAIClient) Close() error {
	return nil
}
