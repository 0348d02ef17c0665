package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// HTTPStatusError is returned when a provider answers with a non-2xx status
type HTTPStatusError struct {
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// OpenRouterClient implements Client for the OpenRouter chat completions API.
// OpenRouter streaming is not used; StreamContent replays the full response.
type OpenRouterClient struct {
	http   *resty.Client
	config *Config
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

// NewOpenRouterClient creates a new OpenRouter client
func NewOpenRouterClient(config *Config, apiKey string) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "resume-builder").
		SetTimeout(120 * time.Second)

	return &OpenRouterClient{http: client, config: config}, nil
}

func (c *OpenRouterClient) complete(ctx context.Context, prompt string, tier ModelTier, jsonOutput bool) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	body := chatRequest{
		Model:       modelName,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.config.Temperature,
	}
	if jsonOutput {
		body.ResponseFormat = map[string]any{"type": "json_object"}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/api/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to call openrouter: %w", err)
	}
	if resp.IsError() {
		msg := gjson.GetBytes(resp.Body(), "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return "", &HTTPStatusError{StatusCode: resp.StatusCode(), Message: msg}
	}

	content := gjson.GetBytes(resp.Body(), "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("no choices in response")
	}
	return content.String(), nil
}

// GenerateContent generates text content using the specified model tier
func (c *OpenRouterClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.complete(ctx, prompt, tier, false)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *OpenRouterClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.complete(ctx, prompt, tier, true)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// StreamContent generates the full response and replays it in fixed-size chunks
func (c *OpenRouterClient) StreamContent(ctx context.Context, prompt string, tier ModelTier, fn ChunkFunc) (string, error) {
	text, err := c.complete(ctx, prompt, tier, false)
	if err != nil {
		return "", err
	}
	return text, Replay(ctx, text, c.config.StreamChunkSize, fn)
}

// GetModel returns the model name for a tier
func (c *OpenRouterClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op for the HTTP-based client
func (c *OpenRouterClient) Close() error {
	return nil
}
