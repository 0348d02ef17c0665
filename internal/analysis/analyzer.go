// Package analysis turns free-text resume content into structured resume data
// using a generative model.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

const promptFile = "analyze.json"

// MetricsRecorder counts completed analyses
type MetricsRecorder interface {
	RecordResumeAnalyzed(ctx context.Context, streamed bool)
}

// Analyzer structures resume text with an LLM client
type Analyzer struct {
	client  llm.Client
	cache   Cache
	logger  *slog.Logger
	metrics MetricsRecorder
	// chunkSize is used when a cached result is replayed to a stream
	chunkSize int
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithCache enables result caching
func WithCache(c Cache) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.cache = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics reports completed analyses to m
func WithMetrics(m MetricsRecorder) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithChunkSize sets the replay chunk size for cached stream results
func WithChunkSize(n int) Option {
	return func(a *Analyzer) { a.chunkSize = n }
}

// NewAnalyzer creates an Analyzer over client
func NewAnalyzer(client llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client: client,
		cache:  NoopCache{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Model returns the model used for analysis
func (a *Analyzer) Model() string {
	return a.client.GetModel(llm.TierStandard)
}

// Analyze extracts structured resume data from text in a single model call
func (a *Analyzer) Analyze(ctx context.Context, text string) (*types.StructuredData, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	key := CacheKey(a.Model(), text)
	if cached, ok := a.cache.Get(ctx, key); ok {
		a.logger.DebugContext(ctx, "analysis cache hit", "key", key[:12])
		return cached, nil
	}

	prompt, err := BuildPrompt(text)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}
	response, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		a.logger.ErrorContext(ctx, "AI processing error", "error", err)
		return nil, &StructuringError{Cause: err}
	}

	data, err := a.finish(ctx, response)
	if err != nil {
		return nil, err
	}
	a.cache.Set(ctx, key, data)
	a.record(ctx, false)
	return data, nil
}

// Stream delivers model output to onChunk as it arrives, then structures the
// accumulated text the same way Analyze does.
func (a *Analyzer) Stream(ctx context.Context, text string, onChunk llm.ChunkFunc) (*types.StructuredData, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	key := CacheKey(a.Model(), text)
	if cached, ok := a.cache.Get(ctx, key); ok {
		raw, err := json.Marshal(cached)
		if err == nil {
			if err := llm.Replay(ctx, string(raw), a.chunkSize, onChunk); err != nil {
				return nil, err
			}
			a.record(ctx, true)
			return cached, nil
		}
	}

	prompt, err := BuildPrompt(text)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}
	full, err := a.client.StreamContent(ctx, prompt, llm.TierStandard, onChunk)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.logger.ErrorContext(ctx, "AI streaming error", "error", err)
		return nil, &StructuringError{Cause: err}
	}

	data, err := a.finish(ctx, llm.CleanJSONBlock(full))
	if err != nil {
		return nil, err
	}
	a.cache.Set(ctx, key, data)
	a.record(ctx, true)
	return data, nil
}

// BuildPrompt renders the analysis prompt for text
func BuildPrompt(text string) (string, error) {
	set, err := prompts.Load(promptFile)
	if err != nil {
		return "", err
	}
	return buildPrompt(set, text)
}

func buildPrompt(set *prompts.Set, text string) (string, error) {
	system, err := set.Get("analyze-system")
	if err != nil {
		return "", err
	}
	user, err := set.Render("analyze-user", map[string]string{"ResumeText": text})
	if err != nil {
		return "", err
	}
	return system + "\n\n" + user, nil
}

// ParseResponse validates raw model JSON and decodes it into normalized
// structured data.
func ParseResponse(response string) (*types.StructuredData, error) {
	raw := []byte(strings.TrimSpace(response))
	if !json.Valid(raw) {
		return nil, &StructuringError{Cause: fmt.Errorf("failed to parse JSON response")}
	}

	if err := schemas.ValidateStructuredResume(raw); err != nil {
		var validationErr *schemas.ValidationError
		return nil, &StructuringError{Validation: errors.As(err, &validationErr), Cause: err}
	}

	var data types.StructuredData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &StructuringError{Cause: fmt.Errorf("failed to decode structured data: %w", err)}
	}
	Normalize(&data)
	return &data, nil
}

func (a *Analyzer) finish(ctx context.Context, response string) (*types.StructuredData, error) {
	data, err := ParseResponse(response)
	if err != nil {
		a.logger.ErrorContext(ctx, "AI processing error", "error", err)
		return nil, err
	}
	return data, nil
}

func (a *Analyzer) record(ctx context.Context, streamed bool) {
	if a.metrics != nil {
		a.metrics.RecordResumeAnalyzed(ctx, streamed)
	}
}
