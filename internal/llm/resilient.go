package llm

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/jonathan/resume-builder/internal/config"
)

const maxBackoff = 30 * time.Second

// Recorder receives one observation per provider call
type Recorder interface {
	RecordAIRequest(ctx context.Context, provider, model string, elapsed time.Duration, err error)
}

// ResilientClient wraps a Client with retries, a circuit breaker, a per-call
// timeout and tracing.
type ResilientClient struct {
	inner      Client
	provider   Provider
	maxRetries int
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *slog.Logger
	recorder   Recorder
	tracer     trace.Tracer
	wait       func(ctx context.Context, d time.Duration) error
}

// ResilientOption configures a ResilientClient
type ResilientOption func(*ResilientClient)

// WithRecorder reports every call to r
func WithRecorder(r Recorder) ResilientOption {
	return func(c *ResilientClient) { c.recorder = r }
}

// WithTracer overrides the global tracer
func WithTracer(t trace.Tracer) ResilientOption {
	return func(c *ResilientClient) { c.tracer = t }
}

// NewResilientClient wraps inner using the retry and breaker settings in cfg
func NewResilientClient(inner Client, cfg config.AIConfig, logger *slog.Logger, opts ...ResilientOption) *ResilientClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &ResilientClient{
		inner:      inner,
		provider:   Provider(cfg.Provider),
		maxRetries: max(cfg.MaxRetries, 0),
		timeout:    cfg.Timeout,
		logger:     logger,
		tracer:     otel.Tracer("resume-builder/llm"),
		wait:       sleepContext,
	}
	if cfg.CircuitBreaker.Enabled {
		c.breaker = newBreaker(string(c.provider), cfg.CircuitBreaker, logger)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(name string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[string] {
	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("AI-%s", name),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[string](settings)
}

// GenerateContent generates text with retries
func (c *ResilientClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.call(ctx, "generate_content", tier, func(ctx context.Context) (string, error) {
		return c.inner.GenerateContent(ctx, prompt, tier)
	})
}

// GenerateJSON generates JSON with retries
func (c *ResilientClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.call(ctx, "generate_json", tier, func(ctx context.Context) (string, error) {
		return c.inner.GenerateJSON(ctx, prompt, tier)
	})
}

// StreamContent streams with retries until the first chunk is delivered.
// Once output has reached fn, a failure is returned as is.
func (c *ResilientClient) StreamContent(ctx context.Context, prompt string, tier ModelTier, fn ChunkFunc) (string, error) {
	delivered := false
	return c.call(ctx, "stream_content", tier, func(ctx context.Context) (string, error) {
		text, err := c.inner.StreamContent(ctx, prompt, tier, func(chunk string) error {
			delivered = true
			return fn(chunk)
		})
		if err != nil && delivered {
			return text, &partialStreamError{err: err}
		}
		return text, err
	})
}

// GetModel returns the model name for a tier
func (c *ResilientClient) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Close closes the wrapped client
func (c *ResilientClient) Close() error {
	return c.inner.Close()
}

// BreakerState reports the circuit breaker state, or "disabled"
func (c *ResilientClient) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

func (c *ResilientClient) call(ctx context.Context, operation string, tier ModelTier, fn func(context.Context) (string, error)) (string, error) {
	model := c.inner.GetModel(tier)
	ctx, span := c.tracer.Start(ctx, "llm."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", string(c.provider)),
		attribute.String("ai.model", model),
		attribute.String("ai.tier", string(tier)),
	)

	start := time.Now()
	result, err := c.execute(ctx, operation, func() (string, error) {
		return c.executeWithRetry(ctx, operation, fn)
	})
	if c.recorder != nil {
		c.recorder.RecordAIRequest(ctx, string(c.provider), model, time.Since(start), err)
	}

	var partial *partialStreamError
	if errors.As(err, &partial) {
		err = partial.err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("success", false))
		return result, err
	}
	span.SetAttributes(attribute.Bool("success", true))
	return result, nil
}

func (c *ResilientClient) execute(ctx context.Context, operation string, fn func() (string, error)) (string, error) {
	if c.breaker == nil {
		return fn()
	}
	result, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.WarnContext(ctx, "AI call rejected by circuit breaker", "operation", operation)
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return result, err
}

// executeWithRetry runs fn with exponential backoff and jitter
func (c *ResilientClient) executeWithRetry(ctx context.Context, operation string, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	var lastResult string

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WarnContext(ctx, "Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"error", lastErr.Error())

			if err := c.wait(ctx, backoff(attempt)); err != nil {
				return "", err
			}
		}

		result, err := c.attempt(ctx, fn)
		if err == nil {
			if attempt > 0 {
				c.logger.InfoContext(ctx, "AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		lastResult = result
		if !isRetryableError(err) {
			break
		}
	}

	var partial *partialStreamError
	if errors.As(lastErr, &partial) {
		return lastResult, lastErr
	}
	return lastResult, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

func (c *ResilientClient) attempt(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if c.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(ctx)
}

// backoff returns 2^(attempt-1) seconds plus up to 10% jitter, capped at 30s
func backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ErrUnavailable is returned while the circuit breaker is open
var ErrUnavailable = errors.New("AI provider temporarily unavailable")

// partialStreamError marks a stream failure after output was delivered
type partialStreamError struct {
	err error
}

func (e *partialStreamError) Error() string { return e.err.Error() }
func (e *partialStreamError) Unwrap() error { return e.err }

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var partial *partialStreamError
	if errors.As(err, &partial) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		return retryableStatus(googleErr.Code)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}
	var genaiPtr *genai.APIError
	if errors.As(err, &genaiPtr) {
		return retryableStatus(genaiPtr.Code)
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return retryableStatus(openaiErr.StatusCode)
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.StatusCode)
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
