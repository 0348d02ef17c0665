package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
)

// fakeClient returns queued results in order
type fakeClient struct {
	mu      sync.Mutex
	results []fakeResult
	calls   int
}

type fakeResult struct {
	text   string
	chunks []string
	err    error
}

func (f *fakeClient) next() fakeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.results)-1)
	f.calls++
	return f.results[i]
}

func (f *fakeClient) GenerateContent(context.Context, string, ModelTier) (string, error) {
	r := f.next()
	return r.text, r.err
}

func (f *fakeClient) GenerateJSON(context.Context, string, ModelTier) (string, error) {
	r := f.next()
	return r.text, r.err
}

func (f *fakeClient) StreamContent(_ context.Context, _ string, _ ModelTier, fn ChunkFunc) (string, error) {
	r := f.next()
	var sent string
	for _, c := range r.chunks {
		sent += c
		if err := fn(c); err != nil {
			return sent, err
		}
	}
	return sent, r.err
}

func (f *fakeClient) GetModel(ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error             { return nil }

type recordedCall struct {
	provider string
	model    string
	err      error
}

type fakeRecorder struct {
	calls []recordedCall
}

func (r *fakeRecorder) RecordAIRequest(_ context.Context, provider, model string, _ time.Duration, err error) {
	r.calls = append(r.calls, recordedCall{provider: provider, model: model, err: err})
}

func newTestResilient(inner Client, cfg config.AIConfig, opts ...ResilientOption) *ResilientClient {
	c := NewResilientClient(inner, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	c.wait = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return c
}

func TestResilientClient_RetriesRetryableErrors(t *testing.T) {
	inner := &fakeClient{results: []fakeResult{
		{err: &HTTPStatusError{StatusCode: 503, Message: "overloaded"}},
		{err: &HTTPStatusError{StatusCode: 429, Message: "slow down"}},
		{text: `{"ok":true}`},
	}}
	rec := &fakeRecorder{}
	c := newTestResilient(inner, config.AIConfig{Provider: "openrouter", MaxRetries: 3}, WithRecorder(rec))

	out, err := c.GenerateJSON(context.Background(), "prompt", TierStandard)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, 3, inner.calls)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "openrouter", rec.calls[0].provider)
	assert.Equal(t, "fake-model", rec.calls[0].model)
	assert.NoError(t, rec.calls[0].err)
}

func TestResilientClient_StopsOnNonRetryableError(t *testing.T) {
	inner := &fakeClient{results: []fakeResult{
		{err: &HTTPStatusError{StatusCode: 401, Message: "bad key"}},
	}}
	c := newTestResilient(inner, config.AIConfig{Provider: "openrouter", MaxRetries: 3})

	_, err := c.GenerateContent(context.Background(), "prompt", TierStandard)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 401, statusErr.StatusCode)
}

func TestResilientClient_GivesUpAfterMaxRetries(t *testing.T) {
	inner := &fakeClient{results: []fakeResult{
		{err: &HTTPStatusError{StatusCode: 500, Message: "boom"}},
	}}
	c := newTestResilient(inner, config.AIConfig{MaxRetries: 2})

	_, err := c.GenerateContent(context.Background(), "prompt", TierStandard)
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestResilientClient_StreamRetriesBeforeFirstChunk(t *testing.T) {
	inner := &fakeClient{results: []fakeResult{
		{err: &HTTPStatusError{StatusCode: 502, Message: "bad gateway"}},
		{chunks: []string{"hel", "lo"}},
	}}
	c := newTestResilient(inner, config.AIConfig{MaxRetries: 2})

	var got []string
	out, err := c.StreamContent(context.Background(), "prompt", TierStandard, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, []string{"hel", "lo"}, got)
	assert.Equal(t, 2, inner.calls)
}

func TestResilientClient_StreamDoesNotRetryAfterOutput(t *testing.T) {
	streamErr := &HTTPStatusError{StatusCode: 503, Message: "dropped"}
	inner := &fakeClient{results: []fakeResult{
		{chunks: []string{"partial"}, err: streamErr},
		{chunks: []string{"should not run"}},
	}}
	c := newTestResilient(inner, config.AIConfig{MaxRetries: 3})

	var got []string
	out, err := c.StreamContent(context.Background(), "prompt", TierStandard, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, streamErr)
	assert.Equal(t, "partial", out)
	assert.Equal(t, []string{"partial"}, got)
	assert.Equal(t, 1, inner.calls)
}

func TestResilientClient_CircuitBreakerOpens(t *testing.T) {
	inner := &fakeClient{results: []fakeResult{
		{err: &HTTPStatusError{StatusCode: 400, Message: "bad request"}},
	}}
	cfg := config.AIConfig{
		Provider: "gemini",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		},
	}
	c := newTestResilient(inner, cfg)
	assert.Equal(t, "closed", c.BreakerState())

	for range 2 {
		_, err := c.GenerateContent(context.Background(), "prompt", TierStandard)
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.GenerateContent(context.Background(), "prompt", TierStandard)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestResilientClient_BreakerDisabled(t *testing.T) {
	c := newTestResilient(&fakeClient{results: []fakeResult{{text: "ok"}}}, config.AIConfig{})
	assert.Equal(t, "disabled", c.BreakerState())
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &HTTPStatusError{StatusCode: 429}, true},
		{"gateway timeout", &HTTPStatusError{StatusCode: 504}, true},
		{"unauthorized", &HTTPStatusError{StatusCode: 401}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("nope"), false},
		{"partial stream", &partialStreamError{err: &HTTPStatusError{StatusCode: 503}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestBackoff(t *testing.T) {
	assert.GreaterOrEqual(t, backoff(1), time.Second)
	assert.Less(t, backoff(1), 1100*time.Millisecond)
	assert.GreaterOrEqual(t, backoff(3), 4*time.Second)
	assert.Equal(t, maxBackoff, backoff(10))
}
