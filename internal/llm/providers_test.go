package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "anthropic"}, "key")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Contains(t, err.Error(), "openrouter")
}

func TestProviders(t *testing.T) {
	assert.Equal(t, []Provider{ProviderGemini, ProviderGenAI, ProviderOpenAI, ProviderOpenRouter}, Providers())
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	for _, cfg := range []*Config{DefaultOpenAIConfig(), DefaultOpenRouterConfig()} {
		_, err := NewClient(context.Background(), cfg, "")
		assert.Error(t, err, "provider %s", cfg.Provider)
	}
}

func TestOpenRouterClient_GenerateJSON(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Sure:\n{\"summary\": \"ok\"}"}}]}`)
	}))
	defer srv.Close()

	cfg := DefaultOpenRouterConfig()
	cfg.BaseURL = srv.URL
	client, err := NewOpenRouterClient(cfg, "test-key")
	require.NoError(t, err)

	out, err := client.GenerateJSON(context.Background(), "analyze this", TierStandard)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "ok"}`, out)

	assert.Equal(t, "google/gemini-2.0-flash-001", captured["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])
}

func TestOpenRouterClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer srv.Close()

	cfg := DefaultOpenRouterConfig()
	cfg.BaseURL = srv.URL
	client, err := NewOpenRouterClient(cfg, "test-key")
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "hi", TierStandard)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "rate limited", statusErr.Message)
	assert.True(t, isRetryableError(err))
}

func TestOpenRouterClient_StreamReplaysChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"abcdefghij"}}]}`)
	}))
	defer srv.Close()

	cfg := DefaultOpenRouterConfig()
	cfg.BaseURL = srv.URL
	cfg.StreamChunkSize = 4
	client, err := NewOpenRouterClient(cfg, "test-key")
	require.NoError(t, err)

	var chunks []string
	out, err := client.StreamContent(context.Background(), "hi", TierStandard, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij", out)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",`+
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hello"}}]}`)
	}))
	defer srv.Close()

	cfg := DefaultOpenAIConfig()
	cfg.BaseURL = srv.URL
	client, err := NewOpenAIClient(cfg, "test-key")
	require.NoError(t, err)

	out, err := client.GenerateContent(context.Background(), "hi", TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestOpenAIClient_StreamContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, piece := range []string{"Hel", "lo"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt-4o-mini\","+
				"\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", piece)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	cfg := DefaultOpenAIConfig()
	cfg.BaseURL = srv.URL
	client, err := NewOpenAIClient(cfg, "test-key")
	require.NoError(t, err)

	var chunks []string
	out, err := client.StreamContent(context.Background(), "hi", TierStandard, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
}
