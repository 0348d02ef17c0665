package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestFromURL_InvalidURL(t *testing.T) {
	for _, u := range []string{"not-a-url", "ftp://example.com/cv", ""} {
		t.Run(u, func(t *testing.T) {
			_, _, err := IngestFromURL(context.Background(), u, URLOptions{})
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}

func TestIngestFromURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<nav>Home | Blog</nav>
			<main>
				<h1>Jane Doe</h1>
				<p>Backend engineer    working with Go.</p>
			</main>
			<footer>© 2024</footer>
		</body></html>`))
	}))
	defer server.Close()

	text, metadata, err := IngestFromURL(context.Background(), server.URL, URLOptions{AllowPrivateNetworks: true})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nBackend engineer working with Go.", text)
	assert.Equal(t, SourceURL, metadata.Source)
	assert.Equal(t, "generic", metadata.Platform)
	assert.False(t, metadata.Browser)
}

func TestIngestFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := IngestFromURL(context.Background(), server.URL, URLOptions{AllowPrivateNetworks: true})
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
}

func TestIngestFromURL_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script>render()</script></body></html>`))
	}))
	defer server.Close()

	_, _, err := IngestFromURL(context.Background(), server.URL, URLOptions{AllowPrivateNetworks: true})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestIngestFromURL_BrowserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root">Loading</div></body></html>`))
	}))
	defer server.Close()

	rendered := "<html><body><main><p>" + strings.Repeat("Experienced engineer. ", 30) + "</p></main></body></html>"
	var renderedURL string
	opts := URLOptions{
		UseBrowser:           true,
		AllowPrivateNetworks: true,
		render: func(_ context.Context, url string) (string, error) {
			renderedURL = url
			return rendered, nil
		},
	}

	text, metadata, err := IngestFromURL(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, server.URL, renderedURL)
	assert.True(t, strings.HasPrefix(text, "Experienced engineer."))
	assert.True(t, metadata.Browser)
}

func TestIngestFromURL_BrowserFailureKeepsHTTPText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><main>Short bio</main></body></html>`))
	}))
	defer server.Close()

	opts := URLOptions{
		UseBrowser:           true,
		AllowPrivateNetworks: true,
		render: func(context.Context, string) (string, error) {
			return "", errors.New("chrome not installed")
		},
	}

	text, metadata, err := IngestFromURL(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, "Short bio", text)
	assert.False(t, metadata.Browser)
}

func TestIngestFromURL_NoBrowserWhenDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><main>Short bio</main></body></html>`))
	}))
	defer server.Close()

	opts := URLOptions{
		AllowPrivateNetworks: true,
		render: func(context.Context, string) (string, error) {
			t.Fatal("browser should not be used")
			return "", nil
		},
	}
	_, _, err := IngestFromURL(context.Background(), server.URL, opts)
	require.NoError(t, err)
}

func TestIngestFromURL_RejectsPrivateHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><main>internal admin page</main></body></html>`))
	}))
	defer server.Close()

	_, _, err := IngestFromURL(context.Background(), server.URL, URLOptions{})
	require.ErrorIs(t, err, ErrInvalidURL)
	assert.ErrorIs(t, err, fetch.ErrBlockedAddress)
	assert.NotErrorIs(t, err, ErrHTTPRequestFailed)
}
