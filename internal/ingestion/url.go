package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-builder/internal/fetch"
)

var (
	// ErrInvalidURL is returned when URL is malformed
	ErrInvalidURL = errors.New("invalid URL")
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
	// ErrEmptyText is returned when an import yields no text
	ErrEmptyText = errors.New("no text could be extracted")
)

// URLOptions controls IngestFromURL
type URLOptions struct {
	// UseBrowser enables the headless browser fallback for thin pages
	UseBrowser bool
	// Client defaults to fetch.NewClient()
	Client *fetch.Client
	// AllowPrivateNetworks permits loopback and private hosts, for local CLI use
	AllowPrivateNetworks bool
	Logger               *slog.Logger
	// render is swapped in tests
	render func(ctx context.Context, url string) (string, error)
}

// IngestFromURL fetches a profile or portfolio page and returns its cleaned text.
// Platform-specific selectors are applied for LinkedIn and GitHub. When the
// extracted text is shorter than fetch.MinContentLength and UseBrowser is set,
// the page is rendered in a headless browser and extracted again.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	render := opts.render
	if render == nil {
		renderer := fetch.NewRenderer(logger)
		renderer.AllowPrivate = opts.AllowPrivateNetworks
		render = renderer.Render
	}
	client := opts.Client
	if client == nil {
		var fetchOpts []fetch.Option
		if opts.AllowPrivateNetworks {
			fetchOpts = append(fetchOpts, fetch.AllowPrivateNetworks())
		}
		client = fetch.NewClient(fetchOpts...)
	}

	if _, err := fetch.ParseURL(urlStr); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	page, err := client.Get(ctx, urlStr)
	if errors.Is(err, fetch.ErrBlockedAddress) {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	platform := page.Platform
	logger.DebugContext(ctx, "fetched url", "url", urlStr, "platform", platform, "bytes", len(page.HTML))

	textContent, err := fetch.Text(page.HTML, platform)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	logger.DebugContext(ctx, "extracted text", "chars", len(textContent))

	usedBrowser := false
	if opts.UseBrowser && fetch.NeedsBrowser(textContent) {
		logger.InfoContext(ctx, "content too short, falling back to browser rendering",
			"chars", len(textContent), "min", fetch.MinContentLength)

		browserHTML, browserErr := render(ctx, urlStr)
		if browserErr != nil {
			// keep the HTTP content
			logger.WarnContext(ctx, "browser rendering failed", "error", browserErr)
		} else if rendered, err := fetch.Text(browserHTML, platform); err == nil {
			textContent = rendered
			usedBrowser = true
		}
	}

	cleanedText := CleanText(textContent)
	if cleanedText == "" {
		return "", nil, ErrEmptyText
	}

	metadata := NewMetadata(SourceURL, cleanedText, urlStr)
	metadata.Platform = string(platform)
	metadata.Browser = usedBrowser
	return cleanedText, metadata, nil
}
