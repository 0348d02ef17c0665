package fetch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest extracted text accepted without a browser render
const MinContentLength = 500

// DefaultBrowserTimeout bounds a single headless render
const DefaultBrowserTimeout = 30 * time.Second

// NeedsBrowser reports whether text is too thin to be the real page,
// which usually means the site renders client-side.
func NeedsBrowser(text string) bool {
	return len(strings.TrimSpace(text)) < MinContentLength
}

var allocatorOptions = append(chromedp.DefaultExecAllocatorOptions[:],
	chromedp.Flag("headless", true),
	chromedp.Flag("disable-gpu", true),
	chromedp.Flag("no-sandbox", true),
	chromedp.Flag("disable-dev-shm-usage", true),
	chromedp.UserAgent(DefaultUserAgent),
)

// Renderer loads pages in headless Chrome. Chrome or Chromium must be installed.
type Renderer struct {
	Timeout time.Duration
	// Settle is how long to wait after load for the page to hydrate
	Settle time.Duration
	Logger *slog.Logger
	// AllowPrivate skips the check that the host resolves to public addresses
	AllowPrivate bool
}

// NewRenderer returns a Renderer with DefaultBrowserTimeout and a 3s settle delay
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{Timeout: DefaultBrowserTimeout, Settle: 3 * time.Second, Logger: logger}
}

// Render returns the page HTML after scripts have run
func (r *Renderer) Render(ctx context.Context, rawURL string) (string, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return "", err
	}
	if !r.AllowPrivate {
		if err := CheckHost(ctx, nil, u.Hostname()); err != nil {
			return "", &Error{URL: rawURL, Op: "resolve", Err: err}
		}
	}
	r.Logger.DebugContext(ctx, "rendering page in headless browser", "url", rawURL)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	browserCtx, cancel := context.WithTimeout(browserCtx, r.Timeout)
	defer cancel()

	var html string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.Settle),
		chromedp.ActionFunc(dismissCookieBanner),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: rawURL, Op: "render", Err: err}
	}

	r.Logger.DebugContext(ctx, "rendered page", "url", rawURL, "bytes", len(html))
	return html, nil
}

// dismissCookieBanner clicks an accept button when one is visible
func dismissCookieBanner(ctx context.Context) error {
	_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
	return nil
}
