package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplate is removed from every page before extraction
const boilerplate = "nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

// blockElements get a trailing newline so adjacent blocks stay on separate lines
const blockElements = "p, li, h1, h2, h3, h4, h5, h6, div, section, br, tr"

// Text extracts the readable text of a page using the selectors for platform
func Text(html string, platform Platform) (string, error) {
	return ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
}

// ExtractMainText returns the text of the first element matching one of
// content, after removing boilerplate and noise. The body is used when no
// content selector matches.
func ExtractMainText(html string, content []string, noise ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find(boilerplate).Remove()
	if len(noise) > 0 {
		doc.Find(strings.Join(noise, ", ")).Remove()
	}

	root := doc.Find("body")
	for _, selector := range content {
		if sel := doc.Find(selector); sel.Length() > 0 {
			root = sel.First()
			break
		}
	}

	root.Find(blockElements).AppendHtml("\n")
	return collapseLines(root.Text()), nil
}

// DefaultTextSelectors are the content selectors for an unknown site
func DefaultTextSelectors() []string {
	return []string{"main", "article", ".content", "#content", ".main-content", "#main-content"}
}

// collapseLines trims each line and drops the empty ones
func collapseLines(text string) string {
	var b strings.Builder
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}
