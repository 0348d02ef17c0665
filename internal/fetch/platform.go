// Package fetch - platform.go provides platform detection and platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known profile host.
type Platform string

const (
	// PlatformLinkedIn is a public LinkedIn profile
	PlatformLinkedIn Platform = "linkedin"
	// PlatformGitHub is a GitHub profile or profile README
	PlatformGitHub Platform = "github"
	// PlatformGeneric is a personal site or anything else
	PlatformGeneric Platform = "generic"
)

// DetectPlatform identifies the profile host from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformGeneric
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	switch {
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return PlatformLinkedIn
	case host == "github.com" || strings.HasSuffix(host, ".github.io"):
		return PlatformGitHub
	default:
		return PlatformGeneric
	}
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformLinkedIn:
		return []string{
			"main.core-rail",
			".core-section-container",
			"section.top-card-layout",
			"main",
		}
	case PlatformGitHub:
		return []string{
			"article.markdown-body", // profile README
			".js-profile-editable-area",
			".markdown-body",
			"main",
		}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".social-share",
		".share-buttons",
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
		"[aria-hidden='true']",
	}

	switch platform {
	case PlatformLinkedIn:
		return append(common,
			".sign-in-modal",
			".join-form",
			".contextual-sign-in-modal",
			".browsemap",
			".people-also-viewed",
			".similar-profiles",
		)
	case PlatformGitHub:
		return append(common,
			".js-pinned-items-reorder-container",
			".js-yearly-contributions",
			".signup-prompt",
			".UnderlineNav",
		)
	default:
		return append(common,
			".comments",
			"#comments",
			".newsletter",
		)
	}
}
