package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Path pattern; "*" matches one segment, a trailing "/" matches any suffix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// FromSettings builds a limiter Config from the application settings.
func FromSettings(s config.RateLimitConfig) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}

	limit := s.RequestsPerMin
	if limit <= 0 {
		limit = 120
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    limit,
		DefaultWindow:   time.Minute,
		DefaultBurst:    s.Burst,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       toSet(s.Whitelist),
		Blacklist:       toSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: model calls and imports (strictest limits)
		{Path: "/resumes/*/analyze", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/resumes/*/analyze/stream", Method: "GET", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/resumes/*/import/url", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/resumes/*/import/pdf", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Tier 2: write operations (moderate limits)
		{Path: "/resumes", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/resumes/", Method: "PATCH", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/resumes/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/users/me", Method: "PATCH", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/users/me", Method: "DELETE", Limit: 10, Window: time.Minute, Burst: 2},

		// Tier 3: reads use the default limit
		// Tier 4: health check is unlimited, see MatchEndpoint
	}
}

// toSet converts a list of client addresses into a lookup set.
func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
