package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 300*time.Second) // long enough for SSE analysis streams
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173", "http://localhost:3001"})

	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.maxConns", 10)
	v.SetDefault("database.logQueries", false)
	v.SetDefault("mongo.url", "")
	v.SetDefault("mongo.database", "resume_builder")

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("supabase.jwtSecret", "")

	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.baseUrl", "")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.timeout", 90*time.Second)
	v.SetDefault("ai.maxRetries", 2)
	v.SetDefault("ai.streamChunkSize", 20)
	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.redisUrl", "")
	v.SetDefault("cache.ttl", time.Hour)

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMin", 120)
	v.SetDefault("rateLimit.burst", 20)
	v.SetDefault("rateLimit.cleanupInterval", 5*time.Minute)
	v.SetDefault("rateLimit.whitelist", []string{})
	v.SetDefault("rateLimit.blacklist", []string{})

	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "resume-builder")
	v.SetDefault("observability.serviceVersion", "1.0.0")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.port", 9090)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secretPath", "secret/data/resume-builder")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
