// Package config provides layered configuration loading and validation for the service and CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// AI providers
const (
	ProviderGemini     = "gemini"
	ProviderGenAI      = "genai"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Config holds all application configuration.
// Precedence, highest first: Vault, environment variables, config file, defaults.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Mongo         MongoConfig         `mapstructure:"mongo"`
	Supabase      SupabaseConfig      `mapstructure:"supabase"`
	AI            AIConfig            `mapstructure:"ai"`
	Cache         CacheConfig         `mapstructure:"cache"`
	RateLimit     RateLimitConfig     `mapstructure:"rateLimit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Log           LogConfig           `mapstructure:"log"`

	v *viper.Viper
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"maxConns"`
	// LogQueries traces every statement at debug level
	LogQueries bool `mapstructure:"logQueries"`
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// SupabaseConfig holds identity provider settings.
// When JWTSecret is set tokens are verified locally, otherwise against {URL}/auth/v1/user.
type SupabaseConfig struct {
	URL       string `mapstructure:"url"`
	Key       string `mapstructure:"key"`
	JWTSecret string `mapstructure:"jwtSecret"`
}

// AIConfig holds generative model configuration
type AIConfig struct {
	Provider        string               `mapstructure:"provider"`
	Model           string               `mapstructure:"model"`
	APIKey          string               `mapstructure:"apiKey"`
	BaseURL         string               `mapstructure:"baseUrl"`
	Temperature     float32              `mapstructure:"temperature"`
	Timeout         time.Duration        `mapstructure:"timeout"`
	MaxRetries      int                  `mapstructure:"maxRetries"`
	StreamChunkSize int                  `mapstructure:"streamChunkSize"`
	CircuitBreaker  CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // clears counts while closed
	Timeout          time.Duration `mapstructure:"timeout"`          // open -> half-open
	MinRequests      uint32        `mapstructure:"minRequests"`      // before tripping is considered
	FailureThreshold float64       `mapstructure:"failureThreshold"` // 0.0-1.0
}

// CacheConfig holds analysis cache settings
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redisUrl"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RequestsPerMin  int           `mapstructure:"requestsPerMin"`
	Burst           int           `mapstructure:"burst"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// ObservabilityConfig holds tracing and metrics configuration
type ObservabilityConfig struct {
	Enabled        bool             `mapstructure:"enabled"`
	ServiceName    string           `mapstructure:"serviceName"`
	ServiceVersion string           `mapstructure:"serviceVersion"`
	ConsoleOutput  bool             `mapstructure:"consoleOutput"`
	SampleRate     float64          `mapstructure:"sampleRate"`
	OTLP           OTLPConfig       `mapstructure:"otlp"`
	Prometheus     PrometheusConfig `mapstructure:"prometheus"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Port     int    `mapstructure:"port"`
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps config keys to the plain variable names the original deployment used.
var legacyEnv = map[string]string{
	"database.url":       "DATABASE_URL",
	"mongo.url":          "MONGODB_URL",
	"supabase.url":       "SUPABASE_URL",
	"supabase.key":       "SUPABASE_KEY",
	"supabase.jwtSecret": "SUPABASE_JWT_SECRET",
	"ai.apiKey":          "GEMINI_API_KEY",
}

// Load reads configuration from defaults, an optional YAML file, the environment and,
// if enabled, Vault. path may be empty to search the standard locations.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation. Offline commands use it since they need
// neither a database nor an identity provider.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESUME_BUILDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resume-builder/")
		v.AddConfigPath("$HOME/.resume-builder")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment")
	} else {
		slog.Debug("loaded config file", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.v = v

	if cfg.AI.Provider == ProviderOpenRouter && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = v.GetString("openrouterApiKey")
	}

	if cfg.Vault.Enabled {
		vc, err := NewVaultClient(cfg.Vault)
		if err != nil {
			return nil, err
		}
		secrets, err := vc.ReadSecrets(cfg.Vault.SecretPath)
		if err != nil {
			return nil, err
		}
		cfg.applySecrets(secrets)
	}
	return &cfg, nil
}

func bindLegacyEnv(v *viper.Viper) error {
	for key, env := range legacyEnv {
		prefixed := "RESUME_BUILDER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	if err := v.BindEnv("openrouterApiKey", "OPENROUTER_API_KEY"); err != nil {
		return fmt.Errorf("failed to bind env for openrouterApiKey: %w", err)
	}
	return nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("config error: 'server.port' must be positive, got %d", c.Server.Port)
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("config error: 'database.url' is required for the postgres driver")
		}
	case DriverMongo:
		if c.Mongo.URL == "" {
			return fmt.Errorf("config error: 'mongo.url' is required for the mongo driver")
		}
	default:
		return fmt.Errorf("config error: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderGenAI, ProviderOpenAI, ProviderOpenRouter:
	default:
		return fmt.Errorf("config error: unknown ai provider %q", c.AI.Provider)
	}

	if c.Supabase.JWTSecret == "" && c.Supabase.URL == "" {
		return fmt.Errorf("config error: 'supabase.url' is required when 'supabase.jwtSecret' is not set")
	}

	if c.AI.CircuitBreaker.FailureThreshold < 0 || c.AI.CircuitBreaker.FailureThreshold > 1 {
		return fmt.Errorf("config error: 'ai.circuitBreaker.failureThreshold' must be between 0.0 and 1.0")
	}
	return nil
}

// Address returns the listen address for the API server.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
