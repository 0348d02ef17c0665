package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	TokenFile  string `mapstructure:"tokenFile"`
	Namespace  string `mapstructure:"namespace"`
	SecretPath string `mapstructure:"secretPath"` // KVv2 path, e.g. secret/data/resume-builder
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
}

// NewVaultClient creates a Vault client from configuration.
func NewVaultClient(cfg VaultConfig) (*VaultClient, error) {
	vaultConfig := api.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	return &VaultClient{client: client}, nil
}

func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// ReadSecrets reads a KVv2 secret and returns its string values.
func (vc *VaultClient) ReadSecrets(path string) (map[string]string, error) {
	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secret found at %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not a KVv2 secret", path)
	}

	out := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	slog.Debug("read secrets from vault", "path", path, "keys", len(out))
	return out, nil
}

// applySecrets overrides configuration with values found in Vault.
func (c *Config) applySecrets(secrets map[string]string) {
	set := func(dst *string, key string) {
		if v, ok := secrets[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&c.Database.URL, "databaseUrl")
	set(&c.Mongo.URL, "mongoUrl")
	set(&c.Supabase.Key, "supabaseKey")
	set(&c.Supabase.JWTSecret, "supabaseJwtSecret")
	set(&c.AI.APIKey, "aiApiKey")
	set(&c.Cache.RedisURL, "redisUrl")
}
