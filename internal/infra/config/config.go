// Package config provides application-wide configuration.
// Values come from environment variables with safe defaults, so the binary
// runs locally with no setup at all (everything then resolves to the
// deterministic offline provider). An optional YAML file named by
// ECONPULSE_CONFIG is read first; env vars override it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for econpulse.
type Config struct {
	// AI provider selection and remote backend settings.
	AIProvider   string        `yaml:"ai_provider"`    // AI_PROVIDER — default: "local"
	AIAPIKey     string        `yaml:"ai_api_key"`     // AI_API_KEY — default: ""
	AIAPIURL     string        `yaml:"ai_api_url"`     // AI_API_URL — default: "https://api.openai.com/v1"
	AIModel      string        `yaml:"ai_model"`       // AI_MODEL — default: "gpt-4o"
	AIEmbedModel string        `yaml:"ai_embed_model"` // AI_EMBED_MODEL — default: "text-embedding-3-small"
	ProbeCache   time.Duration `yaml:"-"`              // AI_PROBE_CACHE_TTL seconds — default: 0 (probe every call)

	// HTTP server.
	HTTPHost string `yaml:"http_host"` // HTTP_HOST — default: "0.0.0.0"
	HTTPPort int    `yaml:"http_port"` // HTTP_PORT — default: 8080

	// Storage.
	DBPath string `yaml:"db_path"` // DB_PATH — default: "econpulse.db"

	// Initial service account seeded at startup when both are set.
	ClientID     string `yaml:"client_id"`     // ECONPULSE_CLIENT_ID
	ClientSecret string `yaml:"client_secret"` // ECONPULSE_CLIENT_SECRET
}

const (
	envKeyAIProvider    = "AI_PROVIDER"
	envKeyAIAPIKey      = "AI_API_KEY"
	envKeyAIAPIURL      = "AI_API_URL"
	envKeyAIModel       = "AI_MODEL"
	envKeyAIEmbedModel  = "AI_EMBED_MODEL"
	envKeyProbeCacheTTL = "AI_PROBE_CACHE_TTL"
	envKeyHTTPHost      = "HTTP_HOST"
	envKeyHTTPPort      = "HTTP_PORT"
	envKeyDBPath        = "DB_PATH"
	envKeyClientID      = "ECONPULSE_CLIENT_ID"
	envKeyClientSecret  = "ECONPULSE_CLIENT_SECRET"
	envKeyConfigFile    = "ECONPULSE_CONFIG"
)

// Load reads configuration: defaults, then the optional YAML file, then
// environment variables. A missing or unreadable YAML file is ignored —
// env-only deployments are the common case.
func Load() Config {
	cfg := Config{
		AIProvider:   "local",
		AIAPIURL:     "https://api.openai.com/v1",
		AIModel:      "gpt-4o",
		AIEmbedModel: "text-embedding-3-small",
		HTTPHost:     "0.0.0.0",
		HTTPPort:     8080,
		DBPath:       "econpulse.db",
	}

	if path := os.Getenv(envKeyConfigFile); path != "" {
		_ = loadFile(path, &cfg)
	}

	cfg.AIProvider = envOr(envKeyAIProvider, cfg.AIProvider)
	cfg.AIAPIKey = envOr(envKeyAIAPIKey, cfg.AIAPIKey)
	cfg.AIAPIURL = envOr(envKeyAIAPIURL, cfg.AIAPIURL)
	cfg.AIModel = envOr(envKeyAIModel, cfg.AIModel)
	cfg.AIEmbedModel = envOr(envKeyAIEmbedModel, cfg.AIEmbedModel)
	cfg.ProbeCache = envSeconds(envKeyProbeCacheTTL, cfg.ProbeCache)
	cfg.HTTPHost = envOr(envKeyHTTPHost, cfg.HTTPHost)
	cfg.HTTPPort = envInt(envKeyHTTPPort, cfg.HTTPPort)
	cfg.DBPath = envOr(envKeyDBPath, cfg.DBPath)
	cfg.ClientID = envOr(envKeyClientID, cfg.ClientID)
	cfg.ClientSecret = envOr(envKeyClientSecret, cfg.ClientSecret)

	return cfg
}

// loadFile merges a YAML config file into cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses an integer env var, keeping fallback on absence or garbage.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envSeconds parses a whole-seconds env var into a Duration.
func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
