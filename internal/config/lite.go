// Package config provides configuration management for the staging servers.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// DefaultGeminiModel is the model used by the report reader when none is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// LiteConfig is a simplified configuration for standalone operation.
// It requires no external databases and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for the feedback database and exports

	// Cache settings
	CacheMaxItems int           // Maximum report readings kept in memory
	CacheTTL      time.Duration // Lifetime of a cached reading

	// Report reader settings
	GeminiAPIKey string  // Optional: default key when a request carries none
	GeminiModel  string  // Model name passed to the Gemini API
	AIRateLimit  float64 // Report reader requests per second

	// Transport settings
	Transport string // Transport type: stdio, http
	HTTPPort  int    // HTTP port (if transport is http)

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".gyn-staging")

	return &LiteConfig{
		DataDir:       dataDir,
		CacheMaxItems: 256,
		CacheTTL:      6 * time.Hour,
		GeminiModel:   DefaultGeminiModel,
		AIRateLimit:   1,
		Transport:     "stdio",
		HTTPPort:      8080,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("GYNSTAGE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Cache settings
	if v := os.Getenv("GYNSTAGE_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("GYNSTAGE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	// Report reader. GEMINI_API_KEY is honoured so an existing key works unchanged.
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("GYNSTAGE_GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GYNSTAGE_GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("GYNSTAGE_AI_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.AIRateLimit = f
		}
	}

	// Transport
	if v := os.Getenv("GYNSTAGE_TRANSPORT"); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv("GYNSTAGE_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	// Logging
	if v := os.Getenv("GYNSTAGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GYNSTAGE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// FeedbackDBPath returns the path to the feedback SQLite database.
func (c *LiteConfig) FeedbackDBPath() string {
	return filepath.Join(c.DataDir, "feedback.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}

// ToConfig expands the lite settings into a full configuration: SQLite
// feedback under DataDir, an in-memory reading cache and the MCP transport.
func (c *LiteConfig) ToConfig() *domain.Config {
	return &domain.Config{
		Feedback: domain.FeedbackConfig{
			Driver: "sqlite",
			Path:   c.FeedbackDBPath(),
		},
		AIBridge: domain.AIBridgeConfig{
			APIKey:    c.GeminiAPIKey,
			Model:     c.GeminiModel,
			Timeout:   60 * time.Second,
			RateLimit: c.AIRateLimit,
		},
		Cache: domain.CacheConfig{
			Size:       c.CacheMaxItems,
			DefaultTTL: c.CacheTTL,
		},
		Logging: domain.LoggingConfig{
			Level:  c.LogLevel,
			Format: c.LogFormat,
			Output: "stderr",
		},
		MCP: domain.MCPConfig{
			ServerName:     "gyn-cancer-staging",
			ServerVersion:  "1.0.0",
			TransportType:  c.Transport,
			HTTPHost:       "127.0.0.1",
			HTTPPort:       c.HTTPPort,
			RequestTimeout: 90 * time.Second,
		},
	}
}
