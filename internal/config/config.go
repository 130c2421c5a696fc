package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithViper loads through an existing Viper instance, typically one with
// command-line flags already bound.
func WithViper(v *viper.Viper) ManagerOption {
	return func(m *Manager) { m.v = v }
}

// WithConfigFile reads an explicit file instead of searching the default paths.
func WithConfigFile(path string) ManagerOption {
	return func(m *Manager) { m.configFile = path }
}

// NewManager creates a new configuration manager
func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.v == nil {
		m.v = viper.New()
	}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := m.v

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/gyn-staging/")
	}

	v.SetEnvPrefix("GYNSTAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars apply without one.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || m.configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	v := m.v

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.environment", "development")

	// Feedback store defaults
	v.SetDefault("feedback.driver", "sqlite")
	v.SetDefault("feedback.path", DefaultLiteConfig().FeedbackDBPath())
	v.SetDefault("feedback.url", "")
	v.SetDefault("feedback.max_open_conns", 10)
	v.SetDefault("feedback.max_idle_conns", 2)
	v.SetDefault("feedback.conn_max_lifetime", "5m")

	// Report reader defaults
	v.SetDefault("ai_bridge.api_key", "")
	v.SetDefault("ai_bridge.model", DefaultGeminiModel)
	v.SetDefault("ai_bridge.timeout", "60s")
	v.SetDefault("ai_bridge.rate_limit", 1)

	// Cache defaults
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.default_ttl", "6h")
	v.SetDefault("cache.redis_url", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	// MCP defaults
	v.SetDefault("mcp.server_name", "gyn-cancer-staging")
	v.SetDefault("mcp.server_version", "1.0.0")
	v.SetDefault("mcp.transport_type", "stdio")
	v.SetDefault("mcp.http_host", "127.0.0.1")
	v.SetDefault("mcp.http_port", 8081)
	v.SetDefault("mcp.request_timeout", "90s")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetFeedbackConfig returns feedback store configuration
func (m *Manager) GetFeedbackConfig() *domain.FeedbackConfig {
	return &m.config.Feedback
}

// GetAIBridgeConfig returns report reader configuration
func (m *Manager) GetAIBridgeConfig() *domain.AIBridgeConfig {
	return &m.config.AIBridge
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimit < 0 {
		return fmt.Errorf("invalid server rate limit: %v", config.Server.RateLimit)
	}

	switch config.Feedback.Driver {
	case "sqlite":
		if config.Feedback.Path == "" {
			return fmt.Errorf("feedback path is required for the sqlite driver")
		}
	case "postgres":
		if config.Feedback.URL == "" {
			return fmt.Errorf("feedback url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid feedback driver: %s", config.Feedback.Driver)
	}

	if config.AIBridge.Model == "" {
		return fmt.Errorf("ai_bridge model is required")
	}
	if config.AIBridge.RateLimit <= 0 {
		return fmt.Errorf("invalid ai_bridge rate limit: %v", config.AIBridge.RateLimit)
	}

	switch config.MCP.TransportType {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid MCP transport: %s", config.MCP.TransportType)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Server.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Server.Environment)
	return env == "development" || env == "dev" || env == ""
}

var _ domain.ConfigManager = (*Manager)(nil)
