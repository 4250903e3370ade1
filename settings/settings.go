// Package settings loads the server settings file (server.yaml).
// A missing file yields the defaults; environment variables override both.
package settings

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wricardo/tile-path-game/logger"
	"gopkg.in/yaml.v3"
)

// Persistence backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ServerConfig holds server-wide settings
type ServerConfig struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Levels    LevelsConfig    `yaml:"levels"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Ngrok     NgrokConfig     `yaml:"ngrok"`
	Logging   logger.Config   `yaml:"logging"`
}

// HTTPConfig is the listen address of the REST/WebSocket/MCP server
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LevelsConfig points at the level YAML files
type LevelsConfig struct {
	Dir string `yaml:"dir"`
}

// SessionsConfig selects where sessions are persisted and how long idle ones live
type SessionsConfig struct {
	Backend        string `yaml:"backend"`
	Dir            string `yaml:"dir"`
	SQLitePath     string `yaml:"sqlite_path"`
	RetentionHours int    `yaml:"retention_hours"`
}

// Retention returns the idle lifetime of a session
func (c SessionsConfig) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins lists accepted Origin headers; empty or "*" accepts any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// NgrokConfig configures the optional public tunnel
type NgrokConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AuthToken string `yaml:"auth_token"`
	Domain    string `yaml:"domain"`
}

// DefaultConfig returns the settings used when no file is present
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		HTTP:   HTTPConfig{Host: "localhost", Port: 8080},
		Levels: LevelsConfig{Dir: "configs"},
		Sessions: SessionsConfig{
			Backend:        BackendFile,
			Dir:            "sessions",
			SQLitePath:     "data/sessions.db",
			RetentionHours: 24,
		},
		WebSocket: WebSocketConfig{AllowedOrigins: []string{}},
		Logging:   logger.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults, then applies environment overrides.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return config, err
		}
	}

	applyEnv(config)
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func applyEnv(config *ServerConfig) {
	if host := os.Getenv("HOST"); host != "" {
		config.HTTP.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		config.HTTP.Port = port
	}
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		config.Levels.Dir = dir
	}
	if dir := os.Getenv("SESSIONS_DIR"); dir != "" {
		config.Sessions.Dir = dir
	}
	if backend := os.Getenv("SESSION_BACKEND"); backend != "" {
		config.Sessions.Backend = backend
	}
	if path := os.Getenv("SESSION_DB"); path != "" {
		config.Sessions.SQLitePath = path
	}
	if enabled, err := strconv.ParseBool(os.Getenv("NGROK_ENABLED")); err == nil {
		config.Ngrok.Enabled = enabled
	}
	// Both spellings of the token variable are in use
	for _, key := range []string{"NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"} {
		if token := os.Getenv(key); token != "" {
			config.Ngrok.AuthToken = token
			break
		}
	}
	if domain := os.Getenv("NGROK_DOMAIN"); domain != "" {
		config.Ngrok.Domain = domain
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOG_CONSOLE_FORMAT"); format != "" {
		config.Logging.ConsoleFormat = format
	}
	if enabled, err := strconv.ParseBool(os.Getenv("LOG_FILE_ENABLED")); err == nil {
		config.Logging.FileEnabled = enabled
	}
	if path := os.Getenv("LOG_FILE_PATH"); path != "" {
		config.Logging.FilePath = path
	}
}

// Validate checks values that would make the server fail later
func (c *ServerConfig) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("settings: http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Sessions.Backend {
	case BackendFile:
		if c.Sessions.Dir == "" {
			return fmt.Errorf("settings: sessions.dir is required for the file backend")
		}
	case BackendSQLite:
		if c.Sessions.SQLitePath == "" {
			return fmt.Errorf("settings: sessions.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("settings: unknown sessions.backend %q (want %s or %s)", c.Sessions.Backend, BackendFile, BackendSQLite)
	}
	if c.Sessions.RetentionHours <= 0 {
		return fmt.Errorf("settings: sessions.retention_hours must be positive")
	}
	return nil
}

// IsOriginAllowed reports whether a WebSocket Origin header is accepted
func (c *WebSocketConfig) IsOriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
