package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "server.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.HTTP.Port != 8080 || cfg.HTTP.Host != "localhost" {
		t.Errorf("unexpected default address %s", cfg.HTTP.Addr())
	}
	if cfg.Sessions.Backend != BackendFile {
		t.Errorf("expected file backend by default, got %s", cfg.Sessions.Backend)
	}
	if cfg.Sessions.Retention() != 24*time.Hour {
		t.Errorf("expected 24h retention, got %v", cfg.Sessions.Retention())
	}
	if cfg.Levels.Dir != "configs" {
		t.Errorf("expected configs dir, got %s", cfg.Levels.Dir)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := `
http:
  port: 9090
sessions:
  backend: sqlite
  sqlite_path: /tmp/game.db
logging:
  level: DEBUG
  console_enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.Host != "localhost" {
		t.Errorf("expected default host to survive, got %s", cfg.HTTP.Host)
	}
	if cfg.Sessions.Backend != BackendSQLite || cfg.Sessions.SQLitePath != "/tmp/game.db" {
		t.Errorf("unexpected sessions config %+v", cfg.Sessions)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected DEBUG logging, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "http: [", "parse"},
		{"bad port", "http:\n  port: 70000\n", "http.port"},
		{"bad backend", "sessions:\n  backend: redis\n", "unknown sessions.backend"},
		{"no retention", "sessions:\n  retention_hours: -1\n", "retention_hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "server.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("CONFIG_DIR", "/levels")
	t.Setenv("SESSION_BACKEND", "sqlite")
	t.Setenv("NGROK_ENABLED", "true")
	t.Setenv("NGROK_AUTH_TOKEN", "secret")
	t.Setenv("LOG_LEVEL", "ERROR")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 7070 {
		t.Errorf("expected port from env, got %d", cfg.HTTP.Port)
	}
	if cfg.Levels.Dir != "/levels" {
		t.Errorf("expected levels dir from env, got %s", cfg.Levels.Dir)
	}
	if cfg.Sessions.Backend != BackendSQLite {
		t.Errorf("expected sqlite backend from env, got %s", cfg.Sessions.Backend)
	}
	if !cfg.Ngrok.Enabled || cfg.Ngrok.AuthToken != "secret" {
		t.Errorf("expected ngrok settings from env, got %+v", cfg.Ngrok)
	}
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("expected log level from env, got %s", cfg.Logging.Level)
	}
}

func TestIsOriginAllowed(t *testing.T) {
	open := WebSocketConfig{}
	if !open.IsOriginAllowed("https://anywhere.example") {
		t.Error("empty list should allow any origin")
	}

	restricted := WebSocketConfig{AllowedOrigins: []string{"https://game.example"}}
	if !restricted.IsOriginAllowed("https://game.example") {
		t.Error("expected listed origin to be allowed")
	}
	if restricted.IsOriginAllowed("https://evil.example") {
		t.Error("expected unlisted origin to be rejected")
	}
	if !restricted.IsOriginAllowed("") {
		t.Error("requests without an Origin header come from non-browser clients")
	}

	wildcard := WebSocketConfig{AllowedOrigins: []string{"*"}}
	if !wildcard.IsOriginAllowed("https://evil.example") {
		t.Error("wildcard should allow all origins")
	}
}

func TestLoadConfig_SampleFile(t *testing.T) {
	cfg, err := LoadConfig("../server.yaml")
	if err != nil {
		t.Fatalf("sample settings should load: %v", err)
	}
	if cfg.HTTP.Addr() != "localhost:8080" {
		t.Errorf("unexpected address %s", cfg.HTTP.Addr())
	}
	if !cfg.WebSocket.IsOriginAllowed("http://example.com") {
		t.Error("expected an empty origin list to accept any origin")
	}
}
