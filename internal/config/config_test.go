package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
session:
  identity: user_42
api:
  rest_url: https://api.navihire.io
  timeout: 10s
realtime:
  ws_url: wss://api.navihire.io
  reconnect_base_delay: 2s
  max_reconnect_attempts: 8
archive:
  enabled: true
  database:
    host: localhost
    port: 5432
    name: navihire
    user: navihire
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Session.Identity != "user_42" {
		t.Errorf("Session.Identity = %q, want %q", cfg.Session.Identity, "user_42")
	}
	if cfg.API.RestURL != "https://api.navihire.io" {
		t.Errorf("API.RestURL = %q", cfg.API.RestURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.Realtime.ReconnectBaseDelay != 2*time.Second {
		t.Errorf("Realtime.ReconnectBaseDelay = %v, want 2s", cfg.Realtime.ReconnectBaseDelay)
	}
	if cfg.Realtime.MaxReconnectAttempts != 8 {
		t.Errorf("Realtime.MaxReconnectAttempts = %d, want 8", cfg.Realtime.MaxReconnectAttempts)
	}
	if !cfg.Archive.Enabled || cfg.Archive.Database.Host != "localhost" {
		t.Errorf("Archive = %+v", cfg.Archive)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
archive:
  database:
    host: localhost
    name: navihire
    user: navihire
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Archive.Database.Password != "secret123" {
		t.Errorf("Archive.Database.Password = %q, want %q", cfg.Archive.Database.Password, "secret123")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvWSURL, "wss://edge.navihire.io")
	t.Setenv(EnvAPIURL, "https://rest.navihire.io")
	t.Setenv(EnvIdentity, " user_env ")

	yaml := `
session:
  identity: user_file
api:
  rest_url: http://localhost:8000
realtime:
  ws_url: ws://localhost:8000
`
	cfg, err := Load(writeTempFile(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Realtime.WSURL != "wss://edge.navihire.io" {
		t.Errorf("Realtime.WSURL = %q", cfg.Realtime.WSURL)
	}
	if cfg.API.RestURL != "https://rest.navihire.io" {
		t.Errorf("API.RestURL = %q", cfg.API.RestURL)
	}
	if cfg.Session.Identity != "user_env" {
		t.Errorf("Session.Identity = %q", cfg.Session.Identity)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := Load(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load err = %v, want fs.ErrNotExist", err)
	}

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate with missing file: %v", err)
	}
	if cfg.Realtime.WSURL != DefaultWSURL {
		t.Errorf("Realtime.WSURL = %q, want default", cfg.Realtime.WSURL)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempFile(t, "realtime: [unterminated")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse config yaml") {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "session:\n  identity: user_1\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.RestURL != DefaultRestURL {
		t.Errorf("API.RestURL = %q, want default %q", cfg.API.RestURL, DefaultRestURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.Realtime.ReconnectBaseDelay != DefaultReconnectBaseDelay {
		t.Errorf("Realtime.ReconnectBaseDelay = %v, want default %v", cfg.Realtime.ReconnectBaseDelay, DefaultReconnectBaseDelay)
	}
	if cfg.Realtime.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("Realtime.MaxReconnectAttempts = %d, want default %d", cfg.Realtime.MaxReconnectAttempts, DefaultMaxReconnectAttempts)
	}
	if cfg.Realtime.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("Realtime.IdleTimeout = %v, want default %v", cfg.Realtime.IdleTimeout, DefaultIdleTimeout)
	}
	if cfg.Archive.Database.Port != DefaultDBPort {
		t.Errorf("Archive.Database.Port = %d, want default %d", cfg.Archive.Database.Port, DefaultDBPort)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want default %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Logging.Format = %q, want default %q", cfg.Logging.Format, DefaultLogFormat)
	}
	if !cfg.SignalsEnabled() {
		t.Error("signals should default to enabled")
	}
}

func TestManagerConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Identity = "user_7"

	mc, err := cfg.ManagerConfig()
	if err != nil {
		t.Fatalf("ManagerConfig: %v", err)
	}
	if mc.URL != "ws://localhost:8000/ws/chat/user_7" {
		t.Errorf("URL = %q", mc.URL)
	}
	if mc.Identity != "user_7" || mc.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("ManagerConfig = %+v", mc)
	}

	cfg.Session.Identity = ""
	if _, err := cfg.ManagerConfig(); err == nil {
		t.Error("expected error without identity")
	}

	cfg.API.Token = "tok"
	dc := cfg.DialerConfig()
	if dc.Token != "tok" || dc.HandshakeTimeout != DefaultHandshakeTimeout || dc.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("DialerConfig = %+v", dc)
	}
}

func TestBuildChatURL(t *testing.T) {
	got, err := BuildChatURL("https://api.navihire.io/", "user_1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "wss://api.navihire.io/ws/chat/user_1" {
		t.Errorf("BuildChatURL = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *NaviHireConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *NaviHireConfig) {},
			wantErr: "",
		},
		{
			name:    "missing rest url",
			mutate:  func(c *NaviHireConfig) { c.API.RestURL = "" },
			wantErr: "api.rest_url is required",
		},
		{
			name:    "ws scheme for rest url",
			mutate:  func(c *NaviHireConfig) { c.API.RestURL = "ws://localhost:8000" },
			wantErr: `api.rest_url scheme must be one of http, https, got "ws"`,
		},
		{
			name:    "ws url without host",
			mutate:  func(c *NaviHireConfig) { c.Realtime.WSURL = "ws://" },
			wantErr: "realtime.ws_url has no host",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *NaviHireConfig) { c.Realtime.MaxReconnectAttempts = -1 },
			wantErr: "realtime.max_reconnect_attempts must be >= 1",
		},
		{
			name:    "idle shorter than heartbeat",
			mutate:  func(c *NaviHireConfig) { c.Realtime.IdleTimeout = time.Second },
			wantErr: "realtime.idle_timeout (1s) must be >= heartbeat_interval (30s)",
		},
		{
			name:    "negative log limit",
			mutate:  func(c *NaviHireConfig) { c.Realtime.MessageLogLimit = -1 },
			wantErr: "realtime.message_log_limit must be >= 0",
		},
		{
			name:    "archive disabled skips database",
			mutate:  func(c *NaviHireConfig) { c.Archive.Database = DBConfig{} },
			wantErr: "",
		},
		{
			name: "archive missing host",
			mutate: func(c *NaviHireConfig) {
				c.Archive.Enabled = true
				c.Archive.Database.Host = ""
			},
			wantErr: "archive.database.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *NaviHireConfig) {
				c.Archive.Enabled = true
				c.Archive.Database.Host = "localhost"
				c.Archive.Database.Name = "db"
				c.Archive.Database.User = "user"
				c.Archive.Database.MaxConns = 5
				c.Archive.Database.MinConns = 10
			},
			wantErr: "archive.database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "metrics port out of range",
			mutate:  func(c *NaviHireConfig) { c.Metrics.Port = 70000 },
			wantErr: "metrics.port must be between 0 and 65535, got 70000",
		},
		{
			name:    "bad log format",
			mutate:  func(c *NaviHireConfig) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func validConfig() *NaviHireConfig {
	cfg := &NaviHireConfig{}
	cfg.applyDefaults()
	return cfg
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadExampleFile(t *testing.T) {
	t.Setenv("NAVIHIRE_TOKEN", "tok")
	t.Setenv(EnvWSURL, "")
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvIdentity, "")

	cfg, err := LoadAndValidate(filepath.Join("..", "..", "configs", "navihire.example.yaml"))
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if cfg.API.Token != "tok" {
		t.Errorf("token = %q", cfg.API.Token)
	}
	if cfg.Archive.Enabled || cfg.Metrics.Port != 0 {
		t.Errorf("example should not enable archive or metrics: %+v %+v", cfg.Archive, cfg.Metrics)
	}
	if !cfg.SignalsEnabled() {
		t.Error("example enables signal watching")
	}
}
