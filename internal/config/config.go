package config

import (
	"time"

	"github.com/navikenz/navihire/internal/realtime"
	"github.com/navikenz/navihire/internal/version"
)

// NaviHireConfig is the root configuration for a client session.
type NaviHireConfig struct {
	Session     SessionConfig     `yaml:"session"`
	API         APIConfig         `yaml:"api"`
	Realtime    RealtimeConfig    `yaml:"realtime"`
	Environment EnvironmentConfig `yaml:"environment"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SessionConfig identifies the chat session.
type SessionConfig struct {
	Identity string `yaml:"identity"`
}

// APIConfig holds REST backend settings.
type APIConfig struct {
	RestURL      string        `yaml:"rest_url"`
	Token        string        `yaml:"token"` // Optional bearer token, sent on REST and websocket requests
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// RealtimeConfig holds websocket connection manager settings.
type RealtimeConfig struct {
	WSURL                string        `yaml:"ws_url"`
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	IdleTimeout          time.Duration `yaml:"idle_timeout"`
	SettleDelay          time.Duration `yaml:"settle_delay"`
	MessageLogLimit      int           `yaml:"message_log_limit"`
	HandshakeTimeout     time.Duration `yaml:"handshake_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
}

// EnvironmentConfig holds host environment monitor settings.
type EnvironmentConfig struct {
	ProbeInterval    time.Duration `yaml:"probe_interval"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	ProbeConcurrency int           `yaml:"probe_concurrency"`
	ProbeAddrs       []string      `yaml:"probe_addrs"` // Extra host:port reachability targets
	WatchSignals     *bool         `yaml:"watch_signals"`
}

// ArchiveConfig holds message archive settings.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MetricsConfig holds Prometheus metrics and health server settings.
// A zero port disables the server.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ChatURL returns the full channel URL for the configured identity.
func (c *NaviHireConfig) ChatURL() (string, error) {
	return BuildChatURL(c.Realtime.WSURL, c.Session.Identity)
}

// BuildChatURL composes <wsURL>/ws/chat/<identity>.
func BuildChatURL(wsURL, identity string) (string, error) {
	return realtime.BuildURL(wsURL, identity)
}

// ManagerConfig maps the realtime section onto a realtime.Config.
func (c *NaviHireConfig) ManagerConfig() (realtime.Config, error) {
	url, err := c.ChatURL()
	if err != nil {
		return realtime.Config{}, err
	}
	r := c.Realtime
	return realtime.Config{
		URL:                  url,
		Identity:             c.Session.Identity,
		ReconnectBaseDelay:   r.ReconnectBaseDelay,
		MaxReconnectAttempts: r.MaxReconnectAttempts,
		HeartbeatInterval:    r.HeartbeatInterval,
		IdleTimeout:          r.IdleTimeout,
		SettleDelay:          r.SettleDelay,
		MessageLogLimit:      r.MessageLogLimit,
	}, nil
}

// DialerConfig maps transport settings onto a realtime.DialerConfig.
func (c *NaviHireConfig) DialerConfig() realtime.DialerConfig {
	cfg := realtime.DefaultDialerConfig()
	if c.Realtime.HandshakeTimeout > 0 {
		cfg.HandshakeTimeout = c.Realtime.HandshakeTimeout
	}
	if c.Realtime.WriteTimeout > 0 {
		cfg.WriteTimeout = c.Realtime.WriteTimeout
	}
	cfg.Token = c.API.Token
	cfg.UserAgent = version.UserAgent()
	return cfg
}

// SignalsEnabled reports whether the SIGCONT/SIGUSR1 watcher should run.
func (c *NaviHireConfig) SignalsEnabled() bool {
	return c.Environment.WatchSignals == nil || *c.Environment.WatchSignals
}
