package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL              = "http://localhost:8000"
	DefaultWSURL                = "ws://localhost:8000"
	DefaultAPITimeout           = 30 * time.Second
	DefaultMaxRetries           = 3
	DefaultRetryBackoff         = 1 * time.Second
	DefaultReconnectBaseDelay   = 3 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultIdleTimeout          = 5 * time.Minute
	DefaultSettleDelay          = 100 * time.Millisecond
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultProbeInterval        = 10 * time.Second
	DefaultProbeTimeout         = 3 * time.Second
	DefaultProbeConcurrency     = 4
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 4
	DefaultMinConns             = 1
	DefaultBatchSize            = 100
	DefaultFlushInterval        = 1 * time.Second
	DefaultBufferSize           = 1000
	DefaultMetricsPath          = "/metrics"
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
)

func (c *NaviHireConfig) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Realtime defaults
	r := &c.Realtime
	if r.WSURL == "" {
		r.WSURL = DefaultWSURL
	}
	if r.ReconnectBaseDelay == 0 {
		r.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if r.MaxReconnectAttempts == 0 {
		r.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if r.HeartbeatInterval == 0 {
		r.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if r.IdleTimeout == 0 {
		r.IdleTimeout = DefaultIdleTimeout
	}
	if r.SettleDelay == 0 {
		r.SettleDelay = DefaultSettleDelay
	}
	if r.HandshakeTimeout == 0 {
		r.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if r.WriteTimeout == 0 {
		r.WriteTimeout = DefaultWriteTimeout
	}

	// Environment defaults
	e := &c.Environment
	if e.ProbeInterval == 0 {
		e.ProbeInterval = DefaultProbeInterval
	}
	if e.ProbeTimeout == 0 {
		e.ProbeTimeout = DefaultProbeTimeout
	}
	if e.ProbeConcurrency == 0 {
		e.ProbeConcurrency = DefaultProbeConcurrency
	}

	// Archive defaults
	applyDBDefaults(&c.Archive.Database)
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = DefaultBatchSize
	}
	if c.Archive.FlushInterval == 0 {
		c.Archive.FlushInterval = DefaultFlushInterval
	}
	if c.Archive.BufferSize == 0 {
		c.Archive.BufferSize = DefaultBufferSize
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
