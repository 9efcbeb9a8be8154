package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the file.
const (
	EnvWSURL    = "NAVIHIRE_WS_URL"
	EnvAPIURL   = "NAVIHIRE_API_URL"
	EnvIdentity = "NAVIHIRE_IDENTITY"
)

// Load reads a YAML config file, expands environment variables and applies
// environment overrides. An empty path skips the file.
func Load(path string) (*NaviHireConfig, error) {
	var cfg NaviHireConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// Expand ${VAR} environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	cfg.applyEnv()
	return &cfg, nil
}

// LoadOptional is Load, except a missing file yields an empty config.
func LoadOptional(path string) (*NaviHireConfig, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Load("")
	}
	return cfg, err
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*NaviHireConfig, error) {
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*NaviHireConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *NaviHireConfig) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvWSURL)); v != "" {
		c.Realtime.WSURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.RestURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIdentity)); v != "" {
		c.Session.Identity = v
	}
}
