// Package main provides the navihire CLI.
//
// navihire talks to a NaviHire backend: it holds a resilient realtime chat
// session over a websocket and exposes the REST endpoints as subcommands.
//
// # Basic Usage
//
// Start a chat session:
//
//	navihire chat --identity user_123
//
// Query the backend:
//
//	navihire health
//	navihire flights search --origin DEL --destination BOM --date 2025-03-01
//	navihire emails templates list --category interview
//
// # Environment Variables
//
//   - NAVIHIRE_CONFIG: Path to configuration file (default: navihire.yaml)
//   - NAVIHIRE_WS_URL: Realtime base URL, overrides realtime.ws_url
//   - NAVIHIRE_API_URL: REST base URL, overrides api.rest_url
//   - NAVIHIRE_IDENTITY: Session identity, overrides session.identity
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/navikenz/navihire/internal/api"
	"github.com/navikenz/navihire/internal/config"
	"github.com/navikenz/navihire/internal/version"
)

const defaultConfigPath = "navihire.yaml"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := buildRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "navihire",
		Short: "NaviHire realtime chat and REST client",
		Long: `navihire connects to a NaviHire backend.

The chat command keeps a realtime session alive across network drops,
idle periods and backend restarts. The remaining commands call the REST
API and print JSON.`,
		Version:      version.String(),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to YAML configuration file (or set NAVIHIRE_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false,
		"Enable debug logging")

	rootCmd.AddCommand(
		buildChatCmd(opts),
		buildHealthCmd(opts),
		buildFlightsCmd(opts),
		buildEmailsCmd(opts),
		buildTestsCmd(opts),
		buildResumesCmd(opts),
		buildVersionCmd(),
	)

	return rootCmd
}

func resolveConfigPath(path string) string {
	if p := strings.TrimSpace(path); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("NAVIHIRE_CONFIG")); p != "" {
		return p
	}
	return defaultConfigPath
}

// load reads the configuration and installs the configured logger.
func (o *rootOptions) load(stderr io.Writer) (*config.NaviHireConfig, *slog.Logger, error) {
	cfg, err := config.LoadAndValidate(resolveConfigPath(o.configPath))
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.Logging, o.debug, stderr)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(cfg config.LoggingConfig, debug bool, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}

	hopts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func newAPIClient(cfg *config.NaviHireConfig, logger *slog.Logger) *api.Client {
	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithUserAgent(version.UserAgent()),
	}
	if cfg.API.Token != "" {
		opts = append(opts, api.WithBearerToken(cfg.API.Token))
	}
	return api.NewClient(cfg.API.RestURL, opts...)
}
