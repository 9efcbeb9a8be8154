package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/navikenz/navihire/internal/archive"
	"github.com/navikenz/navihire/internal/config"
	"github.com/navikenz/navihire/internal/database"
	"github.com/navikenz/navihire/internal/environment"
	"github.com/navikenz/navihire/internal/metrics"
	"github.com/navikenz/navihire/internal/realtime"
	"github.com/navikenz/navihire/internal/router"
)

const shutdownTimeout = 10 * time.Second

type chatOptions struct {
	identity    string
	metricsPort int
	noColor     bool
}

// resolveIdentity picks the flag, then the configured identity (which already
// includes NAVIHIRE_IDENTITY), then a generated one.
func resolveIdentity(flag, configured string) string {
	if id := strings.TrimSpace(flag); id != "" {
		return id
	}
	if id := strings.TrimSpace(configured); id != "" {
		return id
	}
	return "user_" + uuid.NewString()
}

// component is anything with the Start/Stop lifecycle.
type component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// session wires one chat session together.
type session struct {
	cfg      *config.NaviHireConfig
	logger   *slog.Logger
	ui       *terminal
	manager  *realtime.Manager
	router   *router.Router
	monitor  *environment.Monitor
	writer   *archive.Writer
	server   *metrics.Server
	pool     *pgxpool.Pool
	registry *prometheus.Registry
}

func runChat(cmd *cobra.Command, root *rootOptions, opts chatOptions) error {
	cfg, logger, err := root.load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg.Session.Identity = resolveIdentity(opts.identity, cfg.Session.Identity)
	if opts.metricsPort >= 0 {
		cfg.Metrics.Port = opts.metricsPort
	}

	out := cmd.OutOrStdout()
	ui := newTerminal(out, !opts.noColor && isTerminal(out))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cfg, logger, ui)
	if err != nil {
		return err
	}
	return s.run(ctx, cmd.InOrStdin())
}

func newSession(ctx context.Context, cfg *config.NaviHireConfig, logger *slog.Logger, ui *terminal) (*session, error) {
	base := logger
	logger = logger.With("identity", cfg.Session.Identity)
	s := &session{
		cfg:      cfg,
		logger:   logger,
		ui:       ui,
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.router = router.New(router.DefaultConfig(), logger)
	s.router.HandleFunc(router.KindMessage, ui.message)
	s.router.HandleFunc(router.KindTyping, ui.typing)
	s.router.HandleFunc(router.KindError, ui.errorMessage)
	s.router.HandleFunc(router.KindPong, func(ctx context.Context, msg realtime.InboundMessage) {})
	s.router.HandleFunc(router.KindPing, func(ctx context.Context, msg realtime.InboundMessage) {})
	s.router.HandleDefault(router.HandlerFunc(ui.other))

	opts := []realtime.Option{
		realtime.WithLogger(base),
		realtime.WithObserver(metrics.New(s.registry)),
		realtime.WithObserver(s.router),
		realtime.WithObserver(ui),
	}

	if cfg.Archive.Enabled {
		db := cfg.Archive.Database
		logger.Info("connecting to archive database", "host", db.Host, "port", db.Port, "database", db.Name)
		pool, err := database.Connect(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("connect archive database: %w", err)
		}
		if err := archive.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		s.pool = pool
		s.writer = archive.NewWriter(archive.Config{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
			BufferSize:    cfg.Archive.BufferSize,
		}, cfg.Session.Identity, pool, logger)
		opts = append(opts, realtime.WithObserver(s.writer))
	}

	mcfg, err := cfg.ManagerConfig()
	if err != nil {
		s.close()
		return nil, err
	}
	s.manager, err = realtime.NewManager(mcfg, realtime.NewWebsocketDialer(cfg.DialerConfig(), logger), opts...)
	if err != nil {
		s.close()
		return nil, err
	}

	checkers := []environment.Checker{newAPIClient(cfg, logger)}
	for _, addr := range cfg.Environment.ProbeAddrs {
		checkers = append(checkers, environment.DialChecker(addr))
	}
	s.monitor = environment.NewMonitor(environment.Config{
		Probe: environment.ProbeConfig{
			Interval:    cfg.Environment.ProbeInterval,
			Timeout:     cfg.Environment.ProbeTimeout,
			Concurrency: cfg.Environment.ProbeConcurrency,
		},
		WatchSignals: cfg.SignalsEnabled(),
	}, s.manager, logger, checkers...)

	if cfg.Metrics.Port > 0 {
		addr := net.JoinHostPort("", strconv.Itoa(cfg.Metrics.Port))
		s.server = metrics.NewServer(addr, cfg.Metrics.Path, s.registry, s.health, logger)
	}
	return s, nil
}

// components returns the lifecycle components in start order.
func (s *session) components() []component {
	list := []component{s.router}
	if s.writer != nil {
		list = append(list, s.writer)
	}
	if s.server != nil {
		list = append(list, s.server)
	}
	return append(list, s.manager, s.monitor)
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	defer s.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var started []component
	for _, c := range s.components() {
		if err := c.Start(ctx); err != nil {
			s.shutdown(started)
			return err
		}
		started = append(started, c)
	}

	s.ui.info(fmt.Sprintf("chatting as %s (%s)", s.cfg.Session.Identity, chatHelp))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.readInput(gctx, in)
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(started)
	})
	return g.Wait()
}

// shutdown stops components in reverse start order.
func (s *session) shutdown(started []component) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		if err := started[i].Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.writer != nil {
		stats := s.writer.Stats()
		s.logger.Info("archive summary", "inserted", stats.Inserts, "conflicts", stats.Conflicts, "errors", stats.Errors, "evicted", stats.Evicted)
	}
	return errors.Join(errs...)
}

func (s *session) close() {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}

// readInput forwards stdin lines until /quit, EOF or cancellation.
func (s *session) readInput(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		case line := <-lines:
			if quit := s.handleLine(line); quit {
				return nil
			}
		}
	}
}

// handleLine acts on one line of input and reports whether to quit.
func (s *session) handleLine(line string) bool {
	cmd, text := parseLine(line)
	switch cmd {
	case lineSend:
		if err := s.manager.Send(text); err != nil {
			s.ui.info("not sent: " + err.Error())
		}
	case lineReconnect:
		s.manager.Reconnect()
	case lineStatus:
		s.ui.snapshot(s.manager.Identity(), s.manager.Snapshot())
	case lineHelp:
		s.ui.info(chatHelp)
	case lineUnknown:
		s.ui.info("unknown command " + text + "; " + chatHelp)
	case lineQuit:
		return true
	}
	return false
}

// health backs the /health endpoint.
func (s *session) health(ctx context.Context) (any, error) {
	snap := s.manager.Snapshot()
	detail := map[string]any{
		"identity": s.manager.Identity(),
		"realtime": snap.Status.String(),
		"attempts": snap.Attempts,
		"messages": snap.Messages,
	}
	if snap.LastActivity != nil {
		detail["last_activity"] = snap.LastActivity.UTC().Format(time.RFC3339)
	}
	if probe := s.monitor.Probe(); probe != nil {
		detail["online"] = probe.Online()
	}
	rs := s.router.Stats()
	detail["routed"] = rs.Routed
	if s.writer != nil {
		ws := s.writer.Stats()
		detail["archived"] = ws.Inserts
		detail["archive_errors"] = ws.Errors
	}
	if s.pool != nil {
		if err := s.pool.Ping(ctx); err != nil {
			return detail, fmt.Errorf("archive database: %w", err)
		}
	}
	if snap.Status == realtime.StatusDisconnected {
		return detail, errors.New("realtime session disconnected")
	}
	return detail, nil
}
