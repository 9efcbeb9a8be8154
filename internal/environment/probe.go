package environment

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Target receives recovery triggers. *realtime.Manager implements it.
type Target interface {
	Visible()
	Online()
	Offline()
}

// Checker reports whether one endpoint is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc is a function adapter for Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// DialChecker reports an address reachable when a TCP connection can be opened.
func DialChecker(addr string) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("dial %s: %w", addr, err)
		}
		return conn.Close()
	})
}

// ProbeConfig holds probe configuration.
type ProbeConfig struct {
	Interval    time.Duration // Probe interval (default: 10s)
	Timeout     time.Duration // Per-check timeout (default: 3s)
	Concurrency int           // Max concurrent checks (default: 4)
}

// DefaultProbeConfig returns sensible defaults.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Interval:    10 * time.Second,
		Timeout:     3 * time.Second,
		Concurrency: 4,
	}
}

// NetworkProbe periodically checks reachability and reports transitions.
//
// The network is considered online when any checker succeeds. The probe starts
// out assuming online: a first successful check reports nothing, and the first
// Offline is reported on the first failed check.
type NetworkProbe struct {
	cfg      ProbeConfig
	checkers []Checker
	target   Target
	logger   *slog.Logger

	online atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNetworkProbe creates a new NetworkProbe.
func NewNetworkProbe(cfg ProbeConfig, target Target, logger *slog.Logger, checkers ...Checker) *NetworkProbe {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultProbeConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}

	p := &NetworkProbe{
		cfg:      cfg,
		checkers: checkers,
		target:   target,
		logger:   logger,
	}
	p.online.Store(true)
	return p
}

// Online reports the last observed reachability.
func (p *NetworkProbe) Online() bool {
	return p.online.Load()
}

// Start begins the probe loop.
func (p *NetworkProbe) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("network probe started",
		"interval", p.cfg.Interval,
		"checkers", len(p.checkers),
	)

	return nil
}

// Stop gracefully shuts down the probe.
func (p *NetworkProbe) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("network probe stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *NetworkProbe) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.probe()
		}
	}
}

// probe runs every checker and reports a transition if reachability changed.
func (p *NetworkProbe) probe() {
	if len(p.checkers) == 0 {
		return
	}

	reachable := p.checkAll()

	if p.ctx.Err() != nil {
		// Cancelled checks say nothing about the network.
		return
	}

	switch {
	case reachable && p.online.CompareAndSwap(false, true):
		p.logger.Info("network online")
		p.target.Online()
	case !reachable && p.online.CompareAndSwap(true, false):
		p.logger.Warn("network offline")
		p.target.Offline()
	}
}

// checkAll runs the checkers concurrently and reports whether any succeeded.
func (p *NetworkProbe) checkAll() bool {
	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)
	var ok, failed atomic.Int64

	for i, c := range p.checkers {
		if p.ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
			defer cancel()

			if err := c.Check(ctx); err != nil {
				p.logger.Debug("reachability check failed", "checker", i, "error", err)
				failed.Add(1)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}

	g.Wait()

	p.logger.Debug("probe cycle complete", "ok", ok.Load(), "failed", failed.Load())
	return ok.Load() > 0
}
