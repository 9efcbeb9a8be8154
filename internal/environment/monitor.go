package environment

import (
	"context"
	"errors"
	"log/slog"
)

// Config holds monitor configuration.
type Config struct {
	Probe        ProbeConfig
	WatchSignals bool
}

// Monitor runs the network probe and the signal watcher for one session.
type Monitor struct {
	probe   *NetworkProbe
	signals *SignalWatcher
	logger  *slog.Logger
}

// NewMonitor creates a Monitor. With no checkers the probe is not started.
func NewMonitor(cfg Config, session Session, logger *slog.Logger, checkers ...Checker) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{logger: logger}
	if len(checkers) > 0 {
		m.probe = NewNetworkProbe(cfg.Probe, session, logger, checkers...)
	}
	if cfg.WatchSignals {
		m.signals = NewSignalWatcher(session, logger)
	}
	return m
}

// Probe returns the network probe, nil when not configured.
func (m *Monitor) Probe() *NetworkProbe {
	return m.probe
}

// Start starts every configured component.
func (m *Monitor) Start(ctx context.Context) error {
	if m.probe != nil {
		if err := m.probe.Start(ctx); err != nil {
			return err
		}
	}
	if m.signals != nil {
		if err := m.signals.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops every component and joins their errors.
func (m *Monitor) Stop(ctx context.Context) error {
	var errs []error
	if m.signals != nil {
		errs = append(errs, m.signals.Stop(ctx))
	}
	if m.probe != nil {
		errs = append(errs, m.probe.Stop(ctx))
	}
	return errors.Join(errs...)
}
