package environment

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
)

// Reconnector restarts a session connection.
type Reconnector interface {
	Reconnect()
}

// Session is everything the monitor drives.
type Session interface {
	Target
	Reconnector
}

// SignalWatcher maps process signals to recovery triggers.
type SignalWatcher struct {
	session Session
	logger  *slog.Logger

	notify func(c chan<- os.Signal, sig ...os.Signal)
	stop   func(c chan<- os.Signal)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSignalWatcher creates a SignalWatcher.
func NewSignalWatcher(session Session, logger *slog.Logger) *SignalWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalWatcher{
		session: session,
		logger:  logger,
		notify:  signal.Notify,
		stop:    signal.Stop,
	}
}

// Start subscribes to the watched signals.
func (w *SignalWatcher) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	if len(watchedSignals) == 0 {
		w.logger.Debug("no signals to watch on this platform")
		return nil
	}

	ch := make(chan os.Signal, 4)
	w.notify(ch, watchedSignals...)

	w.wg.Add(1)
	go w.run(ch)

	w.logger.Info("signal watcher started", "signals", watchedSignals)
	return nil
}

// Stop unsubscribes and waits for the watcher goroutine.
func (w *SignalWatcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *SignalWatcher) run(ch chan os.Signal) {
	defer w.wg.Done()
	defer w.stop(ch)

	for {
		select {
		case <-w.ctx.Done():
			return
		case sig := <-ch:
			w.logger.Debug("signal received", "signal", sig)
			w.handle(sig)
		}
	}
}
