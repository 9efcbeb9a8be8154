package router

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/navikenz/navihire/internal/realtime"
)

// Router queues inbound messages and dispatches them by kind. It implements
// realtime.Observer; only MessageReceived does any work.
type Router struct {
	realtime.NopObserver

	cfg    Config
	logger *slog.Logger

	input chan realtime.InboundMessage

	mu       sync.RWMutex
	handlers map[Kind][]Handler
	fallback []Handler

	typing atomic.Bool

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// New creates a Router.
func New(cfg Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	return &Router{
		cfg:      cfg,
		logger:   logger.With("component", "router"),
		input:    make(chan realtime.InboundMessage, cfg.BufferSize),
		handlers: make(map[Kind][]Handler),
		stats:    Stats{ByKind: make(map[Kind]int64)},
	}
}

// Handle registers h for messages of the given kind.
func (r *Router) Handle(kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], h)
}

// HandleFunc registers f for messages of the given kind.
func (r *Router) HandleFunc(kind Kind, f func(ctx context.Context, msg realtime.InboundMessage)) {
	r.Handle(kind, HandlerFunc(f))
}

// HandleDefault registers h for messages whose kind has no handler.
func (r *Router) HandleDefault(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = append(r.fallback, h)
}

// MessageReceived queues msg for routing. It never blocks; a full queue
// drops the message.
func (r *Router) MessageReceived(msg realtime.InboundMessage) {
	select {
	case r.input <- msg:
	default:
		r.statsMu.Lock()
		r.stats.Dropped++
		r.statsMu.Unlock()
		r.logger.Warn("router queue full, dropping message", "type", msg.Type)
	}
}

// Typing reports whether the last routed chat event was a typing indicator.
func (r *Router) Typing() bool {
	return r.typing.Load()
}

// Start begins routing messages.
func (r *Router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("message router started", "buffer", r.cfg.BufferSize)
	return nil
}

// Stop shuts down the router. Messages still queued are routed first.
func (r *Router) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("message router stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("message router stop timed out")
		return ctx.Err()
	}
}

// Stats returns current statistics.
func (r *Router) Stats() Stats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()

	s := r.stats
	s.ByKind = make(map[Kind]int64, len(r.stats.ByKind))
	for k, v := range r.stats.ByKind {
		s.ByKind[k] = v
	}
	return s
}

func (r *Router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			r.drain()
			return
		case msg := <-r.input:
			r.route(r.ctx, msg)
		}
	}
}

// drain routes whatever is queued at shutdown.
func (r *Router) drain() {
	ctx := context.WithoutCancel(r.ctx)
	for {
		select {
		case msg := <-r.input:
			r.route(ctx, msg)
		default:
			return
		}
	}
}

// route dispatches a single message.
func (r *Router) route(ctx context.Context, msg realtime.InboundMessage) {
	kind := KindOf(msg)

	switch kind {
	case KindTyping:
		r.typing.Store(true)
	case KindMessage, KindError:
		r.typing.Store(false)
	}

	r.mu.RLock()
	handlers := r.handlers[kind]
	if len(handlers) == 0 {
		handlers = r.fallback
	}
	r.mu.RUnlock()

	r.statsMu.Lock()
	r.stats.Received++
	r.stats.ByKind[kind]++
	if len(handlers) == 0 {
		r.stats.Unhandled++
	} else {
		r.stats.Routed++
	}
	r.statsMu.Unlock()

	if len(handlers) == 0 {
		r.logger.Debug("no handler for message", "type", msg.Type)
		return
	}
	for _, h := range handlers {
		h.Handle(ctx, msg)
	}
}
