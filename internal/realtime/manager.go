package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const eventBufferSize = 256

// Manager owns the logical connection for one session identity.
type Manager struct {
	cfg    Config
	dialer Dialer
	clock  Clock
	obs    Observer
	logger *slog.Logger

	events chan event
	stop   chan struct{} // closed by Stop
	done   chan struct{} // closed when the event loop exits

	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
	closed  atomic.Bool
	stopMu  sync.Once

	// Owned by the event goroutine. Writes happen under mu so the accessors can
	// read a consistent view from other goroutines.
	mu           sync.RWMutex
	status       Status
	attempts     int
	lastActivity time.Time
	messages     []InboundMessage

	conn           *liveConn
	retryTimer     *managedTimer
	heartbeatTimer *managedTimer
	settleTimer    *managedTimer
	seq            uint64 // Transport and timer tokens
}

// liveConn is the transport currently owned by the manager.
type liveConn struct {
	id uint64
	t  Transport
}

type managedTimer struct {
	token uint64
	timer Timer
}

func (t *managedTimer) stop() {
	if t != nil {
		t.timer.Stop()
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o == nil {
			return
		}
		if existing, ok := m.obs.(Observers); ok {
			m.obs = append(existing, o)
			return
		}
		m.obs = Observers{o}
	}
}

// NewManager creates a Connection Manager. Nothing is dialed until Start.
func NewManager(cfg Config, dialer Dialer, opts ...Option) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if dialer == nil {
		return nil, errors.New("realtime: dialer is required")
	}

	m := &Manager{
		cfg:    cfg,
		dialer: dialer,
		clock:  SystemClock(),
		obs:    NopObserver{},
		logger: slog.Default(),
		events: make(chan event, eventBufferSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		status: StatusDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("identity", cfg.Identity)

	return m, nil
}

// Start runs the event loop and begins the first connect attempt.
// Cancelling ctx disposes the manager just like Stop.
func (m *Manager) Start(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	go m.run()

	m.logger.Info("connection manager started", "url", m.cfg.URL)
	return nil
}

// Stop disposes the manager: timers are cancelled and a live transport is closed
// with a normal closure. No observer is called once Stop returns.
func (m *Manager) Stop(ctx context.Context) error {
	m.stopMu.Do(func() {
		m.closed.Store(true)
		close(m.stop)
	})

	if !m.started.Load() {
		return nil
	}

	select {
	case <-m.done:
		m.logger.Info("connection manager stopped")
		return nil
	case <-ctx.Done():
		m.logger.Warn("connection manager stop timed out")
		return ctx.Err()
	}
}

// Send transmits text when connected. When not connected the call only triggers
// a connect attempt; the text is dropped and must be sent again once connected.
func (m *Manager) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.started.Load() {
		return ErrNotStarted
	}
	if !m.post(event{kind: evSend, text: text}) {
		return ErrClosed
	}
	return nil
}

// Reconnect drops the current transport and connects again after the settle delay.
// The attempt counter is reset and any pending automatic retry is cancelled.
func (m *Manager) Reconnect() { m.post(event{kind: evReconnect}) }

// Visible reports that the host became visible (reconnects unless connected).
func (m *Manager) Visible() { m.post(event{kind: evVisible}) }

// Online reports that the network came back (always reconnects).
func (m *Manager) Online() { m.post(event{kind: evOnline}) }

// Offline reports that the network went away (forces disconnected, no retry).
func (m *Manager) Offline() { m.post(event{kind: evOffline}) }

// Identity returns the session identity.
func (m *Manager) Identity() string { return m.cfg.Identity }

// Status returns the current status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Attempts returns the number of automatic retries since the last successful open.
func (m *Manager) Attempts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attempts
}

// LastActivity returns the last inbound message or successful send time.
// The bool is false before any activity.
func (m *Manager) LastActivity() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastActivity, !m.lastActivity.IsZero()
}

// Messages returns a copy of the inbound message log in receipt order.
func (m *Manager) Messages() []InboundMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]InboundMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Snapshot returns status, attempts, activity and log length in one read.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{
		Status:   m.status,
		Attempts: m.attempts,
		Messages: len(m.messages),
	}
	if !m.lastActivity.IsZero() {
		at := m.lastActivity
		s.LastActivity = &at
	}
	return s
}

// post queues an event for the loop. It reports false once the loop is gone.
func (m *Manager) post(ev event) bool {
	if !m.started.Load() {
		return false
	}
	select {
	case m.events <- ev:
		return true
	case <-m.done:
		return false
	}
}

// run is the event loop. Every state change happens here.
func (m *Manager) run() {
	defer close(m.done)
	defer m.cancel()

	m.connect()

	for {
		select {
		case <-m.stop:
			m.dispose()
			return
		case <-m.ctx.Done():
			m.dispose()
			return
		case ev := <-m.events:
			m.dispatch(ev)
		}
	}
}

// dispatch applies one event to the state machine.
func (m *Manager) dispatch(ev event) {
	switch ev.kind {
	case evOpen:
		if m.isCurrent(ev.conn) {
			m.handleOpen()
		}

	case evFrame:
		if m.isCurrent(ev.conn) {
			m.handleFrame(ev.data)
		}

	case evError:
		if m.isCurrent(ev.conn) {
			m.logger.Warn("transport error", "conn", ev.conn, "error", ev.err)
		}

	case evClose:
		if m.isCurrent(ev.conn) {
			m.handleClose(ev.code, ev.reason)
		}

	case evRetry:
		if m.retryTimer != nil && m.retryTimer.token == ev.timer {
			m.retryTimer = nil
			m.logger.Info("attempting reconnection", "attempt", m.attempts)
			m.connect()
		}

	case evHeartbeat:
		if m.heartbeatTimer != nil && m.heartbeatTimer.token == ev.timer {
			m.heartbeatTimer = nil
			m.handleHeartbeat()
		}

	case evSettle:
		if m.settleTimer != nil && m.settleTimer.token == ev.timer {
			m.settleTimer = nil
			m.connect()
		}

	case evSend:
		m.handleSend(ev.text)

	case evReconnect:
		m.manualReconnect("manual")

	case evVisible:
		if m.status != StatusConnected {
			m.manualReconnect("visible")
		}

	case evOnline:
		m.manualReconnect("online")

	case evOffline:
		m.logger.Info("network offline")
		m.cancelRetry()
		m.cancelSettle()
		m.dropTransport(ReasonNetworkOffline)
		m.setStatus(StatusDisconnected)

	case evBarrier:
		close(ev.ack)
	}
}

// connect opens a transport unless one is already open or opening. A pending
// retry or settle timer is superseded by the attempt.
func (m *Manager) connect() {
	if m.conn != nil {
		return
	}
	m.cancelRetry()
	m.cancelSettle()
	m.setStatus(StatusConnecting)

	m.seq++
	id := m.seq
	t, err := m.dialer.Dial(m.ctx, m.cfg.URL, m.handlerFor(id))
	if err != nil {
		m.logger.Warn("failed to open transport", "error", err)
		m.scheduleRetry()
		return
	}
	m.conn = &liveConn{id: id, t: t}
	m.logger.Debug("opening transport", "conn", id, "url", m.cfg.URL)
}

// scheduleRetry arms the next automatic retry, or gives up at the cap.
func (m *Manager) scheduleRetry() {
	m.cancelRetry()

	if m.attempts >= m.cfg.MaxReconnectAttempts {
		m.logger.Warn("max reconnection attempts reached", "attempts", m.attempts)
		m.setStatus(StatusDisconnected)
		return
	}

	m.mu.Lock()
	m.attempts++
	attempt := m.attempts
	m.mu.Unlock()

	delay := m.cfg.RetryDelay(attempt)
	m.setStatus(StatusReconnecting)
	m.retryTimer = m.arm(evRetry, delay)
	m.obs.RetryScheduled(attempt, delay)

	m.logger.Info("scheduling reconnect",
		"attempt", attempt,
		"max_attempts", m.cfg.MaxReconnectAttempts,
		"delay", delay,
	)
}

// manualReconnect is shared by Reconnect and the recovery triggers.
func (m *Manager) manualReconnect(trigger string) {
	m.logger.Info("reconnection triggered", "trigger", trigger)

	m.cancelRetry()
	m.cancelSettle()
	m.mu.Lock()
	m.attempts = 0
	m.mu.Unlock()
	m.dropTransport(ReasonManualReconnect)
	m.setStatus(StatusConnecting)
	m.settleTimer = m.arm(evSettle, m.cfg.SettleDelay)
}

func (m *Manager) handleOpen() {
	m.mu.Lock()
	m.attempts = 0
	m.lastActivity = m.clock.Now()
	m.mu.Unlock()

	m.setStatus(StatusConnected)
	m.startHeartbeat()
	m.logger.Info("transport connected", "conn", m.conn.id)
}

func (m *Manager) handleFrame(data []byte) {
	now := m.clock.Now()
	msg, err := decodeInbound(data, now)
	if err != nil {
		m.logger.Warn("dropping malformed frame", "error", err, "bytes", len(data))
		m.obs.ParseFailed(data, err)
		return
	}

	m.mu.Lock()
	if limit := m.cfg.MessageLogLimit; limit > 0 && len(m.messages) >= limit {
		n := copy(m.messages, m.messages[len(m.messages)-limit+1:])
		m.messages = m.messages[:n]
	}
	m.messages = append(m.messages, msg)
	m.lastActivity = now
	m.mu.Unlock()

	m.logger.Debug("message received", "type", msg.Type)
	m.obs.MessageReceived(msg)
}

func (m *Manager) handleClose(code int, reason string) {
	m.logger.Info("transport closed", "conn", m.conn.id, "code", code, "reason", reason)

	m.conn = nil
	m.stopHeartbeat()

	if code == CloseNormalClosure {
		m.setStatus(StatusDisconnected)
		return
	}
	m.scheduleRetry()
}

func (m *Manager) handleSend(text string) {
	if m.status != StatusConnected || m.conn == nil {
		m.logger.Warn("not connected, attempting to reconnect", "status", m.status)
		m.obs.MessageDropped(m.status)
		m.connect()
		return
	}

	now := m.clock.Now()
	data, err := json.Marshal(OutboundEnvelope{
		Message:   text,
		Timestamp: now.UnixMilli(),
		UserID:    m.cfg.Identity,
	})
	if err != nil {
		m.logger.Error("encode envelope", "error", err)
		return
	}
	if err := m.conn.t.Send(data); err != nil {
		// The transport reports its own close; nothing to retry here.
		m.logger.Warn("send failed", "error", err)
		m.obs.MessageDropped(m.status)
		return
	}

	m.mu.Lock()
	m.lastActivity = now
	m.mu.Unlock()

	m.obs.MessageSent("message")
}

// handleHeartbeat pings and checks for an idle connection. Idle detection only
// runs on this tick, so it fires within one heartbeat interval past the threshold.
func (m *Manager) handleHeartbeat() {
	if m.status != StatusConnected || m.conn == nil {
		return
	}

	now := m.clock.Now()
	data, _ := json.Marshal(Ping{Type: "ping", Timestamp: now.UnixMilli()})
	if err := m.conn.t.Send(data); err != nil {
		m.logger.Debug("failed to send heartbeat", "error", err)
	} else {
		m.obs.MessageSent("ping")
	}

	if idle := now.Sub(m.lastActivity); idle > m.cfg.IdleTimeout {
		m.logger.Info("connection idle, refreshing", "idle", idle, "timeout", m.cfg.IdleTimeout)
		m.dropTransport(ReasonIdleTimeout)
		m.connect()
		return
	}

	m.startHeartbeat()
}

// dispose releases every timer and the transport without notifying observers.
func (m *Manager) dispose() {
	m.cancelRetry()
	m.cancelSettle()
	m.dropTransport(ReasonDisposed)

	m.mu.Lock()
	m.status = StatusDisconnected
	m.mu.Unlock()
}

// dropTransport detaches and closes the current transport. Its late callbacks
// are ignored because it is no longer current.
func (m *Manager) dropTransport(reason string) {
	m.stopHeartbeat()
	if m.conn == nil {
		return
	}
	c := m.conn
	m.conn = nil
	if err := c.t.Close(CloseNormalClosure, reason); err != nil {
		m.logger.Debug("close transport", "conn", c.id, "error", err)
	}
}

func (m *Manager) setStatus(to Status) {
	m.mu.Lock()
	from := m.status
	m.status = to
	m.mu.Unlock()

	if from == to {
		return
	}
	m.logger.Debug("status changed", "from", from, "to", to)
	m.obs.StatusChanged(from, to)
}

func (m *Manager) isCurrent(id uint64) bool {
	return m.conn != nil && m.conn.id == id
}

func (m *Manager) startHeartbeat() {
	m.stopHeartbeat()
	m.heartbeatTimer = m.arm(evHeartbeat, m.cfg.HeartbeatInterval)
}

func (m *Manager) stopHeartbeat() {
	m.heartbeatTimer.stop()
	m.heartbeatTimer = nil
}

func (m *Manager) cancelRetry() {
	m.retryTimer.stop()
	m.retryTimer = nil
}

func (m *Manager) cancelSettle() {
	m.settleTimer.stop()
	m.settleTimer = nil
}

// arm starts a timer that posts kind back to the loop when it fires.
func (m *Manager) arm(kind eventKind, d time.Duration) *managedTimer {
	m.seq++
	token := m.seq
	t := m.clock.AfterFunc(d, func() {
		m.post(event{kind: kind, timer: token})
	})
	return &managedTimer{token: token, timer: t}
}

// handlerFor binds transport callbacks to a transport id.
func (m *Manager) handlerFor(id uint64) TransportHandler {
	return TransportHandler{
		OnOpen: func() {
			m.post(event{kind: evOpen, conn: id})
		},
		OnMessage: func(data []byte) {
			m.post(event{kind: evFrame, conn: id, data: data})
		},
		OnClose: func(code int, reason string) {
			m.post(event{kind: evClose, conn: id, code: code, reason: reason})
		},
		OnError: func(err error) {
			m.post(event{kind: evError, conn: id, err: err})
		},
	}
}

// sync waits until every event queued before it has been handled.
// It reports false if the loop is gone.
func (m *Manager) sync() bool {
	ack := make(chan struct{})
	if !m.post(event{kind: evBarrier, ack: ack}) {
		return false
	}
	select {
	case <-ack:
		return true
	case <-m.done:
		return false
	}
}
