package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DialerConfig configures the websocket transport.
type DialerConfig struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadLimit        int64  // Max inbound frame size in bytes (0 = library default)
	Token            string // Optional bearer token sent on the upgrade request
	UserAgent        string
}

// DefaultDialerConfig returns the transport defaults.
func DefaultDialerConfig() DialerConfig {
	return DialerConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// WebsocketDialer opens transports over gorilla/websocket.
type WebsocketDialer struct {
	cfg    DialerConfig
	logger *slog.Logger
}

// NewWebsocketDialer creates a websocket Dialer.
func NewWebsocketDialer(cfg DialerConfig, logger *slog.Logger) *WebsocketDialer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultDialerConfig().HandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultDialerConfig().WriteTimeout
	}
	return &WebsocketDialer{cfg: cfg, logger: logger}
}

// Dial starts the handshake in the background and returns immediately.
func (d *WebsocketDialer) Dial(ctx context.Context, rawURL string, h TransportHandler) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &wsTransport{
		cfg:    d.cfg,
		logger: d.logger,
		h:      h,
		cancel: cancel,
	}
	go t.open(ctx, rawURL)

	return t, nil
}

// wsTransport is one websocket connection.
type wsTransport struct {
	cfg    DialerConfig
	logger *slog.Logger
	h      TransportHandler
	cancel context.CancelFunc // Aborts an in-flight handshake

	// Write serialization
	writeMu sync.Mutex

	// State
	mu          sync.Mutex
	raw         net.Conn // Socket under a handshake still in progress
	conn        *websocket.Conn
	closing     bool
	closeCode   int
	closeReason string
}

func (t *wsTransport) open(ctx context.Context, rawURL string) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if t.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+t.cfg.Token)
	}
	if t.cfg.UserAgent != "" {
		header.Set("User-Agent", t.cfg.UserAgent)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: t.cfg.HandshakeTimeout,
		NetDialContext:   t.dialNet,
	}

	conn, resp, err := dialer.DialContext(ctx, rawURL, header)
	t.cancel()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.mu.Lock()
		closing, code, reason := t.closing, t.closeCode, t.closeReason
		t.mu.Unlock()
		if closing {
			// Handshake aborted by Close.
			t.h.OnClose(code, reason)
			return
		}
		t.h.OnError(fmt.Errorf("dial: %w", err))
		t.h.OnClose(CloseAbnormal, "")
		return
	}
	if t.cfg.ReadLimit > 0 {
		conn.SetReadLimit(t.cfg.ReadLimit)
	}

	t.mu.Lock()
	if t.closing {
		// Closed while the handshake was in flight.
		code, reason := t.closeCode, t.closeReason
		t.mu.Unlock()
		t.writeClose(conn, code, reason)
		conn.Close()
		t.h.OnClose(code, reason)
		return
	}
	t.conn = conn
	t.raw = nil
	t.mu.Unlock()

	t.logger.Debug("websocket connected", "url", rawURL)
	t.h.OnOpen()
	t.readLoop(conn)
}

// dialNet opens the socket for the handshake and keeps it so Close can abort
// an upgrade the server never answers.
func (t *wsTransport) dialNet(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closing {
		c.Close()
		return nil, net.ErrClosed
	}
	t.raw = c
	return c, nil
}

// readLoop delivers frames until the connection dies, then reports the close.
func (t *wsTransport) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err == nil {
			t.h.OnMessage(data)
			continue
		}

		t.mu.Lock()
		closing, code, reason := t.closing, t.closeCode, t.closeReason
		t.mu.Unlock()

		if closing {
			// Local close: report the code we sent.
			t.h.OnClose(code, reason)
			return
		}

		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			t.h.OnClose(ce.Code, ce.Text)
			return
		}
		t.h.OnError(err)
		t.h.OnClose(CloseAbnormal, "")
		return
	}
}

// Send writes one text frame.
func (t *wsTransport) Send(data []byte) error {
	t.mu.Lock()
	conn, closing := t.conn, t.closing
	t.mu.Unlock()
	if conn == nil || closing {
		return ErrNotConnected
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame and tears the connection down. The read loop then
// reports OnClose with the given code.
func (t *wsTransport) Close(code int, reason string) error {
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		return nil
	}
	t.closing = true
	t.closeCode = code
	t.closeReason = reason
	conn, raw := t.conn, t.raw
	t.mu.Unlock()

	t.cancel()
	if conn == nil {
		if raw != nil {
			raw.Close()
		}
		return nil
	}
	t.writeClose(conn, code, reason)
	return conn.Close()
}

func (t *wsTransport) writeClose(conn *websocket.Conn, code int, reason string) {
	err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(t.cfg.WriteTimeout),
	)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		t.logger.Debug("failed to send close frame", "error", err)
	}
}
