package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Errors
var (
	ErrClosed         = errors.New("manager closed")
	ErrEmptyMessage   = errors.New("empty message")
	ErrNotConnected   = errors.New("not connected")
	ErrNotStarted     = errors.New("manager not started")
	ErrAlreadyStarted = errors.New("already started")
	ErrNoIdentity     = errors.New("identity is required")
)

// Close codes used on the wire (RFC 6455).
const (
	CloseNormalClosure = 1000
	CloseAbnormal      = 1006
)

// Close reasons sent by the manager.
const (
	ReasonManualReconnect = "Manual reconnect"
	ReasonIdleTimeout     = "Idle timeout"
	ReasonNetworkOffline  = "Network offline"
	ReasonDisposed        = "Component unmount"
)

// Status is the connection state exposed to the hosting application.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disconnected":
		return StatusDisconnected, nil
	case "connecting":
		return StatusConnecting, nil
	case "connected":
		return StatusConnected, nil
	case "reconnecting":
		return StatusReconnecting, nil
	}
	return StatusDisconnected, fmt.Errorf("unknown status %q", s)
}

// InboundMessage is a decoded frame pushed by the server.
//
// The server is free to send any JSON object; the well-known fields are lifted
// out and every field is kept in Fields.
type InboundMessage struct {
	Type         string
	Content      string
	Agent        string
	TaskProgress map[string]any
	Fields       map[string]any
	Raw          json.RawMessage
	ReceivedAt   time.Time // Local time the frame was decoded
}

// OutboundEnvelope is the wire shape of a user-originated send.
type OutboundEnvelope struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // Epoch milliseconds
	UserID    string `json:"userId"`
}

// Ping is the heartbeat envelope.
type Ping struct {
	Type      string `json:"type"` // Always "ping"
	Timestamp int64  `json:"timestamp"`
}

// decodeInbound parses a frame. Anything that is not a JSON object is rejected.
func decodeInbound(data []byte, receivedAt time.Time) (InboundMessage, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return InboundMessage{}, err
	}
	if fields == nil {
		return InboundMessage{}, errors.New("frame is not a json object")
	}

	msg := InboundMessage{
		Fields:     fields,
		Raw:        append(json.RawMessage(nil), data...),
		ReceivedAt: receivedAt,
	}
	msg.Type, _ = fields["type"].(string)
	msg.Content, _ = fields["content"].(string)
	msg.Agent, _ = fields["agent"].(string)
	msg.TaskProgress, _ = fields["task_progress"].(map[string]any)
	return msg, nil
}

// Config configures a Manager.
type Config struct {
	URL                  string        // Full channel URL, see BuildURL
	Identity             string        // Session identity, also tagged on outbound envelopes
	ReconnectBaseDelay   time.Duration // Nth retry waits ReconnectBaseDelay * N
	MaxReconnectAttempts int           // Automatic retries before giving up
	HeartbeatInterval    time.Duration // Ping interval, also the idle-check tick
	IdleTimeout          time.Duration // Max quiet period before a proactive refresh
	SettleDelay          time.Duration // Delay between a manual close and the next open
	MessageLogLimit      int           // Max retained inbound messages (0 = unbounded)
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		ReconnectBaseDelay:   3 * time.Second,
		MaxReconnectAttempts: 5,
		HeartbeatInterval:    30 * time.Second,
		IdleTimeout:          5 * time.Minute,
		SettleDelay:          100 * time.Millisecond,
		MessageLogLimit:      0,
	}
}

func (c Config) validate() error {
	if c.URL == "" {
		return errors.New("realtime: url is required")
	}
	if c.Identity == "" {
		return ErrNoIdentity
	}
	if c.ReconnectBaseDelay <= 0 {
		return errors.New("realtime: reconnect base delay must be > 0")
	}
	if c.MaxReconnectAttempts < 1 {
		return errors.New("realtime: max reconnect attempts must be >= 1")
	}
	if c.HeartbeatInterval <= 0 {
		return errors.New("realtime: heartbeat interval must be > 0")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("realtime: idle timeout must be > 0")
	}
	if c.MessageLogLimit < 0 {
		return errors.New("realtime: message log limit must be >= 0")
	}
	return nil
}

// RetryDelay returns the wait before the given automatic retry (attempt starts at 1).
func (c Config) RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return c.ReconnectBaseDelay * time.Duration(attempt)
}

// BuildURL composes the channel address: <base>/ws/chat/<identity>.
func BuildURL(base, identity string) (string, error) {
	if identity == "" {
		return "", ErrNoIdentity
	}
	if identity == "." || identity == ".." {
		return "", fmt.Errorf("invalid identity %q", identity)
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	// The identity is one opaque segment; "/" inside it stays escaped.
	u = u.JoinPath("ws", "chat")
	escaped := u.EscapedPath()
	u.Path += "/" + identity
	u.RawPath = escaped + "/" + url.PathEscape(identity)
	return u.String(), nil
}

// Snapshot is a point-in-time, read-only view of the manager.
type Snapshot struct {
	Status       Status
	Attempts     int
	LastActivity *time.Time
	Messages     int
}
