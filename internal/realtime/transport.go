package realtime

import "context"

// TransportHandler receives transport callbacks.
//
// A transport must call OnOpen at most once, then any number of OnMessage, and
// finally OnClose exactly once (also when the open attempt fails). OnError may
// precede OnClose. Callbacks may come from any goroutine.
type TransportHandler struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnClose   func(code int, reason string)
	OnError   func(err error)
}

// Transport is one physical full-duplex connection.
type Transport interface {
	// Send writes one text frame. It fails if the transport is not open.
	Send(data []byte) error

	// Close starts a close handshake with the given code and reason. Safe to call
	// more than once and before the transport opened.
	Close(code int, reason string) error
}

// Dialer opens transports.
//
// Dial must not block on the network: it returns as soon as the attempt is under
// way and reports the outcome through the handler. An error return means the
// attempt could not even be started (bad URL, closed dialer) and no callbacks
// will follow.
type Dialer interface {
	Dial(ctx context.Context, url string, h TransportHandler) (Transport, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, url string, h TransportHandler) (Transport, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, url string, h TransportHandler) (Transport, error) {
	return f(ctx, url, h)
}
