package router

import (
	"context"

	"github.com/navikenz/navihire/internal/realtime"
)

// Kind is the routing class of an inbound message.
type Kind string

// Message kinds the chat channel emits. KindOther covers any other type tag.
const (
	KindMessage Kind = "message"
	KindTyping  Kind = "typing"
	KindError   Kind = "error"
	KindPong    Kind = "pong"
	KindPing    Kind = "ping"
	KindOther   Kind = "other"
)

// KindOf classifies a message by its type tag.
func KindOf(msg realtime.InboundMessage) Kind {
	switch k := Kind(msg.Type); k {
	case KindMessage, KindTyping, KindError, KindPong, KindPing:
		return k
	default:
		return KindOther
	}
}

// Handler processes routed messages. Handlers run on the router goroutine.
type Handler interface {
	Handle(ctx context.Context, msg realtime.InboundMessage)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, msg realtime.InboundMessage)

func (f HandlerFunc) Handle(ctx context.Context, msg realtime.InboundMessage) {
	f(ctx, msg)
}

// Config holds configuration for the Router.
type Config struct {
	BufferSize int // Default: 256
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{BufferSize: 256}
}

// Stats contains runtime statistics.
type Stats struct {
	Received  int64
	Routed    int64
	Unhandled int64
	Dropped   int64
	ByKind    map[Kind]int64
}
