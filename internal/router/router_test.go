package router

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/navikenz/navihire/internal/realtime"
)

func TestDefaultConfig(t *testing.T) {
	if cfg := DefaultConfig(); cfg.BufferSize != 256 {
		t.Errorf("BufferSize = %d, want 256", cfg.BufferSize)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		typ  string
		want Kind
	}{
		{"message", KindMessage},
		{"typing", KindTyping},
		{"error", KindError},
		{"pong", KindPong},
		{"ping", KindPing},
		{"task_update", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		if got := KindOf(realtime.InboundMessage{Type: tt.typ}); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

// sink collects routed messages.
type sink struct {
	mu   sync.Mutex
	msgs []realtime.InboundMessage
}

func (s *sink) Handle(ctx context.Context, msg realtime.InboundMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func TestRouter_StartStop(t *testing.T) {
	r := New(DefaultConfig(), slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := r.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestRouter_DispatchByKind(t *testing.T) {
	r := New(DefaultConfig(), nil)

	chat, typing, errs, other := &sink{}, &sink{}, &sink{}, &sink{}
	r.Handle(KindMessage, chat)
	r.Handle(KindTyping, typing)
	r.Handle(KindError, errs)
	r.HandleDefault(other)

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, typ := range []string{"message", "typing", "message", "error", "pong", "custom"} {
		r.MessageReceived(realtime.InboundMessage{Type: typ})
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	if chat.len() != 2 || typing.len() != 1 || errs.len() != 1 || other.len() != 2 {
		t.Errorf("routed chat=%d typing=%d error=%d other=%d", chat.len(), typing.len(), errs.len(), other.len())
	}

	stats := r.Stats()
	if stats.Received != 6 || stats.Routed != 6 || stats.Unhandled != 0 {
		t.Errorf("Stats = %+v", stats)
	}
	if stats.ByKind[KindMessage] != 2 || stats.ByKind[KindPong] != 1 || stats.ByKind[KindOther] != 1 {
		t.Errorf("ByKind = %v", stats.ByKind)
	}
}

func TestRouter_Unhandled(t *testing.T) {
	r := New(DefaultConfig(), nil)
	r.HandleFunc(KindMessage, func(ctx context.Context, msg realtime.InboundMessage) {})
	r.Start(context.Background())

	r.MessageReceived(realtime.InboundMessage{Type: "pong"})
	r.MessageReceived(realtime.InboundMessage{Type: "message"})
	r.Stop(context.Background())

	if stats := r.Stats(); stats.Unhandled != 1 || stats.Routed != 1 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestRouter_Typing(t *testing.T) {
	r := New(DefaultConfig(), nil)

	tests := []struct {
		typ  string
		want bool
	}{
		{"typing", true},
		{"pong", true},
		{"message", false},
		{"typing", true},
		{"error", false},
	}
	for _, tt := range tests {
		r.route(context.Background(), realtime.InboundMessage{Type: tt.typ})
		if got := r.Typing(); got != tt.want {
			t.Errorf("after %q Typing() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestRouter_DropsWhenFull(t *testing.T) {
	r := New(Config{BufferSize: 2}, nil)

	// Not started, so nothing drains the queue.
	for i := 0; i < 5; i++ {
		r.MessageReceived(realtime.InboundMessage{Type: "message"})
	}
	if got := r.Stats().Dropped; got != 3 {
		t.Errorf("Dropped = %d, want 3", got)
	}
}

func TestRouter_HandlerSeesOrder(t *testing.T) {
	r := New(DefaultConfig(), nil)
	var got []string
	done := make(chan struct{})
	r.HandleFunc(KindMessage, func(ctx context.Context, msg realtime.InboundMessage) {
		got = append(got, msg.Content)
		if len(got) == 3 {
			close(done)
		}
	})
	r.Start(context.Background())
	defer r.Stop(context.Background())

	for _, c := range []string{"a", "b", "c"} {
		r.MessageReceived(realtime.InboundMessage{Type: "message", Content: c})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for messages")
	}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("order = %v", got)
	}
}
