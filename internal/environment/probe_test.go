package environment

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockSession counts the triggers it receives.
type mockSession struct {
	mu        sync.Mutex
	visible   int
	online    int
	offline   int
	reconnect int
}

func (s *mockSession) Visible()   { s.mu.Lock(); s.visible++; s.mu.Unlock() }
func (s *mockSession) Online()    { s.mu.Lock(); s.online++; s.mu.Unlock() }
func (s *mockSession) Offline()   { s.mu.Lock(); s.offline++; s.mu.Unlock() }
func (s *mockSession) Reconnect() { s.mu.Lock(); s.reconnect++; s.mu.Unlock() }

func (s *mockSession) counts() (visible, online, offline, reconnect int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible, s.online, s.offline, s.reconnect
}

// toggle is a Checker whose result the test controls.
type toggle struct {
	up atomic.Bool
}

func (c *toggle) Check(ctx context.Context) error {
	if c.up.Load() {
		return nil
	}
	return errors.New("unreachable")
}

func newTestProbe(t *testing.T, target Target, checkers ...Checker) *NetworkProbe {
	t.Helper()
	p := NewNetworkProbe(ProbeConfig{Interval: time.Hour, Timeout: time.Second, Concurrency: 2}, target, nil, checkers...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	p.ctx = ctx
	return p
}

func TestNetworkProbe_Transitions(t *testing.T) {
	session := &mockSession{}
	check := &toggle{}
	check.up.Store(true)
	p := newTestProbe(t, session, check)

	tests := []struct {
		name        string
		up          bool
		wantOnline  int
		wantOffline int
	}{
		{"starts online, no report", true, 0, 0},
		{"goes offline", false, 0, 1},
		{"stays offline", false, 0, 1},
		{"comes back", true, 1, 1},
		{"stays online", true, 1, 1},
		{"drops again", false, 1, 2},
	}

	for _, tt := range tests {
		check.up.Store(tt.up)
		p.probe()

		_, online, offline, _ := session.counts()
		if online != tt.wantOnline || offline != tt.wantOffline {
			t.Errorf("%s: online=%d offline=%d, want %d/%d", tt.name, online, offline, tt.wantOnline, tt.wantOffline)
		}
		if p.Online() != tt.up {
			t.Errorf("%s: Online() = %v, want %v", tt.name, p.Online(), tt.up)
		}
	}
}

func TestNetworkProbe_AnyCheckerSuffices(t *testing.T) {
	session := &mockSession{}
	down, up := &toggle{}, &toggle{}
	up.up.Store(true)
	p := newTestProbe(t, session, down, up)

	p.probe()
	if !p.Online() {
		t.Error("expected online with one reachable checker")
	}

	up.up.Store(false)
	p.probe()
	if p.Online() {
		t.Error("expected offline with no reachable checker")
	}
}

func TestNetworkProbe_NoCheckers(t *testing.T) {
	session := &mockSession{}
	p := newTestProbe(t, session)
	p.probe()
	if _, online, offline, _ := session.counts(); online+offline != 0 {
		t.Error("probe without checkers reported a transition")
	}
}

func TestNetworkProbe_CancelledCycleIgnored(t *testing.T) {
	session := &mockSession{}
	p := newTestProbe(t, session, &toggle{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.ctx = ctx
	p.probe()

	if _, _, offline, _ := session.counts(); offline != 0 {
		t.Error("cancelled probe reported offline")
	}
}

func TestNetworkProbe_Concurrency(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	slow := CheckerFunc(func(ctx context.Context) error {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := maxInFlight.Load()
			if current <= old || maxInFlight.CompareAndSwap(old, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	var checkers []Checker
	for i := 0; i < 8; i++ {
		checkers = append(checkers, slow)
	}
	p := newTestProbe(t, &mockSession{}, checkers...)
	p.probe()

	if got := maxInFlight.Load(); got > 2 {
		t.Errorf("maxInFlight = %d, want <= 2", got)
	}
}

func TestNetworkProbe_StartStop(t *testing.T) {
	session := &mockSession{}
	check := &toggle{}
	p := NewNetworkProbe(ProbeConfig{Interval: 20 * time.Millisecond, Timeout: time.Second}, session, nil, check)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, _, offline, _ := session.counts(); offline == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if _, _, offline, _ := session.counts(); offline != 1 {
		t.Errorf("offline = %d, want 1", offline)
	}
}

func TestDialChecker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := DialChecker(addr).Check(ctx); err != nil {
		t.Errorf("open listener: %v", err)
	}

	ln.Close()
	if err := DialChecker(addr).Check(ctx); err == nil {
		t.Error("expected error for closed listener")
	}
}
