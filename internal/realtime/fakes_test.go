package realtime

import (
	"context"
	"sort"
	"sync"
	"time"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and fires every timer that came due, in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of armed timers.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeDialer records every transport it hands out.
type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
	err        error
}

func (d *fakeDialer) Dial(ctx context.Context, url string, h TransportHandler) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	t := &fakeTransport{url: url, h: h}
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) setErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.transports)
}

func (d *fakeDialer) last() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.transports) == 0 {
		return nil
	}
	return d.transports[len(d.transports)-1]
}

// live returns how many transports have not been closed by the manager or the peer.
func (d *fakeDialer) live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, t := range d.transports {
		if !t.isClosed() {
			n++
		}
	}
	return n
}

// fakeTransport lets a test drive the callbacks by hand.
type fakeTransport struct {
	url string
	h   TransportHandler

	mu          sync.Mutex
	sent        [][]byte
	closed      bool
	closeCode   int
	closeReason string
	sendErr     error
}

func (t *fakeTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrNotConnected
	}
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, append([]byte(nil), data...))
	return nil
}

// Close records the close and reports it back like a real transport would.
func (t *fakeTransport) Close(code int, reason string) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.closeCode = code
	t.closeReason = reason
	t.mu.Unlock()

	t.h.OnClose(code, reason)
	return nil
}

func (t *fakeTransport) open() { t.h.OnOpen() }

func (t *fakeTransport) frame(s string) { t.h.OnMessage([]byte(s)) }

// drop simulates the peer or the network closing the connection.
func (t *fakeTransport) drop(code int) {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.h.OnClose(code, "")
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) closedWith() (int, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeCode, t.closeReason
}

func (t *fakeTransport) frames() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.sent))
	copy(out, t.sent)
	return out
}

// recorder is an Observer that keeps everything it sees.
type recorder struct {
	mu          sync.Mutex
	transitions [][2]Status
	received    []InboundMessage
	sent        []string
	dropped     []Status
	parseFails  int
	retries     []time.Duration
	calls       int
}

func (r *recorder) StatusChanged(from, to Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.transitions = append(r.transitions, [2]Status{from, to})
}

func (r *recorder) MessageReceived(msg InboundMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.received = append(r.received, msg)
}

func (r *recorder) MessageSent(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.sent = append(r.sent, kind)
}

func (r *recorder) MessageDropped(status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.dropped = append(r.dropped, status)
}

func (r *recorder) droppedSends() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.dropped...)
}

func (r *recorder) ParseFailed(data []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.parseFails++
}

func (r *recorder) RetryScheduled(attempt int, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.retries = append(r.retries, delay)
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *recorder) retryDelays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.retries...)
}

func (r *recorder) parseFailures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.parseFails
}
