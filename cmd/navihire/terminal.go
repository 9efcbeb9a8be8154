package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/navikenz/navihire/internal/realtime"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

// terminal renders session activity. As an observer it prints status
// changes; router handlers print the messages.
type terminal struct {
	realtime.NopObserver

	mu    sync.Mutex
	out   io.Writer
	color bool
}

func newTerminal(out io.Writer, color bool) *terminal {
	return &terminal{out: out, color: color}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (t *terminal) paint(code, s string) string {
	if !t.color {
		return s
	}
	return code + s + ansiReset
}

func (t *terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

// statusLine is the connection indicator for s.
func (t *terminal) statusLine(s realtime.Status) string {
	switch s {
	case realtime.StatusConnected:
		return t.paint(ansiGreen, "●") + " connected"
	case realtime.StatusConnecting, realtime.StatusReconnecting:
		return t.paint(ansiYellow, "●") + " " + s.String() + "..."
	default:
		return t.paint(ansiRed, "●") + " disconnected (type /reconnect to retry)"
	}
}

func (t *terminal) StatusChanged(from, to realtime.Status) {
	t.println(t.statusLine(to))
}

func (t *terminal) RetryScheduled(attempt int, delay time.Duration) {
	t.println(t.paint(ansiDim, fmt.Sprintf("  retry %d in %s", attempt, delay)))
}

func (t *terminal) MessageDropped(status realtime.Status) {
	t.println(t.paint(ansiDim, "not sent ("+status.String()+"); type again once connected"))
}

// snapshot prints the /status report.
func (t *terminal) snapshot(identity string, snap realtime.Snapshot) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n  identity: %s\n  attempts: %d\n  messages: %d",
		t.statusLine(snap.Status), identity, snap.Attempts, snap.Messages)
	if snap.LastActivity != nil {
		fmt.Fprintf(&b, "\n  last activity: %s ago", time.Since(*snap.LastActivity).Round(time.Second))
	}
	t.println(b.String())
}

func (t *terminal) message(ctx context.Context, msg realtime.InboundMessage) {
	agent := msg.Agent
	if agent == "" {
		agent = "navihire"
	}
	line := t.paint(ansiGreen, "["+agent+"]") + " " + msg.Content
	if len(msg.TaskProgress) > 0 {
		if progress, err := json.Marshal(msg.TaskProgress); err == nil {
			line += "\n" + t.paint(ansiDim, "  progress: "+string(progress))
		}
	}
	t.println(line)
}

func (t *terminal) typing(ctx context.Context, msg realtime.InboundMessage) {
	text := msg.Content
	if text == "" {
		text = "NaviHire is thinking..."
	}
	t.println(t.paint(ansiDim, "… "+text))
}

func (t *terminal) errorMessage(ctx context.Context, msg realtime.InboundMessage) {
	t.println(t.paint(ansiRed, "error: ") + msg.Content)
}

func (t *terminal) other(ctx context.Context, msg realtime.InboundMessage) {
	if msg.Content != "" {
		t.println(t.paint(ansiDim, "["+msg.Type+"] ") + msg.Content)
	}
}

func (t *terminal) info(s string) {
	t.println(t.paint(ansiDim, s))
}

// lineCommand is what a line of input asks for.
type lineCommand int

const (
	lineEmpty lineCommand = iota
	lineSend
	lineReconnect
	lineStatus
	lineQuit
	lineHelp
	lineUnknown
)

// parseLine classifies a line of input. Text is returned for lineSend and
// lineUnknown.
func parseLine(line string) (lineCommand, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return lineEmpty, ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		return lineSend, line
	}
	switch strings.ToLower(strings.Fields(trimmed)[0]) {
	case "/reconnect":
		return lineReconnect, ""
	case "/status":
		return lineStatus, ""
	case "/quit", "/exit":
		return lineQuit, ""
	case "/help":
		return lineHelp, ""
	default:
		return lineUnknown, trimmed
	}
}

const chatHelp = `commands: /reconnect, /status, /quit`
