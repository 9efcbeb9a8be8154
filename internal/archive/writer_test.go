package archive

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/navikenz/navihire/internal/realtime"
)

func inbound(content string, at time.Time) realtime.InboundMessage {
	raw, _ := json.Marshal(map[string]any{"type": "message", "content": content})
	return realtime.InboundMessage{
		Type:       "message",
		Content:    content,
		Agent:      "scheduler",
		Raw:        raw,
		ReceivedAt: at,
	}
}

func TestWriter_Transform(t *testing.T) {
	w := NewWriter(DefaultConfig(), "user_1", newFakeDB(), nil)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	msg := inbound("hi", at)
	msg.TaskProgress = map[string]any{"step": 2}

	row := w.transform(msg)

	if row.Identity != "user_1" || row.Type != "message" || row.Content != "hi" || row.Agent != "scheduler" {
		t.Errorf("row = %+v", row)
	}
	if row.ReceivedAt.Location() != time.UTC || !row.ReceivedAt.Equal(at) {
		t.Errorf("ReceivedAt = %v, want %v in UTC", row.ReceivedAt, at)
	}
	if string(row.TaskProgress) != `{"step":2}` {
		t.Errorf("TaskProgress = %s", row.TaskProgress)
	}
	if row.ID == uuid.Nil {
		t.Error("row id not set")
	}
	if again := w.transform(msg); again.ID != row.ID {
		t.Error("row id should be stable for the same frame")
	}
	if other := w.transform(inbound("hi", at.Add(time.Nanosecond))); other.ID == row.ID {
		t.Error("row id should differ for a different receive time")
	}

	if row := w.transform(inbound("x", at)); row.TaskProgress != nil {
		t.Errorf("TaskProgress = %s, want nil", row.TaskProgress)
	}
}

func TestWriter_FlushOnBatchSize(t *testing.T) {
	db := newFakeDB()
	w := NewWriter(Config{BatchSize: 3, FlushInterval: time.Hour, BufferSize: 100}, "user_1", db, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop(context.Background())

	at := time.Now()
	for i := 0; i < 3; i++ {
		w.MessageReceived(inbound("m", at.Add(time.Duration(i))))
	}

	waitUntil(t, func() bool { return w.Stats().Inserts == 3 })

	q := db.queued()
	if len(q) != 3 {
		t.Fatalf("queued %d inserts, want 3", len(q))
	}
	if !strings.Contains(q[0].SQL, "ON CONFLICT (id) DO NOTHING") {
		t.Errorf("SQL = %s", q[0].SQL)
	}
	if q[0].Arguments[1] != "user_1" || q[0].Arguments[5] != nil {
		t.Errorf("args = %v", q[0].Arguments)
	}
}

func TestWriter_FlushOnInterval(t *testing.T) {
	db := newFakeDB()
	w := NewWriter(Config{BatchSize: 100, FlushInterval: 20 * time.Millisecond, BufferSize: 100}, "user_1", db, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop(context.Background())

	w.MessageReceived(inbound("m", time.Now()))

	waitUntil(t, func() bool { return w.Stats().Flushes >= 1 })
	if got := w.Stats().Inserts; got != 1 {
		t.Errorf("Inserts = %d, want 1", got)
	}
}

func TestWriter_StopFlushesRemainder(t *testing.T) {
	db := newFakeDB()
	w := NewWriter(Config{BatchSize: 2, FlushInterval: time.Hour, BufferSize: 100}, "user_1", db, nil)

	at := time.Now()
	for i := 0; i < 5; i++ {
		w.MessageReceived(inbound("m", at.Add(time.Duration(i))))
	}

	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	stats := w.Stats()
	if stats.Inserts != 5 || stats.Flushes != 3 {
		t.Errorf("Stats = %+v, want 5 inserts in 3 flushes", stats)
	}
	if db.batchCount() != 3 {
		t.Errorf("batches = %d, want 3", db.batchCount())
	}
}

func TestWriter_Conflicts(t *testing.T) {
	db := newFakeDB()
	w := NewWriter(Config{BatchSize: 10, FlushInterval: time.Hour, BufferSize: 100}, "user_1", db, nil)

	msg := inbound("dup", time.Now())
	w.MessageReceived(msg)
	w.MessageReceived(msg)
	w.Stop(context.Background())

	stats := w.Stats()
	if stats.Inserts != 1 || stats.Conflicts != 1 {
		t.Errorf("Stats = %+v, want 1 insert and 1 conflict", stats)
	}
}

func TestWriter_InsertError(t *testing.T) {
	db := newFakeDB()
	db.err = errors.New("connection refused")
	w := NewWriter(Config{BatchSize: 10, FlushInterval: time.Hour, BufferSize: 100}, "user_1", db, nil)

	w.MessageReceived(inbound("m", time.Now()))
	w.Stop(context.Background())

	stats := w.Stats()
	if stats.Errors != 1 || stats.Inserts != 0 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestWriter_Eviction(t *testing.T) {
	w := NewWriter(Config{BatchSize: 10, FlushInterval: time.Hour, BufferSize: 2}, "user_1", newFakeDB(), nil)

	at := time.Now()
	for i := 0; i < 5; i++ {
		w.MessageReceived(inbound("m", at.Add(time.Duration(i))))
	}
	if got := w.Stats().Evicted; got != 3 {
		t.Errorf("Evicted = %d, want 3", got)
	}
}

func TestWriter_ObservesManager(t *testing.T) {
	var _ realtime.Observer = (*Writer)(nil)
}

func TestEnsureSchema(t *testing.T) {
	db := newFakeDB()
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(db.execs) != len(schema) || !strings.Contains(db.execs[0], "CREATE TABLE IF NOT EXISTS chat_messages") {
		t.Errorf("execs = %v", db.execs)
	}

	db.err = errors.New("permission denied")
	if err := EnsureSchema(context.Background(), db); err == nil || !strings.Contains(err.Error(), "ensure schema") {
		t.Errorf("err = %v", err)
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
