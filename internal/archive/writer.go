package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/navikenz/navihire/internal/realtime"
)

// BatchSender is the part of *pgxpool.Pool the writer needs.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Config holds batching settings.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int // Max queued rows before the oldest are evicted
}

// DefaultConfig returns the default batching settings.
func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: time.Second,
		BufferSize:    1000,
	}
}

// Stats contains writer counters.
type Stats struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
	Evicted   int64
}

// messageRow is one chat_messages row.
type messageRow struct {
	ID           uuid.UUID
	Identity     string
	Type         string
	Content      string
	Agent        string
	TaskProgress []byte // nil stores NULL
	Raw          []byte
	ReceivedAt   time.Time
}

// Writer archives inbound messages. It implements realtime.Observer; only
// MessageReceived does any work.
type Writer struct {
	realtime.NopObserver

	cfg      Config
	identity string
	db       BatchSender
	logger   *slog.Logger
	input    *Buffer[messageRow]

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	stats Stats
}

// NewWriter creates a writer for one session identity.
func NewWriter(cfg Config, identity string, db BatchSender, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.BatchSize < 1 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = def.BufferSize
	}
	return &Writer{
		cfg:      cfg,
		identity: identity,
		db:       db,
		logger:   logger.With("component", "archive"),
		input:    NewBuffer[messageRow](min(cfg.BatchSize, cfg.BufferSize), cfg.BufferSize),
	}
}

// MessageReceived queues a message for the next flush.
func (w *Writer) MessageReceived(msg realtime.InboundMessage) {
	if !w.input.Push(w.transform(msg)) {
		w.mu.Lock()
		w.stats.Evicted++
		w.mu.Unlock()
	}
}

// Start begins flushing queued messages to the database.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run()

	w.logger.Info("archive writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop shuts down the writer and flushes what is still queued using ctx.
func (w *Writer) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("archive writer stop timed out")
		return ctx.Err()
	}

	// Final flush
	w.flush(ctx)
	w.logger.Info("archive writer stopped")
	return nil
}

// Stats returns current counters.
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Writer) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush(w.ctx)
		case <-w.input.Ready():
			if w.input.Len() >= w.cfg.BatchSize {
				w.flush(w.ctx)
			}
		}
	}
}

// transform converts an InboundMessage to a messageRow.
func (w *Writer) transform(msg realtime.InboundMessage) messageRow {
	row := messageRow{
		Identity:   w.identity,
		Type:       msg.Type,
		Content:    msg.Content,
		Agent:      msg.Agent,
		Raw:        msg.Raw,
		ReceivedAt: msg.ReceivedAt.UTC(),
	}
	if msg.TaskProgress != nil {
		row.TaskProgress, _ = json.Marshal(msg.TaskProgress)
	}
	row.ID = rowID(w.identity, row.ReceivedAt, msg.Raw)
	return row
}

// rowID derives a stable id from identity, receive time and frame bytes.
func rowID(identity string, at time.Time, raw []byte) uuid.UUID {
	key := make([]byte, 0, len(identity)+len(raw)+24)
	key = append(key, identity...)
	key = append(key, 0)
	key = strconv.AppendInt(key, at.UnixNano(), 10)
	key = append(key, 0)
	key = append(key, raw...)
	return uuid.NewSHA1(uuid.NameSpaceURL, key)
}

// flush writes queued rows in batches until the buffer is empty.
func (w *Writer) flush(ctx context.Context) {
	for {
		rows := w.input.Drain(w.cfg.BatchSize)
		if len(rows) == 0 {
			return
		}

		start := time.Now()
		conflicts, err := w.batchInsert(ctx, rows)

		w.mu.Lock()
		if err != nil {
			w.stats.Errors++
		} else {
			w.stats.Inserts += int64(len(rows) - conflicts)
			w.stats.Conflicts += int64(conflicts)
			w.stats.Flushes++
		}
		w.mu.Unlock()

		if err != nil {
			w.logger.Error("batch insert failed", "error", err, "count", len(rows))
			return
		}
		w.logger.Debug("flushed messages",
			"count", len(rows),
			"conflicts", conflicts,
			"duration", time.Since(start),
		)
	}
}

const insertMessage = `
	INSERT INTO chat_messages (id, identity, type, content, agent, task_progress, raw, received_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING
`

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *Writer) batchInsert(ctx context.Context, rows []messageRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		var progress any
		if r.TaskProgress != nil {
			progress = string(r.TaskProgress)
		}
		batch.Queue(insertMessage,
			r.ID, r.Identity, r.Type, r.Content, r.Agent, progress, string(r.Raw), r.ReceivedAt)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("insert chat message: %w", err)
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}
	return conflicts, nil
}
