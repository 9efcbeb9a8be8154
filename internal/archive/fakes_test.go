package archive

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB records batches and answers each queued insert.
type fakeDB struct {
	mu      sync.Mutex
	batches [][]*pgx.QueuedQuery
	seen    map[any]bool
	err     error
	execs   []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{seen: make(map[any]bool)}
}

func (f *fakeDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, b.QueuedQueries)

	res := &fakeResults{err: f.err}
	for _, q := range b.QueuedQueries {
		id := q.Arguments[0]
		if f.seen[id] {
			res.tags = append(res.tags, pgconn.NewCommandTag("INSERT 0 0"))
			continue
		}
		f.seen[id] = true
		res.tags = append(res.tags, pgconn.NewCommandTag("INSERT 0 1"))
	}
	return res
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) queued() []*pgx.QueuedQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*pgx.QueuedQuery
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

func (f *fakeDB) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

type fakeResults struct {
	tags []pgconn.CommandTag
	err  error
	next int
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	if r.err != nil {
		return pgconn.CommandTag{}, r.err
	}
	if r.next >= len(r.tags) {
		return pgconn.CommandTag{}, errors.New("no more results")
	}
	tag := r.tags[r.next]
	r.next++
	return tag, nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (r *fakeResults) QueryRow() pgx.Row         { return nil }
func (r *fakeResults) Close() error              { return nil }
