package archive

import "sync"

// Buffer is a thread-safe FIFO queue that doubles its storage on demand up
// to a fixed limit. Once full, Push evicts the oldest item so producers never
// block.
type Buffer[T any] struct {
	mu    sync.Mutex
	buf   []T
	head  int // read position
	count int
	limit int
	ready chan struct{}

	// Stats
	pushed  int64
	drained int64
	evicted int64
}

// NewBuffer creates a buffer holding at most limit items.
func NewBuffer[T any](initialCapacity, limit int) *Buffer[T] {
	if limit < 1 {
		limit = 1
	}
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	if initialCapacity > limit {
		initialCapacity = limit
	}
	return &Buffer[T]{
		buf:   make([]T, initialCapacity),
		limit: limit,
		ready: make(chan struct{}, 1),
	}
}

// Push appends an item. It reports false when an older item was evicted to
// make room.
func (b *Buffer[T]) Push(item T) bool {
	b.mu.Lock()
	kept := true
	if b.count == len(b.buf) {
		if len(b.buf) < b.limit {
			b.grow()
		} else {
			b.pop()
			b.evicted++
			kept = false
		}
	}
	b.buf[(b.head+b.count)%len(b.buf)] = item
	b.count++
	b.pushed++
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
	return kept
}

// Ready is signalled after a Push. A single signal may cover several items.
func (b *Buffer[T]) Ready() <-chan struct{} {
	return b.ready
}

// Drain removes up to max items in FIFO order (all items when max <= 0).
func (b *Buffer[T]) Drain(max int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.count
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]T, n)
	for i := range out {
		out[i] = b.pop()
	}
	b.drained += int64(n)
	return out
}

// Len returns the number of queued items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Stats returns buffer statistics.
func (b *Buffer[T]) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Count:    b.count,
		Capacity: len(b.buf),
		Pushed:   b.pushed,
		Drained:  b.drained,
		Evicted:  b.evicted,
	}
}

// BufferStats contains buffer statistics.
type BufferStats struct {
	Count    int
	Capacity int
	Pushed   int64
	Drained  int64
	Evicted  int64
}

// pop removes the head item. Must be called with lock held and count > 0.
func (b *Buffer[T]) pop() T {
	item := b.buf[b.head]
	var zero T
	b.buf[b.head] = zero // Clear reference for GC
	b.head = (b.head + 1) % len(b.buf)
	b.count--
	return item
}

// grow doubles the storage, capped at limit. Must be called with lock held.
func (b *Buffer[T]) grow() {
	size := min(len(b.buf)*2, b.limit)
	next := make([]T, size)

	// Unwrap [head...end) + [0...tail) into the new slice
	n := copy(next, b.buf[b.head:])
	copy(next[n:], b.buf[:b.head])

	b.buf = next
	b.head = 0
}
