// Package dedupe tracks domain event ids so each event is enqueued at most once.
package dedupe

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
)

const defaultMaxSize = 50_000

// Deduper records seen event IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID so the event can be retried, e.g. after the
	// queue rejected it.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// lruDeduper keeps the most recently recorded ids; the oldest ids are
// evicted once maxSize is reached.
type lruDeduper struct {
	seen    *lru.Cache
	maxSize int
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &lruDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxSize <= 0 {
		d.maxSize = defaultMaxSize
	}
	// lru.New only fails for a non-positive size.
	d.seen, _ = lru.New(d.maxSize)
	return d
}

func (d *lruDeduper) SeenAndRecord(_ context.Context, id string) bool {
	seen, _ := d.seen.ContainsOrAdd(id, struct{}{})
	return seen
}

func (d *lruDeduper) Unrecord(_ context.Context, id string) {
	d.seen.Remove(id)
}

func (d *lruDeduper) Size() int64 {
	return int64(d.seen.Len())
}
