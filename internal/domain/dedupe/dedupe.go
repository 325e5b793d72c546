// Package dedupe tracks which season jobs are currently owned by a worker.
package dedupe

import (
	"container/list"
	"context"
	"strconv"
	"sync"
)

// Deduper records in-flight keys so that a key is owned by at most one job.
type Deduper interface {
	// SeenAndRecord atomically checks whether id is held and records it if not.
	// Returns true if id was already held.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord releases id once its job has finished or was never queued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// SeasonKey is the ownership key for a season's processing job.
func SeasonKey(season int) string {
	return "season:" + strconv.Itoa(season)
}

// inMemoryDeduper keeps held keys in a map backed by an insertion-ordered
// list. When maxSize > 0 and the set is full, the oldest key is evicted.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 1024,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		if oldest := d.order.Front(); oldest != nil {
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[id] = d.order.PushBack(id)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

// Size returns the number of held keys.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
