package index

import (
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
)

type publication struct {
	snapshot    *domain.Snapshot
	publishedAt time.Time
	generation  uint64
}

// MemoryIndex holds the current catalog snapshot behind a single atomic
// pointer. Publish swaps the whole snapshot; readers never block and always
// see one complete publication.
type MemoryIndex struct {
	current atomic.Pointer[publication]
	empty   *domain.Snapshot
	now     func() time.Time
}

// NewMemoryIndex creates an index with nothing published yet.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		empty: domain.EmptySnapshot(),
		now:   time.Now,
	}
}

// Publish makes s the current snapshot. s must not be modified afterwards.
// Publish is called from the refresher goroutine only.
func (idx *MemoryIndex) Publish(s *domain.Snapshot) {
	var gen uint64 = 1
	if prev := idx.current.Load(); prev != nil {
		gen = prev.generation + 1
	}
	idx.current.Store(&publication{
		snapshot:    s,
		publishedAt: idx.now(),
		generation:  gen,
	})
}

// Current returns the published snapshot, or an empty one before the first Publish.
func (idx *MemoryIndex) Current() *domain.Snapshot {
	if p := idx.current.Load(); p != nil {
		return p.snapshot
	}
	return idx.empty
}

// Ready reports whether a snapshot was ever published.
func (idx *MemoryIndex) Ready() bool {
	return idx.current.Load() != nil
}

// GetLastReload returns when the current snapshot was published (zero if never).
func (idx *MemoryIndex) GetLastReload() time.Time {
	if p := idx.current.Load(); p != nil {
		return p.publishedAt
	}
	return time.Time{}
}

// Generation counts publications; 0 means nothing published.
func (idx *MemoryIndex) Generation() uint64 {
	if p := idx.current.Load(); p != nil {
		return p.generation
	}
	return 0
}
