package store

import (
	"sync"
	"time"

	"github.com/angelcm/adspend-elt-go/internal/models"
)

// MemoryStore stands in for the external warehouse. It supports the two
// operations the pipeline needs: bulk insert of enriched records and range
// queries by date. Records are immutable once inserted.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.EnrichedRecord
	seen    map[string]struct{} // idempotencia por archivo fuente
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// MarkSeen registers a source file name and reports whether it was new.
// Re-ingesting an already-loaded file is a no-op upstream.
func (s *MemoryStore) MarkSeen(sourceFile string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[sourceFile]; ok {
		return false
	}
	s.seen[sourceFile] = struct{}{}
	return true
}

func (s *MemoryStore) InsertBatch(recs []models.EnrichedRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, recs...)
}

func (s *MemoryStore) All() []models.EnrichedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EnrichedRecord, len(s.records))
	copy(out, s.records)
	return out
}

// QueryRange returns records whose date falls in [from, to] inclusive. A zero
// from or to leaves that side of the range open. Records whose date string does
// not parse never match a bounded range. The optional filter narrows further.
func (s *MemoryStore) QueryRange(from, to time.Time, f func(models.EnrichedRecord) bool) []models.EnrichedRecord {
	bounded := !from.IsZero() || !to.IsZero()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.EnrichedRecord
	for _, r := range s.records {
		if bounded {
			d, ok := r.Day()
			if !ok {
				continue
			}
			if !from.IsZero() && d.Before(day(from)) {
				continue
			}
			if !to.IsZero() && d.After(day(to)) {
				continue
			}
		}
		if f == nil || f(r) {
			out = append(out, r)
		}
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
