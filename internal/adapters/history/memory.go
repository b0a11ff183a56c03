// Package history stores query history in Postgres or in process memory.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tiktok-stats/internal/domain"
)

const cleanupInterval = time.Minute

// MemoryStore keeps history in process memory. Records older than the
// retention are dropped; a zero retention keeps them forever.
type MemoryStore struct {
	histories sync.Map // key identifier -> *keyHistory
	retention time.Duration
	now       func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// keyHistory holds the records of one key identifier, oldest first.
type keyHistory struct {
	mu      sync.Mutex
	records []domain.HistoryRecord
}

// NewMemoryStore creates a store and starts its cleanup loop.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	s := &MemoryStore{
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
		stop:      make(chan struct{}),
	}
	go s.cleanup()
	return s
}

// Save stores record, assigning an id and timestamp when missing.
func (s *MemoryStore) Save(_ context.Context, record domain.HistoryRecord) (*domain.HistoryRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.QueriedAt.IsZero() {
		record.QueriedAt = s.now()
	}

	value, _ := s.histories.LoadOrStore(record.KeyIdentifier, &keyHistory{})
	h := value.(*keyHistory)

	h.mu.Lock()
	h.records = append(h.records, record)
	sort.SliceStable(h.records, func(i, j int) bool {
		return h.records[i].QueriedAt.Before(h.records[j].QueriedAt)
	})
	h.mu.Unlock()

	saved := record
	return &saved, nil
}

// List returns up to limit unexpired records, newest first.
func (s *MemoryStore) List(_ context.Context, keyIdentifier string, limit int) ([]domain.HistoryRecord, error) {
	out := []domain.HistoryRecord{}

	value, ok := s.histories.Load(keyIdentifier)
	if !ok {
		return out, nil
	}
	h := value.(*keyHistory)

	cutoff := s.cutoff()

	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		r := h.records[i]
		if !cutoff.IsZero() && r.QueriedAt.Before(cutoff) {
			break
		}
		out = append(out, r)
	}

	return out, nil
}

// Close stops the cleanup loop.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) cutoff() time.Time {
	if s.retention <= 0 {
		return time.Time{}
	}
	return s.now().Add(-s.retention)
}

// cleanup periodically removes expired records.
func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *MemoryStore) purge() {
	cutoff := s.cutoff()
	if cutoff.IsZero() {
		return
	}

	s.histories.Range(func(_, value any) bool {
		h := value.(*keyHistory)
		h.mu.Lock()
		i := sort.Search(len(h.records), func(i int) bool {
			return !h.records[i].QueriedAt.Before(cutoff)
		})
		h.records = append([]domain.HistoryRecord(nil), h.records[i:]...)
		h.mu.Unlock()
		return true
	})
}
