package history

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"tiktok-stats/internal/domain"
)

func newTestMemoryStore(t *testing.T, retention time.Duration, now *time.Time) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(retention)
	s.now = func() time.Time { return *now }
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(keyID, target string, at time.Time) domain.HistoryRecord {
	return domain.HistoryRecord{
		KeyIdentifier:  keyID,
		TargetID:       target,
		FollowingCount: "1",
		FollowersCount: "2",
		LikesCount:     "3",
		QueriedAt:      at,
	}
}

func TestMemoryStore_Save_AssignsIDAndTimestamp(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestMemoryStore(t, 0, &now)
	r := record("jina...cdef", "creator", time.Time{})

	// Act
	saved, err := s.Save(context.Background(), r)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected generated ID")
	}
	if !saved.QueriedAt.Equal(now) {
		t.Errorf("QueriedAt: got %v, want %v", saved.QueriedAt, now)
	}
}

func TestMemoryStore_List_NewestFirstWithLimit(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestMemoryStore(t, 0, &now)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = s.Save(ctx, record("jina...cdef", fmt.Sprintf("user%d", i), now.Add(time.Duration(i)*time.Minute)))
	}
	_, _ = s.Save(ctx, record("other...zzzz", "someone", now))

	// Act
	records, err := s.List(ctx, "jina...cdef", 3)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len: got %d, want 3", len(records))
	}
	for i, want := range []string{"user4", "user3", "user2"} {
		if records[i].TargetID != want {
			t.Errorf("records[%d]: got %v, want %v", i, records[i].TargetID, want)
		}
	}
}

func TestMemoryStore_List_OutOfOrderSaves_SortedByTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestMemoryStore(t, 0, &now)
	ctx := context.Background()

	_, _ = s.Save(ctx, record("k", "late", now.Add(time.Hour)))
	_, _ = s.Save(ctx, record("k", "early", now))

	records, _ := s.List(ctx, "k", 10)

	if len(records) != 2 || records[0].TargetID != "late" {
		t.Errorf("expected newest first, got %+v", records)
	}
}

func TestMemoryStore_List_UnknownKey_EmptySlice(t *testing.T) {
	now := time.Now()
	s := newTestMemoryStore(t, 0, &now)

	records, err := s.List(context.Background(), "nobody", 20)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", records)
	}
}

func TestMemoryStore_List_ExpiredRecords_Hidden(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestMemoryStore(t, time.Hour, &now)
	ctx := context.Background()
	_, _ = s.Save(ctx, record("k", "old", now.Add(-2*time.Hour)))
	_, _ = s.Save(ctx, record("k", "fresh", now.Add(-time.Minute)))

	// Act
	records, _ := s.List(ctx, "k", 10)

	// Assert
	if len(records) != 1 || records[0].TargetID != "fresh" {
		t.Errorf("expected only fresh record, got %+v", records)
	}
}

func TestMemoryStore_Purge_RemovesExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestMemoryStore(t, time.Hour, &now)
	ctx := context.Background()
	_, _ = s.Save(ctx, record("k", "old", now.Add(-2*time.Hour)))
	_, _ = s.Save(ctx, record("k", "fresh", now))

	s.purge()

	value, _ := s.histories.Load("k")
	h := value.(*keyHistory)
	if len(h.records) != 1 || h.records[0].TargetID != "fresh" {
		t.Errorf("purge left %+v", h.records)
	}
}

func TestMemoryStore_ConcurrentSaves_AllStored(t *testing.T) {
	now := time.Now().UTC()
	s := newTestMemoryStore(t, 0, &now)
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Save(ctx, record("k", fmt.Sprintf("u%d", i), now))
		}(i)
	}
	wg.Wait()

	records, _ := s.List(ctx, "k", 0)
	if len(records) != 50 {
		t.Errorf("len: got %d, want 50", len(records))
	}
}

func TestMemoryStore_Close_Twice_IsSafe(t *testing.T) {
	s := NewMemoryStore(0)

	_ = s.Close()
	_ = s.Close()
}
