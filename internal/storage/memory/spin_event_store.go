package memory

import (
	"context"
	"sort"
	"sync"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// SpinEventStore is an in-memory implementation of storage.SpinEventStore.
type SpinEventStore struct {
	mu     sync.RWMutex
	events []domain.SpinEvent
}

// NewSpinEventStore creates a new in-memory spin event store.
func NewSpinEventStore() *SpinEventStore {
	return &SpinEventStore{}
}

// InsertBulk appends spin events.
func (s *SpinEventStore) InsertBulk(_ context.Context, events []*domain.SpinEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		if e == nil || e.SpinID == "" {
			return storage.ErrInvalidInput
		}
	}
	for _, e := range events {
		s.events = append(s.events, *e)
	}
	return nil
}

// SlotDistribution counts events per slot within [start, end] (inclusive), ordered by slot.
func (s *SpinEventStore) SlotDistribution(_ context.Context, start, end int64) ([]domain.SlotCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int]int64)
	for _, e := range s.events {
		if e.Timestamp >= start && e.Timestamp <= end {
			counts[e.SlotIndex]++
		}
	}

	result := make([]domain.SlotCount, 0, len(counts))
	for slot, n := range counts {
		result = append(result, domain.SlotCount{SlotIndex: slot, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SlotIndex < result[j].SlotIndex
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SpinEventStore = (*SpinEventStore)(nil)
