package memory

import (
	"context"
	"sync"
	"time"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// PrizeTableStore is an in-memory implementation of storage.PrizeTableStore.
// Only the latest version is retained.
type PrizeTableStore struct {
	mu      sync.RWMutex
	current *domain.PrizeTable
}

// NewPrizeTableStore creates a new in-memory prize table store.
func NewPrizeTableStore() *PrizeTableStore {
	return &PrizeTableStore{}
}

// Get retrieves the latest prize table. Returns ErrNotFound if none stored.
func (s *PrizeTableStore) Get(_ context.Context) (*domain.PrizeTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, storage.ErrNotFound
	}
	return s.current.Clone(), nil
}

// Put stores slots as a new version.
func (s *PrizeTableStore) Put(_ context.Context, slots []domain.PrizeSlot) (*domain.PrizeTable, error) {
	if len(slots) == 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var version int64 = 1
	if s.current != nil {
		version = s.current.Version + 1
	}
	s.current = &domain.PrizeTable{
		Version:   version,
		Slots:     domain.CloneSlots(slots),
		UpdatedAt: time.Now().UTC(),
	}
	return s.current.Clone(), nil
}

// Verify interface compliance at compile time.
var _ storage.PrizeTableStore = (*PrizeTableStore)(nil)
