package memory

import (
	"context"
	"sync"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// PurchaseStore is an in-memory implementation of storage.PurchaseStore.
type PurchaseStore struct {
	mu    sync.RWMutex
	users *UserStore
	data  map[string]*domain.Purchase // keyed by tx_digest
}

// NewPurchaseStore creates a new in-memory purchase store crediting users.
func NewPurchaseStore(users *UserStore) *PurchaseStore {
	return &PurchaseStore{
		users: users,
		data:  make(map[string]*domain.Purchase),
	}
}

// RecordPurchase inserts the purchase and credits its spins atomically.
func (s *PurchaseStore) RecordPurchase(_ context.Context, p *domain.Purchase) (int64, error) {
	if p == nil || p.TxDigest == "" || p.WalletAddress == "" || p.SpinsCredited <= 0 {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.TxDigest]; exists {
		return 0, storage.ErrDuplicateKey
	}

	s.users.mu.Lock()
	balance, err := s.users.addSpinsLocked(p.WalletAddress, p.SpinsCredited)
	s.users.mu.Unlock()
	if err != nil {
		return 0, err
	}

	purchaseCopy := *p
	s.data[p.TxDigest] = &purchaseCopy
	return balance, nil
}

// GetByDigest retrieves a purchase by transaction digest. Returns ErrNotFound if not exists.
func (s *PurchaseStore) GetByDigest(_ context.Context, txDigest string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[txDigest]
	if !exists {
		return nil, storage.ErrNotFound
	}
	purchaseCopy := *p
	return &purchaseCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.PurchaseStore = (*PurchaseStore)(nil)
