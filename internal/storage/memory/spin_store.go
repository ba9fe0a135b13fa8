package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// SpinStore is an in-memory implementation of storage.SpinStore.
// Prize credits are applied to the linked UserStore.
type SpinStore struct {
	mu       sync.RWMutex
	users    *UserStore
	data     map[string]*domain.Spin   // keyed by spin_id
	byWallet map[string][]*domain.Spin // insertion order
}

// NewSpinStore creates a new in-memory spin store crediting users.
func NewSpinStore(users *UserStore) *SpinStore {
	return &SpinStore{
		users:    users,
		data:     make(map[string]*domain.Spin),
		byWallet: make(map[string][]*domain.Spin),
	}
}

// RecordSpin inserts the spin and credits its prize amount atomically.
func (s *SpinStore) RecordSpin(_ context.Context, sp *domain.Spin) (decimal.Decimal, error) {
	if sp == nil || sp.SpinID == "" || sp.WalletAddress == "" {
		return decimal.Zero, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sp.SpinID]; exists {
		return decimal.Zero, storage.ErrDuplicateKey
	}

	s.users.mu.Lock()
	balance, err := s.creditLocked(sp)
	s.users.mu.Unlock()
	if err != nil {
		return decimal.Zero, err
	}

	c := copySpin(sp)
	s.data[sp.SpinID] = c
	s.byWallet[sp.WalletAddress] = append(s.byWallet[sp.WalletAddress], c)
	return balance, nil
}

// creditLocked credits the prize to the spinner and the commission to the
// referrer. Both wallets are checked before either balance moves.
// Caller must hold s.users.mu.
func (s *SpinStore) creditLocked(sp *domain.Spin) (decimal.Decimal, error) {
	payReferrer := sp.ReferrerWallet != nil && sp.CommissionAmount.IsPositive()
	if _, ok := s.users.data[sp.WalletAddress]; !ok {
		return decimal.Zero, storage.ErrNotFound
	}
	if payReferrer {
		if _, ok := s.users.data[*sp.ReferrerWallet]; !ok {
			return decimal.Zero, storage.ErrNotFound
		}
	}

	balance, err := s.users.creditTokensLocked(sp.WalletAddress, sp.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	if payReferrer {
		if _, err := s.users.creditTokensLocked(*sp.ReferrerWallet, sp.CommissionAmount); err != nil {
			return decimal.Zero, err
		}
	}
	return balance, nil
}

// GetByID retrieves a spin by its ID. Returns ErrNotFound if not exists.
func (s *SpinStore) GetByID(_ context.Context, spinID string) (*domain.Spin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, exists := s.data[spinID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copySpin(sp), nil
}

// ListByWallet retrieves the most recent spins of a wallet, newest first.
func (s *SpinStore) ListByWallet(_ context.Context, wallet string, limit int) ([]*domain.Spin, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	spins := s.byWallet[wallet]
	result := make([]*domain.Spin, 0, min(limit, len(spins)))
	for _, sp := range spins {
		result = append(result, copySpin(sp))
	}

	// Sort by created_at DESC, stable on insertion order
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func copySpin(sp *domain.Spin) *domain.Spin {
	c := *sp
	if sp.LockDuration != nil {
		d := *sp.LockDuration
		c.LockDuration = &d
	}
	if sp.ReferrerWallet != nil {
		r := *sp.ReferrerWallet
		c.ReferrerWallet = &r
	}
	return &c
}

// Verify interface compliance at compile time.
var _ storage.SpinStore = (*SpinStore)(nil)
