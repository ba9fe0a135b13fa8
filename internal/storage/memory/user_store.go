package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu   sync.RWMutex
	data map[string]*domain.User // keyed by wallet_address
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[string]*domain.User),
	}
}

// Create adds a new user. Returns ErrDuplicateKey if wallet_address exists.
func (s *UserStore) Create(_ context.Context, u *domain.User) error {
	if u == nil || u.WalletAddress == "" || u.SpinBalance < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.WalletAddress]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[u.WalletAddress] = copyUser(u)
	return nil
}

// Get retrieves a user by wallet address. Returns ErrNotFound if not exists.
func (s *UserStore) Get(_ context.Context, wallet string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[wallet]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyUser(u), nil
}

// DecrementSpins atomically takes one spin if the balance is positive.
func (s *UserStore) DecrementSpins(_ context.Context, wallet string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.data[wallet]
	if !exists {
		return 0, storage.ErrNotFound
	}
	if u.SpinBalance <= 0 {
		return 0, storage.ErrNoSpinsRemaining
	}

	u.SpinBalance--
	u.UpdatedAt = time.Now().UTC()
	return u.SpinBalance, nil
}

// IncrementSpins adds n spins and returns the new balance.
func (s *UserStore) IncrementSpins(_ context.Context, wallet string, n int64) (int64, error) {
	if n <= 0 {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addSpinsLocked(wallet, n)
}

// GrantDailySpins adds n spins to every user not yet granted since dayStart.
func (s *UserStore) GrantDailySpins(_ context.Context, n int64, dayStart, now time.Time) (int64, error) {
	if n <= 0 {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var granted int64
	for _, u := range s.data {
		if u.LastDailyGrantAt != nil && !u.LastDailyGrantAt.Before(dayStart) {
			continue
		}
		stamp := now
		u.SpinBalance += n
		u.LastDailyGrantAt = &stamp
		u.UpdatedAt = now
		granted++
	}
	return granted, nil
}

func (s *UserStore) addSpinsLocked(wallet string, n int64) (int64, error) {
	u, exists := s.data[wallet]
	if !exists {
		return 0, storage.ErrNotFound
	}
	u.SpinBalance += n
	u.UpdatedAt = time.Now().UTC()
	return u.SpinBalance, nil
}

func (s *UserStore) creditTokensLocked(wallet string, amount decimal.Decimal) (decimal.Decimal, error) {
	u, exists := s.data[wallet]
	if !exists {
		return decimal.Zero, storage.ErrNotFound
	}
	u.TokenBalance = u.TokenBalance.Add(amount)
	u.UpdatedAt = time.Now().UTC()
	return u.TokenBalance, nil
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.ReferrerWallet != nil {
		r := *u.ReferrerWallet
		c.ReferrerWallet = &r
	}
	if u.LastDailyGrantAt != nil {
		t := *u.LastDailyGrantAt
		c.LastDailyGrantAt = &t
	}
	return &c
}

// Verify interface compliance at compile time.
var _ storage.UserStore = (*UserStore)(nil)
