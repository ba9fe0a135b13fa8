package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
)

// UserStore provides access to users storage.
type UserStore interface {
	// Create adds a new user. Returns ErrDuplicateKey if wallet_address exists.
	Create(ctx context.Context, u *domain.User) error

	// Get retrieves a user by wallet address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, wallet string) (*domain.User, error)

	// DecrementSpins atomically takes one spin if the balance is positive and
	// returns the remaining balance. Returns ErrNoSpinsRemaining at zero and
	// ErrNotFound for unknown wallets.
	DecrementSpins(ctx context.Context, wallet string) (int64, error)

	// IncrementSpins adds n spins and returns the new balance.
	IncrementSpins(ctx context.Context, wallet string, n int64) (int64, error)

	// GrantDailySpins adds n spins to every user not yet granted on or after
	// dayStart and stamps them with now. Returns the number of users granted.
	GrantDailySpins(ctx context.Context, n int64, dayStart, now time.Time) (int64, error)
}

// PrizeTableStore provides access to the versioned prize table configuration.
type PrizeTableStore interface {
	// Get retrieves the latest prize table version. Returns ErrNotFound if none stored.
	Get(ctx context.Context) (*domain.PrizeTable, error)

	// Put stores slots as a new version and returns the stored table.
	Put(ctx context.Context, slots []domain.PrizeSlot) (*domain.PrizeTable, error)
}

// SpinStore provides access to spins storage.
type SpinStore interface {
	// RecordSpin inserts the spin and credits its prize amount to the user's
	// token balance atomically. Returns the new token balance.
	// Returns ErrDuplicateKey if spin_id exists.
	RecordSpin(ctx context.Context, s *domain.Spin) (decimal.Decimal, error)

	// GetByID retrieves a spin by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, spinID string) (*domain.Spin, error)

	// ListByWallet retrieves the most recent spins of a wallet, newest first.
	ListByWallet(ctx context.Context, wallet string, limit int) ([]*domain.Spin, error)
}

// PurchaseStore provides access to spin purchases storage.
type PurchaseStore interface {
	// RecordPurchase inserts the purchase and credits its spins to the user
	// atomically. Returns the new spin balance.
	// Returns ErrDuplicateKey if tx_digest was already credited.
	RecordPurchase(ctx context.Context, p *domain.Purchase) (int64, error)

	// GetByDigest retrieves a purchase by transaction digest. Returns ErrNotFound if not exists.
	GetByDigest(ctx context.Context, txDigest string) (*domain.Purchase, error)
}

// SpinEventStore provides access to spin analytics events.
type SpinEventStore interface {
	// InsertBulk appends spin events.
	InsertBulk(ctx context.Context, events []*domain.SpinEvent) error

	// SlotDistribution counts events per slot within [start, end] (inclusive, ms), ordered by slot.
	SlotDistribution(ctx context.Context, start, end int64) ([]domain.SlotCount, error)
}
