package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Create adds a new user. Returns ErrDuplicateKey if wallet_address exists.
func (s *UserStore) Create(ctx context.Context, u *domain.User) (err error) {
	if u == nil || u.WalletAddress == "" || u.SpinBalance < 0 {
		return storage.ErrInvalidInput
	}
	defer observe("user_create", time.Now(), &err)

	query := `
		INSERT INTO users (
			wallet_address, spin_balance, token_balance, referrer_wallet,
			last_daily_grant_at, created_at, updated_at
		) VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
	`

	_, err = s.pool.Exec(ctx, query,
		u.WalletAddress, u.SpinBalance, u.TokenBalance.String(), u.ReferrerWallet,
		u.LastDailyGrantAt, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by wallet address. Returns ErrNotFound if not exists.
func (s *UserStore) Get(ctx context.Context, wallet string) (*domain.User, error) {
	query := `
		SELECT wallet_address, spin_balance, token_balance::text, referrer_wallet,
		       last_daily_grant_at, created_at, updated_at
		FROM users
		WHERE wallet_address = $1
	`

	var (
		u       domain.User
		balance string
	)
	err := s.pool.QueryRow(ctx, query, wallet).Scan(
		&u.WalletAddress, &u.SpinBalance, &balance, &u.ReferrerWallet,
		&u.LastDailyGrantAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if u.TokenBalance, err = parseNumeric(balance); err != nil {
		return nil, err
	}
	return &u, nil
}

// DecrementSpins atomically takes one spin if the balance is positive.
func (s *UserStore) DecrementSpins(ctx context.Context, wallet string) (remaining int64, err error) {
	defer observe("user_decrement_spins", time.Now(), &err)

	query := `
		UPDATE users
		SET spin_balance = spin_balance - 1, updated_at = now()
		WHERE wallet_address = $1 AND spin_balance > 0
		RETURNING spin_balance
	`

	err = s.pool.QueryRow(ctx, query, wallet).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !isNotFoundError(err) {
		return 0, fmt.Errorf("decrement spins: %w", err)
	}

	// No row updated: distinguish unknown wallet from empty balance
	exists, err := s.exists(ctx, wallet)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, storage.ErrNotFound
	}
	return 0, storage.ErrNoSpinsRemaining
}

// IncrementSpins adds n spins and returns the new balance.
func (s *UserStore) IncrementSpins(ctx context.Context, wallet string, n int64) (balance int64, err error) {
	if n <= 0 {
		return 0, storage.ErrInvalidInput
	}
	defer observe("user_increment_spins", time.Now(), &err)

	balance, err = addSpins(ctx, s.pool, wallet, n)
	return balance, err
}

// GrantDailySpins adds n spins to every user not yet granted since dayStart.
func (s *UserStore) GrantDailySpins(ctx context.Context, n int64, dayStart, now time.Time) (granted int64, err error) {
	if n <= 0 {
		return 0, storage.ErrInvalidInput
	}
	defer observe("user_grant_daily", time.Now(), &err)

	query := `
		UPDATE users
		SET spin_balance = spin_balance + $1, last_daily_grant_at = $3, updated_at = $3
		WHERE last_daily_grant_at IS NULL OR last_daily_grant_at < $2
	`

	tag, err := s.pool.Exec(ctx, query, n, dayStart, now)
	if err != nil {
		return 0, fmt.Errorf("grant daily spins: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *UserStore) exists(ctx context.Context, wallet string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE wallet_address = $1)`, wallet).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func addSpins(ctx context.Context, q querier, wallet string, n int64) (int64, error) {
	query := `
		UPDATE users
		SET spin_balance = spin_balance + $2, updated_at = now()
		WHERE wallet_address = $1
		RETURNING spin_balance
	`

	var balance int64
	if err := q.QueryRow(ctx, query, wallet, n).Scan(&balance); err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("add spins: %w", err)
	}
	return balance, nil
}
