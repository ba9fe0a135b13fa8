package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// SpinStore implements storage.SpinStore using PostgreSQL.
type SpinStore struct {
	pool *Pool
}

// NewSpinStore creates a new SpinStore.
func NewSpinStore(pool *Pool) *SpinStore {
	return &SpinStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SpinStore = (*SpinStore)(nil)

// RecordSpin inserts the spin and credits its prize amount in one transaction.
// A positive commission is credited to the referrer in the same transaction.
func (s *SpinStore) RecordSpin(ctx context.Context, sp *domain.Spin) (balance decimal.Decimal, err error) {
	if sp == nil || sp.SpinID == "" || sp.WalletAddress == "" {
		return decimal.Zero, storage.ErrInvalidInput
	}
	defer observe("spin_record", time.Now(), &err)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw string
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET token_balance = token_balance + $2::numeric, updated_at = now()
		WHERE wallet_address = $1
		RETURNING token_balance::text
	`, sp.WalletAddress, sp.Amount.String()).Scan(&raw)
	if err != nil {
		if isNotFoundError(err) {
			return decimal.Zero, storage.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("credit prize: %w", err)
	}

	if sp.ReferrerWallet != nil && sp.CommissionAmount.IsPositive() {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET token_balance = token_balance + $2::numeric, updated_at = now()
			WHERE wallet_address = $1
		`, *sp.ReferrerWallet, sp.CommissionAmount.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("credit commission: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return decimal.Zero, storage.ErrNotFound
		}
	}

	var lock *string
	if sp.LockDuration != nil {
		l := string(*sp.LockDuration)
		lock = &l
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO spins (
			spin_id, wallet_address, server_seed, seed_hash, random_value, table_version,
			slot_index, prize_type, amount, value_usd, lock_duration,
			referrer_wallet, commission_amount, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9::numeric, $10::numeric, $11,
			$12, $13::numeric, $14
		)
	`,
		sp.SpinID, sp.WalletAddress, sp.ServerSeed, sp.SeedHash, sp.RandomValue, sp.TableVersion,
		sp.SlotIndex, string(sp.PrizeType), sp.Amount.String(), sp.ValueUSD.String(), lock,
		sp.ReferrerWallet, sp.CommissionAmount.String(), sp.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return decimal.Zero, storage.ErrDuplicateKey
		}
		return decimal.Zero, fmt.Errorf("insert spin: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit tx: %w", err)
	}

	return parseNumeric(raw)
}

const spinColumns = `
	spin_id, wallet_address, server_seed, seed_hash, random_value, table_version,
	slot_index, prize_type, amount::text, value_usd::text, lock_duration,
	referrer_wallet, commission_amount::text, created_at
`

// GetByID retrieves a spin by its ID. Returns ErrNotFound if not exists.
func (s *SpinStore) GetByID(ctx context.Context, spinID string) (*domain.Spin, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+spinColumns+` FROM spins WHERE spin_id = $1`, spinID)

	sp, err := scanSpin(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get spin: %w", err)
	}
	return sp, nil
}

// ListByWallet retrieves the most recent spins of a wallet, newest first.
func (s *SpinStore) ListByWallet(ctx context.Context, wallet string, limit int) ([]*domain.Spin, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `SELECT ` + spinColumns + `
		FROM spins
		WHERE wallet_address = $1
		ORDER BY created_at DESC, spin_id
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("query spins: %w", err)
	}
	defer rows.Close()

	var result []*domain.Spin
	for rows.Next() {
		sp, err := scanSpin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spin: %w", err)
		}
		result = append(result, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spins: %w", err)
	}
	return result, nil
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpin(row rowScanner) (*domain.Spin, error) {
	var (
		sp                     domain.Spin
		prizeType              string
		amount, valueUSD, comm string
		lock                   *string
	)

	err := row.Scan(
		&sp.SpinID, &sp.WalletAddress, &sp.ServerSeed, &sp.SeedHash, &sp.RandomValue, &sp.TableVersion,
		&sp.SlotIndex, &prizeType, &amount, &valueUSD, &lock,
		&sp.ReferrerWallet, &comm, &sp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sp.PrizeType = domain.PrizeType(prizeType)
	if lock != nil {
		d := domain.LockDuration(*lock)
		sp.LockDuration = &d
	}
	if sp.Amount, err = parseNumeric(amount); err != nil {
		return nil, err
	}
	if sp.ValueUSD, err = parseNumeric(valueUSD); err != nil {
		return nil, err
	}
	if sp.CommissionAmount, err = parseNumeric(comm); err != nil {
		return nil, err
	}
	return &sp, nil
}
