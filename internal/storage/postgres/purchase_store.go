package postgres

import (
	"context"
	"fmt"
	"time"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// PurchaseStore implements storage.PurchaseStore using PostgreSQL.
type PurchaseStore struct {
	pool *Pool
}

// NewPurchaseStore creates a new PurchaseStore.
func NewPurchaseStore(pool *Pool) *PurchaseStore {
	return &PurchaseStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PurchaseStore = (*PurchaseStore)(nil)

// RecordPurchase inserts the purchase and credits its spins in one transaction.
func (s *PurchaseStore) RecordPurchase(ctx context.Context, p *domain.Purchase) (balance int64, err error) {
	if p == nil || p.TxDigest == "" || p.WalletAddress == "" || p.SpinsCredited <= 0 {
		return 0, storage.ErrInvalidInput
	}
	defer observe("purchase_record", time.Now(), &err)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO purchases (
			purchase_id, wallet_address, tx_digest, amount_mist, spins_credited, created_at
		) VALUES ($1, $2, $3, $4::numeric, $5, $6)
	`, p.PurchaseID, p.WalletAddress, p.TxDigest, p.AmountMist.String(), p.SpinsCredited, p.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("insert purchase: %w", err)
	}

	balance, err = addSpins(ctx, tx, p.WalletAddress, p.SpinsCredited)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return balance, nil
}

// GetByDigest retrieves a purchase by transaction digest. Returns ErrNotFound if not exists.
func (s *PurchaseStore) GetByDigest(ctx context.Context, txDigest string) (*domain.Purchase, error) {
	query := `
		SELECT purchase_id, wallet_address, tx_digest, amount_mist::text, spins_credited, created_at
		FROM purchases
		WHERE tx_digest = $1
	`

	var (
		p      domain.Purchase
		amount string
	)
	err := s.pool.QueryRow(ctx, query, txDigest).Scan(
		&p.PurchaseID, &p.WalletAddress, &p.TxDigest, &amount, &p.SpinsCredited, &p.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	if p.AmountMist, err = parseNumeric(amount); err != nil {
		return nil, err
	}
	return &p, nil
}
