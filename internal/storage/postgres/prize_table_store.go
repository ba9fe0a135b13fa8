package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

// PrizeTableStore implements storage.PrizeTableStore using PostgreSQL.
// Every Put appends a version; Get returns the highest.
type PrizeTableStore struct {
	pool *Pool
}

// NewPrizeTableStore creates a new PrizeTableStore.
func NewPrizeTableStore(pool *Pool) *PrizeTableStore {
	return &PrizeTableStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PrizeTableStore = (*PrizeTableStore)(nil)

// Get retrieves the latest prize table. Returns ErrNotFound if none stored.
func (s *PrizeTableStore) Get(ctx context.Context) (*domain.PrizeTable, error) {
	query := `
		SELECT version, slots, updated_at
		FROM prize_tables
		ORDER BY version DESC
		LIMIT 1
	`

	var (
		t   domain.PrizeTable
		raw []byte
	)
	err := s.pool.QueryRow(ctx, query).Scan(&t.Version, &raw, &t.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get prize table: %w", err)
	}

	if err := json.Unmarshal(raw, &t.Slots); err != nil {
		return nil, fmt.Errorf("decode prize slots: %w", err)
	}
	return &t, nil
}

// Put stores slots as a new version.
func (s *PrizeTableStore) Put(ctx context.Context, slots []domain.PrizeSlot) (*domain.PrizeTable, error) {
	if len(slots) == 0 {
		return nil, storage.ErrInvalidInput
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("encode prize slots: %w", err)
	}

	t := domain.PrizeTable{Slots: domain.CloneSlots(slots)}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO prize_tables (slots) VALUES ($1)
		RETURNING version, updated_at
	`, raw).Scan(&t.Version, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert prize table: %w", err)
	}
	return &t, nil
}
