package spin

import (
	"context"
	"fmt"
	"time"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/idhash"
	"spin-rewards/internal/prizetable"
)

// Verification is the fairness audit of one spin.
type Verification struct {
	SpinID      string  `json:"spin_id"`
	ServerSeed  string  `json:"server_seed"`
	SeedHash    string  `json:"seed_hash"`
	RandomValue float64 `json:"random_value"`
	SlotIndex   int     `json:"slot_index"`
	Valid       bool    `json:"valid"` // seed hashes to the stored hash
}

// VerifySpin recomputes the seed hash of a stored spin.
func (s *Service) VerifySpin(ctx context.Context, spinID string) (*Verification, error) {
	sp, err := s.deps.Spins.GetByID(ctx, spinID)
	if err != nil {
		return nil, err
	}

	return &Verification{
		SpinID:      sp.SpinID,
		ServerSeed:  sp.ServerSeed,
		SeedHash:    sp.SeedHash,
		RandomValue: sp.RandomValue,
		SlotIndex:   sp.SlotIndex,
		Valid:       idhash.VerifySeedHash(sp.ServerSeed, sp.SeedHash),
	}, nil
}

// Prizes returns the current prize table with per-slot chances.
func (s *Service) Prizes(ctx context.Context) (*domain.PrizeTable, []prizetable.SlotChance, error) {
	table, err := s.deps.Prizes.Current(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load prize table: %w", err)
	}
	return table, prizetable.Chances(table.Slots), nil
}

// Distribution counts recorded spins per slot within [from, to].
func (s *Service) Distribution(ctx context.Context, from, to time.Time) ([]domain.SlotCount, error) {
	if s.deps.Events == nil {
		return nil, ErrAnalyticsDisabled
	}
	return s.deps.Events.SlotDistribution(ctx, from.UnixMilli(), to.UnixMilli())
}
