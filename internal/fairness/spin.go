package fairness

import (
	"fmt"

	"spin-rewards/internal/domain"
)

// ExecuteSpin draws once from the default generator and selects a slot from table.
func ExecuteSpin(table []domain.PrizeSlot) (*domain.SpinResult, error) {
	return defaultGenerator.ExecuteSpin(table)
}

// ExecuteSpin draws once and selects a slot from table. It performs no I/O
// besides reading entropy and never retries a draw.
// The caller should pass a copy of the table it loaded.
func (g *Generator) ExecuteSpin(table []domain.PrizeSlot) (*domain.SpinResult, error) {
	if len(table) == 0 {
		return nil, ErrEmptyPrizeTable
	}

	seed, value, err := g.GenerateSecureRandom()
	if err != nil {
		return nil, err
	}

	slot, err := SelectPrizeSlot(table, value)
	if err != nil {
		return nil, fmt.Errorf("select prize slot: %w", err)
	}

	return &domain.SpinResult{
		ServerSeed:  seed,
		RandomValue: value,
		SlotIndex:   slot.SlotIndex,
		Prize:       slot,
	}, nil
}
