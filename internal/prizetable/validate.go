// Package prizetable loads, validates and caches the prize wheel configuration.
package prizetable

import (
	"errors"
	"fmt"
	"math"

	"spin-rewards/internal/domain"
)

// ErrInvalidTable is returned when a prize table fails validation.
var ErrInvalidTable = errors.New("invalid prize table")

// MaxSlots bounds the wheel so slot indexes fit the analytics UInt16 column.
const MaxSlots = math.MaxUint16 + 1

// Validate checks that slots form a usable wheel. Slot indexes must cover
// 0..N-1 exactly once, weights must be positive and finite with a finite
// total, and prize fields must be consistent with each type.
func Validate(slots []domain.PrizeSlot) error {
	if len(slots) == 0 {
		return fmt.Errorf("%w: no slots", ErrInvalidTable)
	}
	if len(slots) > MaxSlots {
		return fmt.Errorf("%w: %d slots exceeds %d", ErrInvalidTable, len(slots), MaxSlots)
	}

	var total float64
	seen := make(map[int]struct{}, len(slots))
	for _, s := range slots {
		if s.SlotIndex < 0 || s.SlotIndex >= len(slots) {
			return fmt.Errorf("%w: slot %d: index outside 0..%d", ErrInvalidTable, s.SlotIndex, len(slots)-1)
		}
		if _, dup := seen[s.SlotIndex]; dup {
			return fmt.Errorf("%w: slot %d: duplicate index", ErrInvalidTable, s.SlotIndex)
		}
		seen[s.SlotIndex] = struct{}{}

		if !s.Type.IsValid() {
			return fmt.Errorf("%w: slot %d: unknown type %q", ErrInvalidTable, s.SlotIndex, s.Type)
		}
		if !(s.Weight > 0) || math.IsInf(s.Weight, 0) {
			return fmt.Errorf("%w: slot %d: weight must be positive and finite", ErrInvalidTable, s.SlotIndex)
		}
		total += s.Weight
		if s.Amount.IsNegative() || s.ValueUSD.IsNegative() {
			return fmt.Errorf("%w: slot %d: negative amount", ErrInvalidTable, s.SlotIndex)
		}

		switch s.Type {
		case domain.PrizeTypeNoPrize:
			if !s.Amount.IsZero() {
				return fmt.Errorf("%w: slot %d: NO_PRIZE must have zero amount", ErrInvalidTable, s.SlotIndex)
			}
		case domain.PrizeTypeLocked:
			if s.LockDuration == nil || !s.LockDuration.IsValid() {
				return fmt.Errorf("%w: slot %d: LOCKED requires a valid lock duration", ErrInvalidTable, s.SlotIndex)
			}
		}
		if s.Type != domain.PrizeTypeLocked && s.LockDuration != nil {
			return fmt.Errorf("%w: slot %d: lock duration only allowed on LOCKED", ErrInvalidTable, s.SlotIndex)
		}
	}
	if math.IsInf(total, 0) {
		return fmt.Errorf("%w: total weight overflows", ErrInvalidTable)
	}
	return nil
}
