package fairness

import "spin-rewards/internal/domain"

// SelectPrizeSlot maps randomValue onto slots with probability proportional
// to weight. Each slot owns a contiguous sub-interval of [0, totalWeight);
// the first slot whose cumulative weight reaches randomValue*totalWeight wins.
//
// Slots with non-positive weight own an empty interval and are never picked.
// If rounding leaves the walk short of the target, the last selectable slot
// is returned. That is the last positive-weight slot, not necessarily the
// last slot of the sequence; the two only differ for tables that
// prizetable.Validate rejects.
func SelectPrizeSlot(slots []domain.PrizeSlot, randomValue float64) (domain.PrizeSlot, error) {
	var total float64
	last := -1
	for i, s := range slots {
		if s.Weight > 0 {
			total += s.Weight
			last = i
		}
	}
	if last < 0 || total <= 0 {
		return domain.PrizeSlot{}, ErrEmptyPrizeTable
	}

	target := randomValue * total
	var cumulative float64
	for _, s := range slots {
		if s.Weight <= 0 {
			continue
		}
		cumulative += s.Weight
		if cumulative >= target {
			return s, nil
		}
	}

	return slots[last], nil
}
