package prizetable

import (
	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
)

// SlotChance is a slot with its selection probability in percent.
type SlotChance struct {
	domain.PrizeSlot
	Chance decimal.Decimal `json:"chance"` // percent, 2 decimal places
}

// Chances returns each slot with weight/total*100 rounded to 2 places.
// Slots with non-positive weight get a zero chance.
func Chances(slots []domain.PrizeSlot) []SlotChance {
	var total float64
	for _, s := range slots {
		if s.Weight > 0 {
			total += s.Weight
		}
	}

	out := make([]SlotChance, len(slots))
	for i, s := range slots {
		out[i] = SlotChance{PrizeSlot: domain.CloneSlots(slots[i : i+1])[0], Chance: decimal.Zero}
		if total > 0 && s.Weight > 0 {
			out[i].Chance = decimal.NewFromFloat(s.Weight / total * 100).Round(2)
		}
	}
	return out
}
