package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrizeType is the category of a prize slot on the wheel.
type PrizeType string

const (
	PrizeTypeLiquid   PrizeType = "LIQUID"
	PrizeTypeLocked   PrizeType = "LOCKED"
	PrizeTypeAltToken PrizeType = "ALT_TOKEN"
	PrizeTypeNoPrize  PrizeType = "NO_PRIZE"
)

// String returns the string representation of PrizeType.
func (t PrizeType) String() string {
	return string(t)
}

// IsValid checks if the prize type is a valid value.
func (t PrizeType) IsValid() bool {
	switch t {
	case PrizeTypeLiquid, PrizeTypeLocked, PrizeTypeAltToken, PrizeTypeNoPrize:
		return true
	}
	return false
}

// LockDuration is the vesting period of a LOCKED prize.
type LockDuration string

const (
	LockOneWeek    LockDuration = "1_WEEK"
	LockThreeMonth LockDuration = "3_MONTHS"
	LockOneYear    LockDuration = "1_YEAR"
)

// IsValid checks if the lock duration is a valid value.
func (d LockDuration) IsValid() bool {
	return d == LockOneWeek || d == LockThreeMonth || d == LockOneYear
}

// PrizeSlot is one position on the prize wheel.
type PrizeSlot struct {
	SlotIndex    int             `json:"slot_index"`
	Type         PrizeType       `json:"type"`
	Amount       decimal.Decimal `json:"amount"`                  // reward token units, zero for NO_PRIZE
	ValueUSD     decimal.Decimal `json:"value_usd"`               // estimated fiat value
	Weight       float64         `json:"weight"`                  // relative probability mass
	LockDuration *LockDuration   `json:"lock_duration,omitempty"` // LOCKED only
}

// PrizeTable is a versioned, ordered set of prize slots.
type PrizeTable struct {
	Version   int64       `json:"version"`
	Slots     []PrizeSlot `json:"slots"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Clone returns a deep copy of the table, so the caller can hand it to a
// selection without sharing the backing slice.
func (t *PrizeTable) Clone() *PrizeTable {
	if t == nil {
		return nil
	}
	c := *t
	c.Slots = CloneSlots(t.Slots)
	return &c
}

// CloneSlots copies a slot slice including lock duration pointers.
func CloneSlots(slots []PrizeSlot) []PrizeSlot {
	if slots == nil {
		return nil
	}
	out := make([]PrizeSlot, len(slots))
	for i, s := range slots {
		out[i] = s
		if s.LockDuration != nil {
			d := *s.LockDuration
			out[i].LockDuration = &d
		}
	}
	return out
}

// TotalWeight sums the weights of all slots.
func (t *PrizeTable) TotalWeight() float64 {
	var total float64
	for _, s := range t.Slots {
		total += s.Weight
	}
	return total
}
