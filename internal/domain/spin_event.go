package domain

// SpinEvent is an append-only analytics row emitted for every spin.
type SpinEvent struct {
	SpinID        string
	WalletAddress string
	SlotIndex     int
	PrizeType     PrizeType
	Amount        float64
	ValueUSD      float64
	TableVersion  int64
	Timestamp     int64 // unix ms
}

// SlotCount is the number of spins that landed on a slot.
type SlotCount struct {
	SlotIndex int   `json:"slot_index"`
	Count     int64 `json:"count"`
}
