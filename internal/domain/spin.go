package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpinResult is the output of one prize selection. It is never persisted
// directly; its fields are copied into a Spin record.
type SpinResult struct {
	ServerSeed  string    // hex-encoded 256-bit seed kept for audit
	RandomValue float64   // uniform draw in [0, 1]
	SlotIndex   int       // selected slot position
	Prize       PrizeSlot // snapshot of the selected slot
}

// Spin is the persisted record of one wheel spin.
type Spin struct {
	SpinID        string // uuid
	WalletAddress string
	ServerSeed    string
	SeedHash      string // sha256(server_seed), hex
	RandomValue   float64
	TableVersion  int64

	// Prize snapshot
	SlotIndex    int
	PrizeType    PrizeType
	Amount       decimal.Decimal
	ValueUSD     decimal.Decimal
	LockDuration *LockDuration

	// Referral
	ReferrerWallet   *string
	CommissionAmount decimal.Decimal

	CreatedAt time.Time
}

// NewSpin builds a Spin record from a selection result.
func NewSpin(spinID, wallet, seedHash string, tableVersion int64, r *SpinResult, createdAt time.Time) *Spin {
	return &Spin{
		SpinID:        spinID,
		WalletAddress: wallet,
		ServerSeed:    r.ServerSeed,
		SeedHash:      seedHash,
		RandomValue:   r.RandomValue,
		TableVersion:  tableVersion,
		SlotIndex:     r.SlotIndex,
		PrizeType:     r.Prize.Type,
		Amount:        r.Prize.Amount,
		ValueUSD:      r.Prize.ValueUSD,
		LockDuration:  r.Prize.LockDuration,
		CreatedAt:     createdAt,
	}
}

// IsWin reports whether the spin paid out anything.
func (s *Spin) IsWin() bool {
	return s.PrizeType != PrizeTypeNoPrize && s.Amount.IsPositive()
}
