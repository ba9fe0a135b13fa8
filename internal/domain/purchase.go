package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records spins bought with an on-chain SUI payment.
// TxDigest is unique: a payment can be credited only once.
type Purchase struct {
	PurchaseID    string
	WalletAddress string
	TxDigest      string          // base58 transaction digest
	AmountMist    decimal.Decimal // SUI received by the treasury, in MIST
	SpinsCredited int64
	CreatedAt     time.Time
}
