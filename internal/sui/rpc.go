package sui

import (
	"context"

	"github.com/shopspring/decimal"
)

// SUICoinType is the fully qualified coin type of native SUI.
const SUICoinType = "0x2::sui::SUI"

// RPCClient defines the SUI JSON-RPC calls used by the service.
type RPCClient interface {
	// GetTransactionBlock retrieves an executed transaction by digest.
	// Returns ErrTransactionNotFound if the node does not know it.
	GetTransactionBlock(ctx context.Context, digest string) (*TransactionBlock, error)
}

// TransactionBlock is the subset of an executed transaction the service reads.
type TransactionBlock struct {
	Digest         string
	Sender         string
	Status         string // "success" | "failure"
	Error          string
	TimestampMs    int64
	BalanceChanges []BalanceChange
}

// Succeeded reports whether the transaction executed successfully.
func (t *TransactionBlock) Succeeded() bool {
	return t.Status == "success"
}

// BalanceChange is one owner's balance delta for a coin type.
// Amount is signed and in the coin's smallest unit (MIST for SUI).
type BalanceChange struct {
	Owner    string
	CoinType string
	Amount   decimal.Decimal
}

// ReceivedBy sums positive SUI balance changes credited to owner.
func (t *TransactionBlock) ReceivedBy(owner string) decimal.Decimal {
	total := decimal.Zero
	for _, bc := range t.BalanceChanges {
		if bc.Owner == owner && bc.CoinType == SUICoinType && bc.Amount.IsPositive() {
			total = total.Add(bc.Amount)
		}
	}
	return total
}
