package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a player identified by a SUI wallet address.
type User struct {
	WalletAddress    string          // normalized 0x-prefixed lowercase hex
	SpinBalance      int64           // spin credits available
	TokenBalance     decimal.Decimal // accumulated prize tokens
	ReferrerWallet   *string         // wallet that referred this user (nullable)
	LastDailyGrantAt *time.Time      // last free spin grant (nullable)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasReferrer reports whether the user was referred by another wallet.
func (u *User) HasReferrer() bool {
	return u.ReferrerWallet != nil && *u.ReferrerWallet != ""
}
