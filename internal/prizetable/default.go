package prizetable

import (
	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
)

// Default returns the wheel seeded on first start.
func Default() []domain.PrizeSlot {
	week, quarter, year := domain.LockOneWeek, domain.LockThreeMonth, domain.LockOneYear

	return []domain.PrizeSlot{
		{SlotIndex: 0, Type: domain.PrizeTypeNoPrize, Amount: decimal.Zero, ValueUSD: decimal.Zero, Weight: 35},
		{SlotIndex: 1, Type: domain.PrizeTypeLiquid, Amount: decimal.NewFromInt(100), ValueUSD: usd("0.10"), Weight: 25},
		{SlotIndex: 2, Type: domain.PrizeTypeLiquid, Amount: decimal.NewFromInt(500), ValueUSD: usd("0.50"), Weight: 12},
		{SlotIndex: 3, Type: domain.PrizeTypeLocked, Amount: decimal.NewFromInt(1000), ValueUSD: usd("1.00"), Weight: 10, LockDuration: &week},
		{SlotIndex: 4, Type: domain.PrizeTypeAltToken, Amount: decimal.NewFromInt(50), ValueUSD: usd("0.25"), Weight: 8},
		{SlotIndex: 5, Type: domain.PrizeTypeLocked, Amount: decimal.NewFromInt(5000), ValueUSD: usd("5.00"), Weight: 6, LockDuration: &quarter},
		{SlotIndex: 6, Type: domain.PrizeTypeLiquid, Amount: decimal.NewFromInt(10000), ValueUSD: usd("10.00"), Weight: 3},
		{SlotIndex: 7, Type: domain.PrizeTypeLocked, Amount: decimal.NewFromInt(100000), ValueUSD: usd("100.00"), Weight: 1, LockDuration: &year},
	}
}

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
