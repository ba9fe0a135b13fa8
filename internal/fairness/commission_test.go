package fairness

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateReferralCommission(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		percent string
		want    string
	}{
		{name: "floors fractional commission", amount: "999", percent: "10", want: "99"},
		{name: "exact", amount: "1000", percent: "10", want: "100"},
		{name: "below one unit", amount: "9", percent: "10", want: "0"},
		{name: "zero prize", amount: "0", percent: "10", want: "0"},
		{name: "fractional percent", amount: "12345", percent: "2.5", want: "308"},
		{name: "fractional prize", amount: "150.75", percent: "10", want: "15"},
		{name: "negative clamps to zero", amount: "-50", percent: "10", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateReferralCommission(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.percent))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCalculateReferralCommission_NeverRoundsUp(t *testing.T) {
	percent := decimal.NewFromInt(10)
	for amount := int64(0); amount < 2000; amount++ {
		got := CalculateReferralCommission(decimal.NewFromInt(amount), percent)
		assert.True(t, got.LessThanOrEqual(decimal.NewFromInt(amount).Div(decimal.NewFromInt(10))))
		assert.True(t, got.Equal(got.Floor()))
	}
}
