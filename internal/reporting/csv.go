package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders per-slot simulation rows as CSV string.
func RenderCSV(rows []SlotRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("slot_index,prize_type,amount,weight,expected_frequency,observed_frequency,")
	sb.WriteString("expected_count,observed_count,deviation\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%g,%g,%.6f,%.6f,%.2f,%d,%.6f\n",
			r.SlotIndex,
			r.PrizeType,
			r.Amount,
			r.Weight,
			r.ExpectedFrequency,
			r.ObservedFrequency,
			r.ExpectedCount,
			r.ObservedCount,
			r.Deviation,
		))
	}

	return sb.String()
}
