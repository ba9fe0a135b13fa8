package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Prize Selection Simulation\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Table version: %d | Draws: %d\n\n", r.TableVersion, r.Draws))

	// Slots
	sb.WriteString("## Slot Frequencies\n\n")
	if len(r.Slots) > 0 {
		sb.WriteString("| Slot | Type | Amount | Weight | Expected | Observed | Count | Deviation |\n")
		sb.WriteString("|------|------|--------|--------|----------|----------|-------|-----------|\n")
		for _, s := range r.Slots {
			sb.WriteString(fmt.Sprintf("| %d | %s | %g | %g | %.4f | %.4f | %d | %+.4f |\n",
				s.SlotIndex, s.PrizeType, s.Amount, s.Weight,
				s.ExpectedFrequency, s.ObservedFrequency, s.ObservedCount, s.Deviation))
		}
	} else {
		sb.WriteString("No slots.\n")
	}
	sb.WriteString("\n")

	// Goodness of fit
	sb.WriteString("## Goodness of Fit\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Chi-squared | %.4f |\n", r.ChiSquared))
	sb.WriteString(fmt.Sprintf("| Degrees of freedom | %d |\n", r.DegreesOfFreedom))
	sb.WriteString(fmt.Sprintf("| Critical value (%.0f%%) | %.4f |\n", r.Confidence*100, r.CriticalValue))
	status := "FAIL"
	if r.Pass {
		status = "PASS"
	}
	sb.WriteString(fmt.Sprintf("| Status | %s |\n", status))
	sb.WriteString("\n")

	// Payout
	sb.WriteString("## Payout per Spin\n\n")
	sb.WriteString(fmt.Sprintf("Expected: %.4f | Observed: %.4f\n", r.ExpectedPayout, r.ObservedPayout))

	return sb.String()
}
