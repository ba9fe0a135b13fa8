package reporting

import (
	"context"
	"errors"
	"math"
	"time"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/fairness"
)

// DefaultConfidence is the confidence level of the goodness-of-fit check.
const DefaultConfidence = 0.95

// checkEvery is how many draws run between context checks.
const checkEvery = 4096

// ErrNoDraws is returned when a simulation is asked for zero draws.
var ErrNoDraws = errors.New("draw count must be positive")

// Generator runs kernel draws against a prize table and reports the result.
type Generator struct {
	table     *domain.PrizeTable
	generator *fairness.Generator
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a simulation over table. A nil generator uses the
// secure random source.
func NewGenerator(table *domain.PrizeTable, gen *fairness.Generator) *Generator {
	if gen == nil {
		gen = fairness.NewGenerator(nil)
	}
	return &Generator{
		table:     table.Clone(),
		generator: gen,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate performs draws spins and compares observed slot frequencies
// with the weights.
func (g *Generator) Generate(ctx context.Context, draws int) (*Report, error) {
	if draws <= 0 {
		return nil, ErrNoDraws
	}

	counts := make(map[int]int, len(g.table.Slots))
	var paid float64
	for i := 0; i < draws; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		res, err := g.generator.ExecuteSpin(g.table.Slots)
		if err != nil {
			return nil, err
		}
		counts[res.SlotIndex]++
		paid += res.Prize.Amount.InexactFloat64()
	}

	return g.buildReport(counts, paid, draws), nil
}

func (g *Generator) buildReport(counts map[int]int, paid float64, draws int) *Report {
	var total float64
	for _, s := range g.table.Slots {
		if s.Weight > 0 {
			total += s.Weight
		}
	}

	r := &Report{
		GeneratedAt:    g.now(),
		TableVersion:   g.table.Version,
		Draws:          draws,
		Confidence:     DefaultConfidence,
		ObservedPayout: paid / float64(draws),
	}

	n := float64(draws)
	positive := 0
	for _, s := range g.table.Slots {
		row := SlotRow{
			SlotIndex:     s.SlotIndex,
			PrizeType:     s.Type.String(),
			Amount:        s.Amount.InexactFloat64(),
			Weight:        s.Weight,
			ObservedCount: counts[s.SlotIndex],
		}
		if s.Weight > 0 && total > 0 {
			row.ExpectedFrequency = s.Weight / total
			positive++
		}
		row.ExpectedCount = row.ExpectedFrequency * n
		row.ObservedFrequency = float64(row.ObservedCount) / n
		row.Deviation = row.ObservedFrequency - row.ExpectedFrequency

		if row.ExpectedCount > 0 {
			d := float64(row.ObservedCount) - row.ExpectedCount
			r.ChiSquared += d * d / row.ExpectedCount
		}
		r.ExpectedPayout += row.ExpectedFrequency * row.Amount
		r.Slots = append(r.Slots, row)
	}

	r.DegreesOfFreedom = positive - 1
	if r.DegreesOfFreedom > 0 {
		r.CriticalValue = ChiSquaredCritical(r.DegreesOfFreedom, zScore95)
		r.Pass = r.ChiSquared <= r.CriticalValue
	} else {
		// A single reachable slot always matches
		r.Pass = true
	}
	return r
}

// zScore95 is the one-sided standard normal quantile at 0.95.
const zScore95 = 1.6448536269514722

// ChiSquaredCritical approximates the upper critical value of the
// chi-squared distribution with k degrees of freedom (Wilson-Hilferty).
func ChiSquaredCritical(k int, z float64) float64 {
	kf := float64(k)
	a := 2 / (9 * kf)
	return kf * math.Pow(1-a+z*math.Sqrt(a), 3)
}
