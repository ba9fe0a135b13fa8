package reporting

import "time"

// Report is the outcome of a prize selection simulation.
type Report struct {
	// Metadata
	GeneratedAt  time.Time
	TableVersion int64
	Draws        int

	// Per slot, in table order
	Slots []SlotRow

	// Goodness of fit over slots with positive weight
	ChiSquared       float64
	DegreesOfFreedom int
	CriticalValue    float64 // at Confidence
	Confidence       float64
	Pass             bool // ChiSquared <= CriticalValue

	// Payout per spin in reward token units
	ExpectedPayout float64
	ObservedPayout float64
}

// SlotRow compares the expected and observed frequency of one slot.
type SlotRow struct {
	SlotIndex         int
	PrizeType         string
	Amount            float64
	Weight            float64
	ExpectedFrequency float64 // weight / total weight
	ObservedFrequency float64
	ExpectedCount     float64
	ObservedCount     int
	Deviation         float64 // observed - expected frequency
}
