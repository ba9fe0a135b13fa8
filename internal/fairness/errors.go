package fairness

import "errors"

var (
	// ErrEntropyUnavailable is returned when the secure random source fails.
	// A spin that hits this error must be aborted; there is no weaker fallback.
	ErrEntropyUnavailable = errors.New("secure entropy unavailable")

	// ErrEmptyPrizeTable is returned when a selection is attempted against a
	// table with no slots or a non-positive total weight.
	ErrEmptyPrizeTable = errors.New("prize table is empty or has no positive weight")
)
