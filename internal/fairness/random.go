// Package fairness implements the prize wheel draw: a cryptographically
// secure uniform value mapped onto a weighted prize table.
package fairness

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
)

const (
	// SeedBytes is the amount of entropy in a server seed (256 bits).
	SeedBytes = 32

	// drawBytes is the amount of entropy behind one uniform draw.
	drawBytes = 8
)

// Generator draws seeds and uniform values from an entropy source.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	entropy io.Reader
}

// NewGenerator creates a Generator reading from entropy.
// A nil reader selects crypto/rand.Reader.
func NewGenerator(entropy io.Reader) *Generator {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{entropy: entropy}
}

var defaultGenerator = NewGenerator(nil)

// GenerateSecureRandom returns a hex seed built from 256 bits of OS entropy
// and a value in [0, 1] built from 64 further bits divided by MaxUint64.
//
// The upper bound is inclusive: an all-ones draw yields exactly 1.0, and
// float64 rounding maps the top 2^11 integers onto 1.0 as well.
func GenerateSecureRandom() (string, float64, error) {
	return defaultGenerator.GenerateSecureRandom()
}

// GenerateSecureRandom draws a seed and a uniform value from the generator's source.
func (g *Generator) GenerateSecureRandom() (string, float64, error) {
	seed := make([]byte, SeedBytes)
	if _, err := io.ReadFull(g.entropy, seed); err != nil {
		return "", 0, fmt.Errorf("%w: read seed: %w", ErrEntropyUnavailable, err)
	}

	var draw [drawBytes]byte
	if _, err := io.ReadFull(g.entropy, draw[:]); err != nil {
		return "", 0, fmt.Errorf("%w: read draw: %w", ErrEntropyUnavailable, err)
	}

	return hex.EncodeToString(seed), uint64ToUnit(binary.BigEndian.Uint64(draw[:])), nil
}

func uint64ToUnit(n uint64) float64 {
	return float64(n) / float64(math.MaxUint64)
}
