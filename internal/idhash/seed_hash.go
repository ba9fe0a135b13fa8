package idhash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// ComputeSeedHash computes the audit commitment for a server seed.
// Formula: SHA256(server_seed) over the hex seed string.
// Returns hex-encoded hash (64 characters).
func ComputeSeedHash(serverSeed string) string {
	hash := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(hash[:])
}

// VerifySeedHash reports whether seedHash commits to serverSeed.
func VerifySeedHash(serverSeed, seedHash string) bool {
	want := ComputeSeedHash(serverSeed)
	return subtle.ConstantTimeCompare([]byte(want), []byte(seedHash)) == 1
}
