package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputePurchaseID computes a deterministic purchase_id using SHA256.
// Formula: SHA256(tx_digest|wallet_address)
// Returns hex-encoded hash (64 characters).
func ComputePurchaseID(txDigest, walletAddress string) string {
	data := fmt.Sprintf("%s|%s", txDigest, walletAddress)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
