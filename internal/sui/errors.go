package sui

import "errors"

var (
	// ErrInvalidAddress is returned for strings that are not SUI addresses.
	ErrInvalidAddress = errors.New("invalid sui address")

	// ErrInvalidPublicKey is returned for keys that are not ed25519 curve points.
	ErrInvalidPublicKey = errors.New("invalid ed25519 public key")

	// ErrInvalidDigest is returned for strings that are not 32-byte base58 digests.
	ErrInvalidDigest = errors.New("invalid transaction digest")

	// ErrTransactionNotFound is returned when the node does not know a digest.
	ErrTransactionNotFound = errors.New("transaction not found")
)
