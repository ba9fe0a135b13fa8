package sui

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"
)

const (
	// AddressLength is the size of a SUI address in bytes.
	AddressLength = 32

	// ed25519Flag is the signature scheme flag hashed into ed25519 addresses.
	ed25519Flag byte = 0x00

	ed25519PublicKeySize = 32
)

// NormalizeAddress validates a SUI address and returns it as 0x-prefixed,
// zero-padded lowercase hex. Short addresses such as "0x2" are left-padded.
func NormalizeAddress(addr string) (string, error) {
	s := strings.TrimSpace(addr)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || len(s) > AddressLength*2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	s = strings.ToLower(s)
	if _, err := hex.DecodeString(strings.Repeat("0", len(s)%2) + s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return "0x" + strings.Repeat("0", AddressLength*2-len(s)) + s, nil
}

// IsValidAddress reports whether addr can be normalized.
func IsValidAddress(addr string) bool {
	_, err := NormalizeAddress(addr)
	return err == nil
}

// ParsePublicKey decodes a base64 or hex ed25519 public key. Both the raw
// 32-byte form and the 33-byte flag-prefixed form used by SUI wallets are
// accepted. The key must be a valid point on the curve.
func ParsePublicKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)

	// Hex keys are 64 or 66 digits. Anything else is read as base64, so a
	// base64 key made only of hex digits is not misread.
	var (
		raw []byte
		err error
	)
	switch h := strings.TrimPrefix(encoded, "0x"); len(h) {
	case ed25519PublicKeySize * 2, (ed25519PublicKeySize + 1) * 2:
		raw, err = hex.DecodeString(h)
	default:
		raw, err = base64.StdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: not hex or base64", ErrInvalidPublicKey)
	}

	if len(raw) == ed25519PublicKeySize+1 {
		if raw[0] != ed25519Flag {
			return nil, fmt.Errorf("%w: unsupported scheme flag 0x%02x", ErrInvalidPublicKey, raw[0])
		}
		raw = raw[1:]
	}
	if len(raw) != ed25519PublicKeySize {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidPublicKey, len(raw))
	}

	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: not on curve", ErrInvalidPublicKey)
	}
	return raw, nil
}

// DeriveAddress computes the SUI address of an ed25519 public key:
// BLAKE2b-256(flag || pubkey).
func DeriveAddress(publicKey []byte) (string, error) {
	if len(publicKey) != ed25519PublicKeySize {
		return "", fmt.Errorf("%w: length %d", ErrInvalidPublicKey, len(publicKey))
	}
	if _, err := new(edwards25519.Point).SetBytes(publicKey); err != nil {
		return "", fmt.Errorf("%w: not on curve", ErrInvalidPublicKey)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("init blake2b: %w", err)
	}
	h.Write([]byte{ed25519Flag})
	h.Write(publicKey)

	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}

// ShortAddress abbreviates an address for public display, e.g. 0x7d20…b58e.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
