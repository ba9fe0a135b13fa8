package sui

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// DigestLength is the size of a decoded transaction digest.
const DigestLength = 32

// ValidateDigest checks that digest is base58 and decodes to 32 bytes.
func ValidateDigest(digest string) error {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDigest)
	}
	raw, err := base58.Decode(digest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	if len(raw) != DigestLength {
		return fmt.Errorf("%w: decoded length %d", ErrInvalidDigest, len(raw))
	}
	return nil
}

// EncodeDigest renders raw digest bytes in the base58 form used by the RPC.
func EncodeDigest(raw []byte) string {
	return base58.Encode(raw)
}
