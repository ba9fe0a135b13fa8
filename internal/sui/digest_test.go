package sui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDigest(t *testing.T) {
	tests := []struct {
		name    string
		digest  string
		wantErr bool
	}{
		{name: "32 bytes", digest: "4vJ9JU1bJJE96FWSJKvHsmmFADCg4gpZQff4P3bkLKi"},
		{name: "leading zero byte", digest: "1thX6LZfHDZZKUs92febYZhYRcXddmzfzF2NvTkPNE"},
		{name: "31 bytes", digest: "tVojvhToWjQ8Xvo4UPx2Xz9eRy7auyYMmZBjc2XfN", wantErr: true},
		{name: "invalid alphabet", digest: "0OIl", wantErr: true},
		{name: "empty", digest: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDigest(tt.digest)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDigest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodeDigest_RoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{1}, DigestLength)
	d := EncodeDigest(raw)
	assert.Equal(t, "4vJ9JU1bJJE96FWSJKvHsmmFADCg4gpZQff4P3bkLKi", d)
	assert.NoError(t, ValidateDigest(d))
}
