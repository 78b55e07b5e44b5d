package booking

import (
	"context"
	"crypto/rand"
	"fmt"
)

// Human-readable codes look like "R-7K2PQ9XA": a prefix, a dash and
// eight uppercase alphanumerics. They exist because UUIDs are unusable
// on a receipt; the code is a secondary unique key, never a replacement
// for the primary id.
const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8

	// maxCodeAttempts bounds the collision retry loop. With 36^8
	// combinations per prefix a collision is already unlikely; hitting
	// the bound means something is wrong with storage, not with luck.
	maxCodeAttempts = 5
)

// ExistsFunc probes storage for a code that is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// GenerateCode produces a unique "<prefix>-<8 chars>" code, retrying on
// collision up to maxCodeAttempts times. The exists probe is the only
// side channel; generation itself writes nothing.
func GenerateCode(ctx context.Context, prefix string, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode(prefix)
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("code generation exhausted %d attempts for prefix %q", maxCodeAttempts, prefix)
}

// randomCode draws codeLength characters from codeAlphabet using
// crypto/rand. Bytes >= 252 are rejected so the modulo stays unbiased
// (252 is the largest multiple of 36 below 256).
func randomCode(prefix string) (string, error) {
	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 252 {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == codeLength {
				break
			}
		}
	}
	return prefix + "-" + string(out), nil
}
