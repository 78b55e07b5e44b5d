package booking_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/court-reservation/internal/booking"
)

var codePattern = regexp.MustCompile(`^R-[A-Z0-9]{8}$`)

func TestGenerateCode_Format(t *testing.T) {
	noneTaken := func(ctx context.Context, code string) (bool, error) { return false, nil }

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := booking.GenerateCode(context.Background(), "R", noneTaken)
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		assert.False(t, seen[code], "duplicate code %s in a small sample", code)
		seen[code] = true
	}
}

func TestGenerateCode_RetriesOnCollision(t *testing.T) {
	probes := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		probes++
		return probes <= 2, nil // first two candidates collide
	}
	code, err := booking.GenerateCode(context.Background(), "INV", exists)
	require.NoError(t, err)
	assert.Equal(t, 3, probes)
	assert.Regexp(t, `^INV-[A-Z0-9]{8}$`, code)
}

func TestGenerateCode_GivesUpAfterBoundedAttempts(t *testing.T) {
	probes := 0
	alwaysTaken := func(ctx context.Context, code string) (bool, error) {
		probes++
		return true, nil
	}
	_, err := booking.GenerateCode(context.Background(), "C", alwaysTaken)
	assert.Error(t, err)
	assert.Equal(t, 5, probes)
}

func TestGenerateCode_PropagatesProbeError(t *testing.T) {
	boom := assert.AnError
	exists := func(ctx context.Context, code string) (bool, error) { return false, boom }
	_, err := booking.GenerateCode(context.Background(), "R", exists)
	assert.ErrorIs(t, err, boom)
}
