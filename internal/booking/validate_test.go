package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/court-reservation/internal/booking"
)

func TestPolicyValidate(t *testing.T) {
	policy := booking.Policy{
		MinLeadTime: 10 * time.Minute,
		MinDuration: 60 * time.Minute,
	}
	// Fixed "now": 2024-06-01 08:00 UTC.
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		date    time.Time
		start   time.Duration
		end     time.Duration
		wantErr error
	}{
		{
			name:    "past date rejected",
			date:    today.AddDate(0, 0, -1),
			start:   15 * time.Hour,
			end:     16 * time.Hour,
			wantErr: booking.ErrPastDate,
		},
		{
			name:    "start equal to end rejected",
			date:    today,
			start:   15 * time.Hour,
			end:     15 * time.Hour,
			wantErr: booking.ErrStartNotBeforeEnd,
		},
		{
			name:    "inverted interval rejected",
			date:    today,
			start:   16 * time.Hour,
			end:     15 * time.Hour,
			wantErr: booking.ErrStartNotBeforeEnd,
		},
		{
			name:    "slot already started rejected",
			date:    today,
			start:   7 * time.Hour,
			end:     9 * time.Hour,
			wantErr: booking.ErrLeadTime,
		},
		{
			name:    "slot inside the lead window rejected",
			date:    today,
			start:   8*time.Hour + 5*time.Minute,
			end:     9*time.Hour + 5*time.Minute,
			wantErr: booking.ErrLeadTime,
		},
		{
			name:    "slot exactly at the lead boundary accepted",
			date:    today,
			start:   8*time.Hour + 10*time.Minute,
			end:     9*time.Hour + 10*time.Minute,
			wantErr: nil,
		},
		{
			name:    "too short rejected",
			date:    today,
			start:   15 * time.Hour,
			end:     15*time.Hour + 30*time.Minute,
			wantErr: booking.ErrTooShort,
		},
		{
			name:    "exactly minimum duration accepted",
			date:    today,
			start:   15 * time.Hour,
			end:     16 * time.Hour,
			wantErr: nil,
		},
		{
			name:    "tomorrow accepted",
			date:    today.AddDate(0, 0, 1),
			start:   9 * time.Hour,
			end:     11 * time.Hour,
			wantErr: nil,
		},
		{
			name: "past date wins over bad interval",
			// Both rule 1 and rule 2 are violated; the first rule decides.
			date:    today.AddDate(0, 0, -1),
			start:   16 * time.Hour,
			end:     15 * time.Hour,
			wantErr: booking.ErrPastDate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Validate(tc.date, tc.start, tc.end, now)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.True(t, booking.IsValidation(err))
			}
		})
	}
}

func TestPolicyValidate_ZeroThresholdsDisableRules(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// With no lead time or minimum duration, a short slot later today passes.
	err := booking.Policy{}.Validate(today, 8*time.Hour+1*time.Minute, 8*time.Hour+2*time.Minute, now)
	assert.NoError(t, err)
}
