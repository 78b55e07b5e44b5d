package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshUsable(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	revoked := sql.NullTime{Time: now.Add(-time.Hour), Valid: true}
	live := sql.NullTime{}

	cases := []struct {
		name      string
		expiresAt time.Time
		revokedAt sql.NullTime
		want      bool
	}{
		{"live token before expiry", now.Add(time.Hour), live, true},
		{"expiry is inclusive", now, live, true},
		{"expired token", now.Add(-time.Second), live, false},
		{"revoked token", now.Add(time.Hour), revoked, false},
		{"revoked and expired", now.Add(-time.Hour), revoked, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, refreshUsable(tc.expiresAt, tc.revokedAt, now))
		})
	}
}
