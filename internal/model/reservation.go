package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status enumerates the reservation lifecycle states. The database stores
// the value as a VARCHAR, so every read boundary must go through
// ParseStatus rather than trusting the raw column value.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusFinished  Status = "FINISHED"
)

// ParseStatus converts a raw string into a Status. Unknown values are
// rejected so that a corrupted or hand-edited row never leaks an
// unrecognized state into the engine.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusFinished:
		return s, nil
	default:
		return "", fmt.Errorf("unknown reservation status %q", raw)
	}
}

// Reservation records a user's claim on a court for a date and a
// half-open time interval [Start, End). Start and End are offsets from
// midnight of Date; Date itself carries no time-of-day component.
//
// Fields:
//  ID        – primary key (UUID, reservations.id).
//  Code      – short human-readable code, unique across reservations
//              (reservations.code, e.g. "R-7K2PQ9XA").
//  CourtID   – court being reserved (reservations.court_id).
//  UserID    – requesting user (reservations.user_id).
//  Date      – calendar day of the reservation, midnight UTC.
//  Start     – interval start as an offset from midnight.
//  End       – interval end as an offset from midnight; always after Start.
//  Status    – lifecycle state (see Status).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uuid.UUID
	Code      string
	CourtID   uuid.UUID
	UserID    uint64
	Date      time.Time
	Start     time.Duration
	End       time.Duration
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartsAt returns the absolute instant at which the reservation begins.
func (r *Reservation) StartsAt() time.Time { return r.Date.Add(r.Start) }

// EndsAt returns the absolute instant at which the reservation ends.
// A PENDING reservation whose EndsAt is in the past is eligible for the
// FINISHED sweep.
func (r *Reservation) EndsAt() time.Time { return r.Date.Add(r.End) }
