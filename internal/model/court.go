package model

import (
	"time"

	"github.com/google/uuid"
)

// Court is a bookable physical court. Descriptive fields and the price
// may change after creation; the identity fields (ID, Code) never do.
// Courts are not hard-deleted while reservations reference them.
//
// Fields:
//  ID                – primary key (UUID, courts.id).
//  Code              – short human-readable code, unique (courts.code,
//                      e.g. "C-AB12CD34").
//  Name              – display name.
//  Description       – optional free text.
//  SportType         – sport category tag (e.g. "FOOTBALL", "TENNIS").
//  PriceCentsPerHour – linear hourly rate in cents, never negative.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Court struct {
	ID                uuid.UUID
	Code              string
	Name              string
	Description       string
	SportType         string
	PriceCentsPerHour int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
