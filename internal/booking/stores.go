package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/court-reservation/internal/model"
)

// The engine talks to storage through these interfaces. The MySQL
// implementations live in internal/repository; tests substitute
// in-memory fakes. Every method is a bounded request/response call and
// storage failures propagate unchanged.

// CourtStore resolves court references.
type CourtStore interface {
	// GetByID returns ErrCourtNotFound when no such court exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Court, error)
}

// UserStore answers existence checks for requester references.
type UserStore interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// ReservationStore persists reservations. CreateConflictFree and
// UpdateConflictFree are the atomic check-then-write primitives: inside
// one serializing transaction they re-run the overlap rule against all
// non-cancelled reservations for the court and date (excluding the
// reservation itself on update) and abort with ErrSlotConflict when the
// slot is taken, or ErrConcurrentConflict when a racing writer made the
// transaction impossible to serialize.
//
// The status-bearing writes are compare-and-set: the caller passes the
// status it based its decision on, and the write lands only while the
// row still carries that status. A payment confirm or sweep committing
// between the caller's read and its write therefore surfaces as an
// error instead of being silently overwritten.
type ReservationStore interface {
	// GetByID returns ErrReservationNotFound when no such reservation exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CreateConflictFree(ctx context.Context, r *model.Reservation) error
	// UpdateConflictFree writes r only while the stored status still
	// equals from; a concurrent status change yields ErrConcurrentConflict.
	UpdateConflictFree(ctx context.Context, r *model.Reservation, from model.Status) error
	// UpdateStatus persists a transition already vetted by the state
	// machine against from. When the row moved on in the meantime it
	// returns ErrInvalidTransition if the move is illegal from the
	// current status, ErrConcurrentConflict otherwise.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status) error
	// MarkFinished flips the given reservations to FINISHED in one statement.
	MarkFinished(ctx context.Context, ids []uuid.UUID) error
	ListByCourtAndDate(ctx context.Context, courtID uuid.UUID, date time.Time) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	// DeleteWithPayments removes the reservation and any payment rows
	// referencing it in one transaction, payments first.
	DeleteWithPayments(ctx context.Context, id uuid.UUID) error
}

// PaymentStore persists payments. CreateConfirming is the all-or-nothing
// confirm primitive: in one transaction it re-checks that the
// reservation is still PENDING, inserts the payment row and moves the
// reservation to CONFIRMED. Either both rows land or neither does.
type PaymentStore interface {
	CreateConfirming(ctx context.Context, p *model.Payment) error
	// GetByReservation returns ErrPaymentNotFound when the reservation
	// has no payment record.
	GetByReservation(ctx context.Context, reservationID uuid.UUID) (*model.Payment, error)
	InvoiceNumberExists(ctx context.Context, code string) (bool, error)
}
