// Package booking implements the reservation scheduling engine: request
// validation, the slot conflict rule, the status state machine and the
// booking workflow that ties them together. It owns all writes to
// reservation status; handlers and repositories never change a status on
// their own.
package booking

import "errors"

// Validation failures. Each rule has its own sentinel so callers can
// surface a precise rejection reason. All of them are recoverable
// request errors, never storage faults.
var (
	// ErrPastDate is returned when the requested date is before today.
	ErrPastDate = errors.New("reservation date is in the past")
	// ErrStartNotBeforeEnd is returned when the interval is empty or inverted.
	ErrStartNotBeforeEnd = errors.New("start time must be before end time")
	// ErrLeadTime is returned when the slot starts too soon from now.
	ErrLeadTime = errors.New("reservation must be made further in advance")
	// ErrTooShort is returned when the interval is below the minimum duration.
	ErrTooShort = errors.New("reservation is shorter than the minimum duration")
)

var (
	// ErrSlotConflict is returned when the requested interval overlaps a
	// non-cancelled reservation for the same court and date.
	ErrSlotConflict = errors.New("slot conflicts with an existing reservation")
	// ErrConcurrentConflict is returned when a concurrent writer won the
	// slot while this request was in flight. The caller may retry from
	// validation.
	ErrConcurrentConflict = errors.New("concurrent reservation attempt detected")
	// ErrInvalidTransition is returned for any status change the state
	// machine does not permit.
	ErrInvalidTransition = errors.New("invalid reservation status transition")

	// ErrCourtNotFound, ErrUserNotFound and ErrReservationNotFound mark
	// missing collaborator records. They map to 404 at the HTTP layer.
	ErrCourtNotFound       = errors.New("court not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrPaymentNotFound is returned when no invoice exists for a reservation.
	ErrPaymentNotFound = errors.New("payment not found")
)

// IsValidation reports whether err is one of the request validation
// sentinels.
func IsValidation(err error) bool {
	return errors.Is(err, ErrPastDate) ||
		errors.Is(err, ErrStartNotBeforeEnd) ||
		errors.Is(err, ErrLeadTime) ||
		errors.Is(err, ErrTooShort)
}

// IsNotFound reports whether err marks a missing court, user,
// reservation or payment.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourtNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}
