package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/court-reservation/internal/model"
)

// Code prefixes per entity type.
const (
	ReservationCodePrefix = "R"
	CourtCodePrefix       = "C"
	InvoiceCodePrefix     = "INV"
)

// Service is the booking workflow. It owns the reservation lifecycle:
// it is the only component that decides status changes, and it funnels
// every slot-taking write through the store's conflict-checked
// primitives so the no-overlap invariant holds under concurrent
// requests.
type Service struct {
	courts       CourtStore
	users        UserStore
	reservations ReservationStore
	payments     PaymentStore
	policy       Policy
	now          func() time.Time
}

// NewService wires the workflow. clock supplies the current time and
// may be nil, in which case time.Now is used; tests pass a fixed clock.
func NewService(courts CourtStore, users UserStore, reservations ReservationStore, payments PaymentStore, policy Policy, clock func() time.Time) *Service {
	if courts == nil || users == nil || reservations == nil || payments == nil {
		panic("nil store passed to booking.NewService")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		courts:       courts,
		users:        users,
		reservations: reservations,
		payments:     payments,
		policy:       policy,
		now:          clock,
	}
}

// CreateParams is a request for a new reservation slot.
type CreateParams struct {
	CourtID uuid.UUID
	UserID  uint64
	Date    time.Time
	Start   time.Duration
	End     time.Duration
}

// Create books a slot: resolve the court and user, validate the
// request, assign a code and persist the reservation PENDING. The
// overlap check happens inside CreateConflictFree, atomically with the
// insert.
func (s *Service) Create(ctx context.Context, p CreateParams) (*model.Reservation, error) {
	if _, err := s.courts.GetByID(ctx, p.CourtID); err != nil {
		return nil, err
	}
	ok, err := s.users.Exists(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	if err := s.policy.Validate(p.Date, p.Start, p.End, s.now()); err != nil {
		return nil, err
	}
	code, err := GenerateCode(ctx, ReservationCodePrefix, s.reservations.CodeExists)
	if err != nil {
		return nil, err
	}
	r := &model.Reservation{
		ID:      uuid.New(),
		Code:    code,
		CourtID: p.CourtID,
		UserID:  p.UserID,
		Date:    DayOf(p.Date),
		Start:   p.Start,
		End:     p.End,
		Status:  model.StatusPending,
	}
	if err := s.reservations.CreateConflictFree(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get loads a single reservation.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// EditParams carries the optional field changes of an edit request.
// Nil fields stay untouched; status is deliberately absent because it
// is never edited directly.
type EditParams struct {
	CourtID *uuid.UUID
	Date    *time.Time
	Start   *time.Duration
	End     *time.Duration
}

// Edit applies field changes to an existing reservation. The resulting
// slot passes the same validation as a new booking, and the conflict
// check excludes the reservation itself so an unchanged slot never
// collides with its own row.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, p EditParams) (*model.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CourtID != nil && *p.CourtID != r.CourtID {
		if _, err := s.courts.GetByID(ctx, *p.CourtID); err != nil {
			return nil, err
		}
		r.CourtID = *p.CourtID
	}
	if p.Date != nil {
		r.Date = DayOf(*p.Date)
	}
	if p.Start != nil {
		r.Start = *p.Start
	}
	if p.End != nil {
		r.End = *p.End
	}
	if err := s.policy.Validate(r.Date, r.Start, r.End, s.now()); err != nil {
		return nil, err
	}
	// Editing never changes status; the compare-and-set pins the row to
	// the status the edit was decided on, so a payment confirming in
	// the meantime cannot be overwritten back to PENDING.
	if err := s.reservations.UpdateConflictFree(ctx, r, r.Status); err != nil {
		return nil, err
	}
	return r, nil
}

// Cancel moves a PENDING or CONFIRMED reservation to CANCELLED.
// Cancelling is permitted regardless of timing; cancelling an already
// cancelled or finished reservation is an invalid transition.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	next, err := transition(r.Status, model.StatusCancelled)
	if err != nil {
		return err
	}
	return s.reservations.UpdateStatus(ctx, r.ID, r.Status, next)
}

// Reactivate returns a CANCELLED reservation to PENDING. The slot may
// have been taken while it sat cancelled, so the full conflict check
// runs again (excluding the reservation itself) before the status
// change is persisted.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := r.Status
	next, err := transition(prev, model.StatusPending)
	if err != nil {
		return nil, err
	}
	r.Status = next
	if err := s.reservations.UpdateConflictFree(ctx, r, prev); err != nil {
		return nil, err
	}
	return r, nil
}

// PaymentParams carries the payment details of a confirmation request.
type PaymentParams struct {
	AmountCents   int64
	Method        model.PaymentMethod
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// ConfirmPayment settles a PENDING reservation. It assigns an invoice
// number and hands the payment to CreateConfirming, which inserts the
// payment row and flips the reservation to CONFIRMED in a single
// transaction. A payment row never exists without the matching
// CONFIRMED status, and vice versa.
func (s *Service) ConfirmPayment(ctx context.Context, reservationID uuid.UUID, p PaymentParams) (*model.Payment, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if _, err := transition(r.Status, model.StatusConfirmed); err != nil {
		return nil, err
	}
	invoice, err := GenerateCode(ctx, InvoiceCodePrefix, s.payments.InvoiceNumberExists)
	if err != nil {
		return nil, err
	}
	pay := &model.Payment{
		ID:            uuid.New(),
		ReservationID: r.ID,
		InvoiceNumber: invoice,
		AmountCents:   p.AmountCents,
		Method:        p.Method,
		Status:        "CONFIRMED",
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		CustomerPhone: p.CustomerPhone,
		PaidAt:        s.now().UTC(),
	}
	if err := s.payments.CreateConfirming(ctx, pay); err != nil {
		return nil, err
	}
	return pay, nil
}

// Invoice returns the payment record for a reservation, or
// ErrPaymentNotFound when the reservation has not been paid.
func (s *Service) Invoice(ctx context.Context, reservationID uuid.UUID) (*model.Payment, error) {
	if _, err := s.reservations.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return s.payments.GetByReservation(ctx, reservationID)
}

// Delete removes a reservation entirely. Unlike Cancel this erases the
// row, so any payment referencing it is deleted first in the same
// transaction to avoid an orphaned invoice.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.reservations.GetByID(ctx, id); err != nil {
		return err
	}
	return s.reservations.DeleteWithPayments(ctx, id)
}

// ListByCourtAndDate returns the reservations for one court on one day,
// after sweeping elapsed PENDING entries to FINISHED.
func (s *Service) ListByCourtAndDate(ctx context.Context, courtID uuid.UUID, date time.Time) ([]model.Reservation, error) {
	if _, err := s.courts.GetByID(ctx, courtID); err != nil {
		return nil, err
	}
	list, err := s.reservations.ListByCourtAndDate(ctx, courtID, DayOf(date))
	if err != nil {
		return nil, err
	}
	return s.sweepFinished(ctx, list)
}

// ListByUser returns all reservations made by a user, newest first,
// after the same FINISHED sweep.
func (s *Service) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	list, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.sweepFinished(ctx, list)
}

// sweepFinished is the passive time-based transition: any PENDING
// reservation whose end instant has passed becomes FINISHED. It is
// idempotent and runs on every list read instead of being scattered
// across call sites. Confirmed and cancelled reservations are never
// touched.
func (s *Service) sweepFinished(ctx context.Context, list []model.Reservation) ([]model.Reservation, error) {
	now := s.now()
	var elapsed []uuid.UUID
	for i := range list {
		if list[i].Status == model.StatusPending && list[i].EndsAt().Before(now) {
			elapsed = append(elapsed, list[i].ID)
			list[i].Status = model.StatusFinished
		}
	}
	if len(elapsed) > 0 {
		if err := s.reservations.MarkFinished(ctx, elapsed); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Detail is the receipt view of a reservation: court name, interval and
// the price computed from the court's linear hourly rate.
type Detail struct {
	Reservation *model.Reservation
	CourtName   string
	PriceCents  int64
}

// Details loads a reservation together with its court and computes the
// slot price from the interval length.
func (s *Service) Details(ctx context.Context, id uuid.UUID) (*Detail, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	court, err := s.courts.GetByID(ctx, r.CourtID)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Reservation: r,
		CourtName:   court.Name,
		PriceCents:  SlotPriceCents(court.PriceCentsPerHour, r.End-r.Start),
	}, nil
}

// SlotPriceCents computes the price of an interval at a linear hourly
// rate, rounding to whole minutes.
func SlotPriceCents(hourlyCents int64, length time.Duration) int64 {
	minutes := int64(length / time.Minute)
	return hourlyCents * minutes / 60
}
