package booking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
)

// ----- in-memory store fakes -----
//
// The fakes enforce the same contracts as the MySQL repositories: the
// conflict-checked writes hold a lock across check and write, and
// CreateConfirming flips the reservation status in the same critical
// section as the payment insert.

type fakeCourts struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.Court
}

func newFakeCourts() *fakeCourts { return &fakeCourts{rows: map[uuid.UUID]*model.Court{}} }

func (f *fakeCourts) add(c *model.Court) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[c.ID] = c
}

func (f *fakeCourts) GetByID(_ context.Context, id uuid.UUID) (*model.Court, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, booking.ErrCourtNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeUsers struct {
	mu  sync.Mutex
	ids map[uint64]bool
}

func newFakeUsers(ids ...uint64) *fakeUsers {
	f := &fakeUsers{ids: map[uint64]bool{}}
	for _, id := range ids {
		f.ids[id] = true
	}
	return f
}

func (f *fakeUsers) Exists(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ids[id], nil
}

type fakeReservations struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*model.Reservation
	payments map[uuid.UUID]*model.Payment // keyed by reservation id
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{
		rows:     map[uuid.UUID]*model.Reservation{},
		payments: map[uuid.UUID]*model.Payment{},
	}
}

func (f *fakeReservations) conflictLocked(r *model.Reservation) bool {
	if r.Status == model.StatusCancelled {
		return false
	}
	for _, o := range f.rows {
		if o.ID == r.ID || o.CourtID != r.CourtID || !o.Date.Equal(r.Date) {
			continue
		}
		if o.Status == model.StatusCancelled {
			continue
		}
		if booking.Overlaps(r.Start, r.End, o.Start, o.End) {
			return true
		}
	}
	return false
}

func (f *fakeReservations) GetByID(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, booking.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservations) CodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservations) CreateConflictFree(_ context.Context, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictLocked(r) {
		return booking.ErrSlotConflict
	}
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeReservations) UpdateConflictFree(_ context.Context, r *model.Reservation, from model.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[r.ID]
	if !ok {
		return booking.ErrReservationNotFound
	}
	// Compare-and-set: the write lands only while the row still
	// carries the status the caller based its decision on.
	if stored.Status != from {
		return booking.ErrConcurrentConflict
	}
	if f.conflictLocked(r) {
		return booking.ErrSlotConflict
	}
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return booking.ErrReservationNotFound
	}
	if r.Status != from {
		if !booking.CanTransition(r.Status, to) {
			return booking.ErrInvalidTransition
		}
		return booking.ErrConcurrentConflict
	}
	r.Status = to
	return nil
}

func (f *fakeReservations) MarkFinished(_ context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if r, ok := f.rows[id]; ok && r.Status == model.StatusPending {
			r.Status = model.StatusFinished
		}
	}
	return nil
}

func (f *fakeReservations) ListByCourtAndDate(_ context.Context, courtID uuid.UUID, date time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.rows {
		if r.CourtID == courtID && r.Date.Equal(date) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservations) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservations) DeleteWithPayments(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return booking.ErrReservationNotFound
	}
	delete(f.payments, id)
	delete(f.rows, id)
	return nil
}

type fakePayments struct {
	res *fakeReservations
}

func (f *fakePayments) CreateConfirming(_ context.Context, p *model.Payment) error {
	f.res.mu.Lock()
	defer f.res.mu.Unlock()
	r, ok := f.res.rows[p.ReservationID]
	if !ok {
		return booking.ErrReservationNotFound
	}
	if r.Status != model.StatusPending {
		return booking.ErrInvalidTransition
	}
	cp := *p
	f.res.payments[p.ReservationID] = &cp
	r.Status = model.StatusConfirmed
	return nil
}

func (f *fakePayments) GetByReservation(_ context.Context, reservationID uuid.UUID) (*model.Payment, error) {
	f.res.mu.Lock()
	defer f.res.mu.Unlock()
	p, ok := f.res.payments[reservationID]
	if !ok {
		return nil, booking.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) InvoiceNumberExists(_ context.Context, code string) (bool, error) {
	f.res.mu.Lock()
	defer f.res.mu.Unlock()
	for _, p := range f.res.payments {
		if p.InvoiceNumber == code {
			return true, nil
		}
	}
	return false, nil
}

// ----- fixture -----

type fixture struct {
	svc    *booking.Service
	courts *fakeCourts
	users  *fakeUsers
	res    *fakeReservations
	pay    *fakePayments
	court  *model.Court
	now    time.Time
}

const testUserID = uint64(7)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	courts := newFakeCourts()
	users := newFakeUsers(testUserID)
	res := newFakeReservations()
	pay := &fakePayments{res: res}

	court := &model.Court{
		ID:                uuid.New(),
		Code:              "C-TESTCRT1",
		Name:              "Court 1",
		SportType:         "TENNIS",
		PriceCentsPerHour: 2500,
	}
	courts.add(court)

	// Fixed clock: 2024-06-01 08:00 UTC.
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	policy := booking.Policy{MinLeadTime: 10 * time.Minute, MinDuration: 60 * time.Minute}
	svc := booking.NewService(courts, users, res, pay, policy, func() time.Time { return now })

	return &fixture{svc: svc, courts: courts, users: users, res: res, pay: pay, court: court, now: now}
}

func (f *fixture) day() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

func (f *fixture) create(t *testing.T, start, end time.Duration) *model.Reservation {
	t.Helper()
	r, err := f.svc.Create(context.Background(), booking.CreateParams{
		CourtID: f.court.ID,
		UserID:  testUserID,
		Date:    f.day(),
		Start:   start,
		End:     end,
	})
	require.NoError(t, err)
	return r
}

// ----- tests -----

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)

	r := f.create(t, at(15, 0), at(16, 0))

	assert.Equal(t, model.StatusPending, r.Status)
	assert.Regexp(t, `^R-[A-Z0-9]{8}$`, r.Code)
	stored, err := f.res.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestCreate_UnknownCourtAndUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), booking.CreateParams{
		CourtID: uuid.New(), UserID: testUserID, Date: f.day(), Start: at(15, 0), End: at(16, 0),
	})
	assert.ErrorIs(t, err, booking.ErrCourtNotFound)

	_, err = f.svc.Create(context.Background(), booking.CreateParams{
		CourtID: f.court.ID, UserID: 999, Date: f.day(), Start: at(15, 0), End: at(16, 0),
	})
	assert.ErrorIs(t, err, booking.ErrUserNotFound)
}

func TestCreate_RejectsPastDateRegardlessOfOtherFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), booking.CreateParams{
		CourtID: f.court.ID, UserID: testUserID,
		Date: f.day().AddDate(0, 0, -1), Start: at(15, 0), End: at(16, 0),
	})
	assert.ErrorIs(t, err, booking.ErrPastDate)
}

func TestCreate_SlotConflictAndAdjacency(t *testing.T) {
	f := newFixture(t)
	f.create(t, at(15, 0), at(16, 0))

	// Overlapping request loses.
	_, err := f.svc.Create(context.Background(), booking.CreateParams{
		CourtID: f.court.ID, UserID: testUserID, Date: f.day(), Start: at(15, 30), End: at(16, 30),
	})
	assert.ErrorIs(t, err, booking.ErrSlotConflict)

	// Back-to-back slot is free under half-open semantics.
	r, err := f.svc.Create(context.Background(), booking.CreateParams{
		CourtID: f.court.ID, UserID: testUserID, Date: f.day(), Start: at(16, 0), End: at(17, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, r.Status)
}

func TestCancel_FreesSlotForRebooking(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, at(15, 0), at(16, 0))

	require.NoError(t, f.svc.Cancel(context.Background(), a.ID))

	// The exact same slot can be booked again.
	b, err := f.svc.Create(context.Background(), booking.CreateParams{
		CourtID: f.court.ID, UserID: testUserID, Date: f.day(), Start: at(15, 0), End: at(16, 0),
	})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Code, b.Code)

	// Cancelling twice is an invalid transition, not a no-op.
	assert.ErrorIs(t, f.svc.Cancel(context.Background(), a.ID), booking.ErrInvalidTransition)
}

func TestEdit_OwnSlotDoesNotConflictWithItself(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, at(15, 0), at(16, 0))

	// Re-submitting the identical slot must not trip the conflict check.
	got, err := f.svc.Edit(context.Background(), r.ID, booking.EditParams{})
	require.NoError(t, err)
	assert.Equal(t, r.Start, got.Start)

	// Shifting within the own slot's shadow is fine too.
	newEnd := at(16, 30)
	got, err = f.svc.Edit(context.Background(), r.ID, booking.EditParams{End: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, newEnd, got.End)
}

func TestEdit_ConflictsWithOtherReservation(t *testing.T) {
	f := newFixture(t)
	f.create(t, at(15, 0), at(16, 0))
	other := f.create(t, at(16, 0), at(17, 0))

	newStart := at(15, 30)
	newEnd := at(16, 30)
	_, err := f.svc.Edit(context.Background(), other.ID, booking.EditParams{Start: &newStart, End: &newEnd})
	assert.ErrorIs(t, err, booking.ErrSlotConflict)
}

func TestEdit_RevalidatesSlot(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, at(15, 0), at(16, 0))

	badEnd := at(15, 30)
	_, err := f.svc.Edit(context.Background(), r.ID, booking.EditParams{End: &badEnd})
	assert.ErrorIs(t, err, booking.ErrTooShort)
}

func TestReactivate(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, at(15, 0), at(16, 0))
	require.NoError(t, f.svc.Cancel(context.Background(), a.ID))

	// Slot still free: reactivation succeeds and returns PENDING.
	got, err := f.svc.Reactivate(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)

	// Cancel again, let someone take the slot, then try once more.
	require.NoError(t, f.svc.Cancel(context.Background(), a.ID))
	f.create(t, at(15, 0), at(16, 0))

	_, err = f.svc.Reactivate(context.Background(), a.ID)
	assert.ErrorIs(t, err, booking.ErrSlotConflict)

	// Reactivating a non-cancelled reservation is an invalid transition.
	b := f.create(t, at(18, 0), at(19, 0))
	_, err = f.svc.Reactivate(context.Background(), b.ID)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestConfirmPayment_AtomicWithStatus(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, at(15, 0), at(16, 0))

	pay, err := f.svc.ConfirmPayment(context.Background(), r.ID, booking.PaymentParams{
		AmountCents:  2500,
		Method:       model.MethodCard,
		CustomerName: "Ada",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^INV-[A-Z0-9]{8}$`, pay.InvoiceNumber)
	assert.Equal(t, "CONFIRMED", pay.Status)

	stored, err := f.res.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, stored.Status)

	// Paying twice is rejected and leaves the first invoice in place.
	_, err = f.svc.ConfirmPayment(context.Background(), r.ID, booking.PaymentParams{AmountCents: 2500, Method: model.MethodCash})
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	inv, err := f.svc.Invoice(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, pay.InvoiceNumber, inv.InvoiceNumber)
}

func TestConfirmPayment_RejectedForCancelled(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, at(15, 0), at(16, 0))
	require.NoError(t, f.svc.Cancel(context.Background(), r.ID))

	_, err := f.svc.ConfirmPayment(context.Background(), r.ID, booking.PaymentParams{AmountCents: 2500, Method: model.MethodCash})
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	// No payment row may exist for a reservation that never confirmed.
	_, err = f.svc.Invoice(context.Background(), r.ID)
	assert.ErrorIs(t, err, booking.ErrPaymentNotFound)
}

func TestListByCourtAndDate_SweepsElapsedPending(t *testing.T) {
	f := newFixture(t)
	elapsed := f.create(t, at(9, 0), at(10, 0))   // ends 10:00
	upcoming := f.create(t, at(15, 0), at(16, 0)) // ends 16:00
	paid := f.create(t, at(10, 0), at(11, 0))     // ends 11:00, will be confirmed
	_, err := f.svc.ConfirmPayment(context.Background(), paid.ID, booking.PaymentParams{AmountCents: 2500, Method: model.MethodCash})
	require.NoError(t, err)

	// Move the clock past noon and re-wire the service around it.
	later := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := booking.Policy{MinLeadTime: 10 * time.Minute, MinDuration: 60 * time.Minute}
	svc := booking.NewService(f.courts, f.users, f.res, f.pay, policy, func() time.Time { return later })

	list, err := svc.ListByCourtAndDate(context.Background(), f.court.ID, f.day())
	require.NoError(t, err)

	byID := map[uuid.UUID]model.Status{}
	for _, r := range list {
		byID[r.ID] = r.Status
	}
	assert.Equal(t, model.StatusFinished, byID[elapsed.ID])
	assert.Equal(t, model.StatusPending, byID[upcoming.ID])
	// The sweep never touches CONFIRMED reservations, elapsed or not.
	assert.Equal(t, model.StatusConfirmed, byID[paid.ID])

	// The transition was persisted, and a second sweep is a no-op.
	stored, err := f.res.GetByID(context.Background(), elapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, stored.Status)

	again, err := svc.ListByCourtAndDate(context.Background(), f.court.ID, f.day())
	require.NoError(t, err)
	for _, r := range again {
		assert.Equal(t, byID[r.ID], r.Status)
	}

	// A finished reservation can no longer be cancelled.
	assert.ErrorIs(t, svc.Cancel(context.Background(), elapsed.ID), booking.ErrInvalidTransition)
}

func TestListByUser_Sweeps(t *testing.T) {
	f := newFixture(t)
	elapsed := f.create(t, at(9, 0), at(10, 0))

	later := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := booking.Policy{MinLeadTime: 10 * time.Minute, MinDuration: 60 * time.Minute}
	svc := booking.NewService(f.courts, f.users, f.res, f.pay, policy, func() time.Time { return later })

	list, err := svc.ListByUser(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, elapsed.ID, list[0].ID)
	assert.Equal(t, model.StatusFinished, list[0].Status)

	_, err = svc.ListByUser(context.Background(), 999)
	assert.ErrorIs(t, err, booking.ErrUserNotFound)
}

func TestDelete_RemovesPaymentFirst(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, at(15, 0), at(16, 0))
	_, err := f.svc.ConfirmPayment(context.Background(), r.ID, booking.PaymentParams{AmountCents: 2500, Method: model.MethodCard})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), r.ID))

	_, err = f.res.GetByID(context.Background(), r.ID)
	assert.ErrorIs(t, err, booking.ErrReservationNotFound)
	_, err = f.pay.GetByReservation(context.Background(), r.ID)
	assert.ErrorIs(t, err, booking.ErrPaymentNotFound)
}

func TestConcurrentCreate_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), booking.CreateParams{
				CourtID: f.court.ID, UserID: testUserID, Date: f.day(), Start: at(15, 0), End: at(16, 0),
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, booking.ErrSlotConflict)
		}
	}
	assert.Equal(t, 1, winners)

	// The invariant holds after the race: one non-cancelled reservation.
	list, err := f.res.ListByCourtAndDate(context.Background(), f.court.ID, f.day())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// confirmDuringEdit lets a payment confirmation commit between the
// edit's read and its conflict-checked write, the narrow window where
// a stale full-row rewrite used to drag a CONFIRMED reservation back
// to PENDING.
type confirmDuringEdit struct {
	*fakeReservations
	pay  *fakePayments
	once sync.Once
}

func (s *confirmDuringEdit) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	r, err := s.fakeReservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.once.Do(func() {
		_ = s.pay.CreateConfirming(ctx, &model.Payment{
			ID:            uuid.New(),
			ReservationID: id,
			InvoiceNumber: "INV-RACED001",
			AmountCents:   2500,
			Method:        model.MethodCard,
			Status:        "CONFIRMED",
			CustomerName:  "Ada",
			PaidAt:        time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		})
	})
	return r, nil
}

func TestEdit_RejectedWhenPaymentConfirmsConcurrently(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, at(15, 0), at(16, 0))

	racing := &confirmDuringEdit{fakeReservations: f.res, pay: f.pay}
	policy := booking.Policy{MinLeadTime: 10 * time.Minute, MinDuration: 60 * time.Minute}
	svc := booking.NewService(f.courts, f.users, racing, f.pay, policy, func() time.Time { return f.now })

	newEnd := at(17, 0)
	_, err := svc.Edit(context.Background(), r.ID, booking.EditParams{End: &newEnd})
	assert.ErrorIs(t, err, booking.ErrConcurrentConflict)

	// The confirmation survives: the payment row and the CONFIRMED
	// status stay consistent, and the slot fields were not rewritten.
	stored, getErr := f.res.GetByID(context.Background(), r.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.StatusConfirmed, stored.Status)
	assert.Equal(t, at(16, 0), stored.End)
	_, payErr := f.pay.GetByReservation(context.Background(), r.ID)
	assert.NoError(t, payErr)
}

// finishDuringCancel lets the passive sweep mark the reservation
// FINISHED between the cancel's read and its status write.
type finishDuringCancel struct {
	*fakeReservations
	once sync.Once
}

func (s *finishDuringCancel) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	r, err := s.fakeReservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.once.Do(func() {
		_ = s.fakeReservations.MarkFinished(ctx, []uuid.UUID{id})
	})
	return r, nil
}

func TestCancel_RejectedWhenSweepFinishesConcurrently(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, at(15, 0), at(16, 0))

	racing := &finishDuringCancel{fakeReservations: f.res}
	policy := booking.Policy{MinLeadTime: 10 * time.Minute, MinDuration: 60 * time.Minute}
	svc := booking.NewService(f.courts, f.users, racing, f.pay, policy, func() time.Time { return f.now })

	// Cancel decided on PENDING, but FINISHED landed first; the stale
	// CANCELLED must not be materialized over it.
	err := svc.Cancel(context.Background(), r.ID)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	stored, getErr := f.res.GetByID(context.Background(), r.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.StatusFinished, stored.Status)
}

func TestDetails_ComputesLinearPrice(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, at(15, 0), at(16, 30)) // 90 minutes at 2500/h

	det, err := f.svc.Details(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, f.court.Name, det.CourtName)
	assert.Equal(t, int64(3750), det.PriceCents)
}
