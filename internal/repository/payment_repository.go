package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
)

// PaymentRepo provides data access to the payments table and implements
// booking.PaymentStore. Confirming a payment and flipping the
// reservation to CONFIRMED happen in one transaction, so a payment row
// can never exist for a reservation that stayed PENDING.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, reservation_id, invoice_number, amount_cents, method, status, customer_name, customer_email, customer_phone, paid_at, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*model.Payment, error) {
	var (
		p             model.Payment
		id            string
		reservationID string
		method        string
		email, phone  sql.NullString
	)
	if err := row.Scan(&id, &reservationID, &p.InvoiceNumber, &p.AmountCents,
		&method, &p.Status, &p.CustomerName, &email, &phone, &p.PaidAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	parsedRes, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, err
	}
	p.ID = parsedID
	p.ReservationID = parsedRes
	if p.Method, err = model.ParsePaymentMethod(method); err != nil {
		return nil, err
	}
	p.CustomerEmail = email.String
	p.CustomerPhone = phone.String
	return &p, nil
}

// CreateConfirming records a payment and moves its reservation from
// PENDING to CONFIRMED atomically. The reservation row is locked first
// so a concurrent cancel or second payment cannot slip between the
// status read and the write; a reservation in any state other than
// PENDING yields booking.ErrInvalidTransition.
func (r *PaymentRepo) CreateConfirming(ctx context.Context, p *model.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var rawStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM reservations WHERE id = ? FOR UPDATE`, p.ReservationID.String()).Scan(&rawStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrReservationNotFound
	}
	if err != nil {
		if isSerializationFailure(err) {
			return booking.ErrConcurrentConflict
		}
		return err
	}
	status, err := model.ParseStatus(rawStatus)
	if err != nil {
		return err
	}
	if status != model.StatusPending {
		return booking.ErrInvalidTransition
	}

	const ins = `INSERT INTO payments (id, reservation_id, invoice_number, amount_cents, method, status, customer_name, customer_email, customer_phone, paid_at)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, ins,
		p.ID.String(), p.ReservationID.String(), p.InvoiceNumber, p.AmountCents,
		string(p.Method), p.Status, p.CustomerName,
		nullable(p.CustomerEmail), nullable(p.CustomerPhone), p.PaidAt)
	if err != nil {
		if mysqlErrNumber(err, mysqlErrDupEntry) || isSerializationFailure(err) {
			return booking.ErrConcurrentConflict
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'CONFIRMED' WHERE id = ?`, p.ReservationID.String()); err != nil {
		if isSerializationFailure(err) {
			return booking.ErrConcurrentConflict
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return booking.ErrConcurrentConflict
		}
		return err
	}
	committed = true
	return nil
}

// GetByReservation returns the payment recorded for a reservation, or
// booking.ErrPaymentNotFound when the reservation was never paid.
func (r *PaymentRepo) GetByReservation(ctx context.Context, reservationID uuid.UUID) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id = ?`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, reservationID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrPaymentNotFound
	}
	return p, err
}

// InvoiceNumberExists probes whether an invoice number is already
// taken; used by the code generator's collision check.
func (r *PaymentRepo) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM payments WHERE invoice_number = ?`, number).Scan(&n)
	return n > 0, err
}

// nullable maps an empty string to SQL NULL so optional contact fields
// are not stored as empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
