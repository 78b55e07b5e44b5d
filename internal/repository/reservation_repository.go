package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
)

// ReservationRepo provides data access to the reservations table and
// implements booking.ReservationStore. The slot-taking writes run
// inside a transaction that locks the court row, which serializes the
// check-then-write sequence per court: two concurrent requests for an
// overlapping slot cannot both pass the overlap probe. All timestamp
// columns are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, code, court_id, user_id, date, start_time, end_time, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		res        model.Reservation
		id         string
		courtID    string
		start, end string
		status     string
	)
	if err := row.Scan(&id, &res.Code, &courtID, &res.UserID, &res.Date,
		&start, &end, &status, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	parsedCourt, err := uuid.Parse(courtID)
	if err != nil {
		return nil, err
	}
	res.ID = parsedID
	res.CourtID = parsedCourt
	if res.Start, err = booking.ParseClock(start); err != nil {
		return nil, err
	}
	if res.End, err = booking.ParseClock(end); err != nil {
		return nil, err
	}
	if res.Status, err = model.ParseStatus(status); err != nil {
		return nil, err
	}
	res.Date = res.Date.UTC()
	return &res, nil
}

// GetByID returns booking.ErrReservationNotFound when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrReservationNotFound
	}
	return res, err
}

// CodeExists probes whether a reservation code is already taken.
func (r *ReservationRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM reservations WHERE code = ?`, code).Scan(&n)
	return n > 0, err
}

// CreateConflictFree inserts a reservation after re-checking the
// overlap rule inside a serializing transaction.
func (r *ReservationRepo) CreateConflictFree(ctx context.Context, res *model.Reservation) error {
	return r.writeConflictFree(ctx, res, nil)
}

// UpdateConflictFree rewrites a reservation's slot fields and status
// after the same overlap re-check, excluding the reservation itself
// from the conflict set. The write is a compare-and-set on from: if a
// concurrent payment confirm or sweep moved the row's status since the
// caller read it, nothing is written and ErrConcurrentConflict comes
// back.
func (r *ReservationRepo) UpdateConflictFree(ctx context.Context, res *model.Reservation, from model.Status) error {
	return r.writeConflictFree(ctx, res, &from)
}

func (r *ReservationRepo) writeConflictFree(ctx context.Context, res *model.Reservation, from *model.Status) error {
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

	// Lock the court row for the duration of the transaction. This
	// serializes all slot writes for one court, so the overlap probe
	// below and the write form one atomic step.
	var lockID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM courts WHERE id = ? FOR UPDATE`, res.CourtID.String()).Scan(&lockID)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrCourtNotFound
	}
	if err != nil {
		if isSerializationFailure(err) {
			return booking.ErrConcurrentConflict
		}
		return err
	}

	// The probe mirrors booking.Overlaps on half-open intervals.
	q := `SELECT COUNT(1) FROM reservations
	      WHERE court_id = ? AND date = ? AND status <> 'CANCELLED'
	        AND ? < end_time AND ? > start_time`
	args := []any{
		res.CourtID.String(),
		res.Date.Format(booking.DateLayout),
		booking.FormatClock(res.Start),
		booking.FormatClock(res.End),
	}
	if from != nil {
		q += ` AND id <> ?`
		args = append(args, res.ID.String())
	}
	var conflicts int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&conflicts); err != nil {
		if isSerializationFailure(err) {
			return booking.ErrConcurrentConflict
		}
		return err
	}
	if conflicts > 0 {
		return booking.ErrSlotConflict
	}

	if from != nil {
		// The status guard makes the write a compare-and-set: it only
		// lands while the row still carries the status the caller read.
		const upd = `UPDATE reservations
		             SET court_id = ?, date = ?, start_time = ?, end_time = ?, status = ?
		             WHERE id = ? AND status = ?`
		result, err := tx.ExecContext(ctx, upd,
			res.CourtID.String(), res.Date.Format(booking.DateLayout),
			booking.FormatClock(res.Start), booking.FormatClock(res.End),
			string(res.Status), res.ID.String(), string(*from))
		if err != nil {
			if isSerializationFailure(err) {
				return booking.ErrConcurrentConflict
			}
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// Either the row is gone, its status moved on, or the
			// update was a same-values no-op (MySQL reports 0 affected
			// rows for those too). Re-read under the lock to tell.
			var rawStatus string
			err := tx.QueryRowContext(ctx,
				`SELECT status FROM reservations WHERE id = ?`, res.ID.String()).Scan(&rawStatus)
			if errors.Is(err, sql.ErrNoRows) {
				return booking.ErrReservationNotFound
			}
			if err != nil {
				return err
			}
			if rawStatus != string(*from) {
				return booking.ErrConcurrentConflict
			}
		}
	} else {
		const ins = `INSERT INTO reservations (id, code, court_id, user_id, date, start_time, end_time, status)
		             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, ins,
			res.ID.String(), res.Code, res.CourtID.String(), res.UserID,
			res.Date.Format(booking.DateLayout),
			booking.FormatClock(res.Start), booking.FormatClock(res.End),
			string(res.Status))
		if err != nil {
			// A duplicate code means another writer inserted between the
			// generator's uniqueness probe and this insert.
			if mysqlErrNumber(err, mysqlErrDupEntry) || isSerializationFailure(err) {
				return booking.ErrConcurrentConflict
			}
			return err
		}
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

// UpdateStatus persists a status change decided by the booking state
// machine. The write is guarded on from: when the row's status moved
// on since the caller read it, the stale decision is never
// materialized. A re-read then distinguishes a missing row, a move
// that is illegal from the current status (ErrInvalidTransition) and a
// plain lost race (ErrConcurrentConflict).
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ? AND status = ?`,
		string(to), id.String(), string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !booking.CanTransition(current.Status, to) {
			return booking.ErrInvalidTransition
		}
		return booking.ErrConcurrentConflict
	}
	return nil
}

// MarkFinished flips the given PENDING reservations to FINISHED in a
// single statement. Rows that changed status since they were read are
// skipped by the status guard, which keeps the sweep idempotent.
func (r *ReservationRepo) MarkFinished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id.String())
	}
	q := `UPDATE reservations SET status = 'FINISHED'
	      WHERE status = 'PENDING' AND id IN (` + strings.Join(placeholders, ",") + `)`
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// ListByCourtAndDate returns all reservations for a court on a day,
// ordered by start time.
func (r *ReservationRepo) ListByCourtAndDate(ctx context.Context, courtID uuid.UUID, date time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE court_id = ? AND date = ?
	           ORDER BY start_time`
	return r.list(ctx, q, courtID.String(), date.Format(booking.DateLayout))
}

// ListByUser returns all reservations made by a user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE user_id = ?
	           ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// DeleteWithPayments removes a reservation and any payment referencing
// it in one transaction, payments first, so no invoice is ever left
// pointing at a missing reservation.
func (r *ReservationRepo) DeleteWithPayments(ctx context.Context, id uuid.UUID) error {
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE reservation_id = ?`, id.String()); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrReservationNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
