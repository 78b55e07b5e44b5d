package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
)

// CourtRepo provides CRUD access to the courts table. Courts are the
// resource catalog the engine books against: descriptive fields and the
// hourly price may change, identity never does, and a court with
// reservations cannot be deleted.
type CourtRepo struct {
	db *sql.DB
}

// NewCourtRepo returns a CourtRepo bound to the given database.
func NewCourtRepo(db *sql.DB) *CourtRepo { return &CourtRepo{db: db} }

const courtColumns = `id, code, name, description, sport_type, price_cents_per_hour, created_at, updated_at`

func scanCourt(row interface{ Scan(...any) error }) (*model.Court, error) {
	var c model.Court
	var id string
	var desc sql.NullString
	if err := row.Scan(&id, &c.Code, &c.Name, &desc, &c.SportType, &c.PriceCentsPerHour, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	c.ID = parsed
	c.Description = desc.String
	return &c, nil
}

// Create inserts a new court. The caller supplies the ID and the
// already generated unique code.
func (r *CourtRepo) Create(ctx context.Context, c *model.Court) error {
	const q = `INSERT INTO courts (id, code, name, description, sport_type, price_cents_per_hour)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		c.ID.String(), c.Code, c.Name, c.Description, c.SportType, c.PriceCentsPerHour)
	return err
}

// Update rewrites the mutable fields of a court: name, description,
// sport type and price. ID and code are immutable.
func (r *CourtRepo) Update(ctx context.Context, c *model.Court) error {
	const q = `UPDATE courts SET name = ?, description = ?, sport_type = ?, price_cents_per_hour = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Description, c.SportType, c.PriceCentsPerHour, c.ID.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 for a no-op update, so confirm absence.
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns booking.ErrCourtNotFound when the court does not exist.
func (r *CourtRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Court, error) {
	const q = `SELECT ` + courtColumns + ` FROM courts WHERE id = ?`
	c, err := scanCourt(r.db.QueryRowContext(ctx, q, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrCourtNotFound
	}
	return c, err
}

// List returns all courts, optionally filtered by sport type, ordered
// by name for stable output.
func (r *CourtRepo) List(ctx context.Context, sportType string) ([]model.Court, error) {
	q := `SELECT ` + courtColumns + ` FROM courts`
	args := []any{}
	if sportType != "" {
		q += ` WHERE sport_type = ?`
		args = append(args, sportType)
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Court, 0)
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CodeExists probes whether a court code is already taken; used by the
// code generator's collision check.
func (r *CourtRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM courts WHERE code = ?`, code).Scan(&n)
	return n > 0, err
}

// Delete removes a court that no reservations reference. When
// reservations exist it returns ErrCourtInUse and leaves the row alone.
func (r *CourtRepo) Delete(ctx context.Context, id uuid.UUID) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reservations WHERE court_id = ?`, id.String()).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrCourtInUse
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM courts WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return booking.ErrCourtNotFound
	}
	return nil
}
