package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/campusbook/facility-reservation/internal/model"
)

// FacilityRepo encapsulates all database queries related to facilities.  It
// depends on a sql.DB connection pool which is configured at startup.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo constructs a FacilityRepo with the provided DB handle.
// This allows dependency injection of the database in tests and at startup.
func NewFacilityRepo(db *sql.DB) *FacilityRepo {
	return &FacilityRepo{db: db}
}

const facilityCols = "id, name, location, capacity, type, created_at, updated_at"

func scanFacility(row interface{ Scan(...any) error }, f *model.Facility) error {
	return row.Scan(&f.ID, &f.Name, &f.Location, &f.Capacity, &f.Type, &f.CreatedAt, &f.UpdatedAt)
}

// Create inserts a new facility.  On success the ID, CreatedAt and UpdatedAt
// fields are populated from the stored row.
func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	const q = "INSERT INTO facilities (name, location, capacity, type) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, f.Name, f.Location, f.Capacity, f.Type)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return scanFacility(r.db.QueryRowContext(ctx,
		"SELECT "+facilityCols+" FROM facilities WHERE id = ?", f.ID), f)
}

// GetByID fetches a facility by its ID.  Returns ErrFacilityNotFound when
// no row matches.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (*model.Facility, error) {
	var f model.Facility
	err := scanFacility(r.db.QueryRowContext(ctx,
		"SELECT "+facilityCols+" FROM facilities WHERE id = ?", id), &f)
	if err == sql.ErrNoRows {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns all facilities ordered by name.
func (r *FacilityRepo) List(ctx context.Context) ([]model.Facility, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+facilityCols+" FROM facilities ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Facility{}
	for rows.Next() {
		var f model.Facility
		if err := scanFacility(rows, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a facility.  An empty Type leaves the
// stored category unchanged.  Returns ErrFacilityNotFound for unknown ids.
func (r *FacilityRepo) Update(ctx context.Context, f *model.Facility) error {
	const q = `UPDATE facilities
	           SET name = ?, location = ?, capacity = ?, type = IF(? = '', type, ?)
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, f.Name, f.Location, f.Capacity, f.Type, f.Type, f.ID); err != nil {
		return err
	}
	// RowsAffected is 0 both for unknown ids and for no-op updates, so
	// re-read the row to distinguish and to refresh timestamps.
	err := scanFacility(r.db.QueryRowContext(ctx,
		"SELECT "+facilityCols+" FROM facilities WHERE id = ?", f.ID), f)
	if err == sql.ErrNoRows {
		return ErrFacilityNotFound
	}
	return err
}

// Delete removes a facility.  Deleting a facility that still has bookings
// fails with ErrFacilityInUse via the RESTRICT foreign key; unknown ids fail
// with ErrFacilityNotFound.
func (r *FacilityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM facilities WHERE id = ?", id)
	if err != nil {
		// MySQL error 1451: cannot delete a parent row referenced by a
		// foreign key.
		if strings.Contains(err.Error(), "1451") {
			return ErrFacilityInUse
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFacilityNotFound
	}
	return nil
}
