package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/examcell/hall-allocation/internal/duty"
	"github.com/examcell/hall-allocation/internal/model"
)

// InvigilatorRepo reads the staff directory.  Duty derivation uses it
// to resolve display names to employee identifiers; the allocation
// core never writes to it beyond roster administration.
type InvigilatorRepo struct {
	db *sql.DB
}

// NewInvigilatorRepo constructs an InvigilatorRepo with the given DB handle.
func NewInvigilatorRepo(db *sql.DB) *InvigilatorRepo { return &InvigilatorRepo{db: db} }

// Create inserts one staff member.
func (r *InvigilatorRepo) Create(ctx context.Context, inv *model.Invigilator) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO invigilators (emp_id, name, department, designation, is_active)
		 VALUES (?, ?, ?, ?, ?)`,
		inv.EmpID, inv.Name, inv.Department, inv.Designation, inv.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	inv.ID = uint64(id)
	return nil
}

// GetActive lists the active roster ordered by name.
func (r *InvigilatorRepo) GetActive(ctx context.Context) ([]model.Invigilator, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, emp_id, name, department, designation, is_active, created_at
		 FROM invigilators WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Invigilator
	for rows.Next() {
		var inv model.Invigilator
		if err := rows.Scan(&inv.ID, &inv.EmpID, &inv.Name, &inv.Department,
			&inv.Designation, &inv.IsActive, &inv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

// FindByName resolves a staff member by case-insensitive exact name
// match.  Returns duty.ErrStaffNotFound when no member matches.
func (r *InvigilatorRepo) FindByName(ctx context.Context, name string) (*model.Invigilator, error) {
	var inv model.Invigilator
	err := r.db.QueryRowContext(ctx,
		`SELECT id, emp_id, name, department, designation, is_active, created_at
		 FROM invigilators WHERE LOWER(name) = LOWER(?) LIMIT 1`, name).
		Scan(&inv.ID, &inv.EmpID, &inv.Name, &inv.Department,
			&inv.Designation, &inv.IsActive, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, duty.ErrStaffNotFound
		}
		return nil, err
	}
	return &inv, nil
}
