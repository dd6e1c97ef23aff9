package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/examcell/hall-allocation/internal/model"
)

// StaffDutyRepo persists derived staff-duty rows.  Rows are only ever
// written by the duty synchronizer, which deletes the full set for an
// allocation and reinserts it; nothing here patches rows in place.
type StaffDutyRepo struct {
	db *sql.DB
}

// NewStaffDutyRepo constructs a StaffDutyRepo with the given DB handle.
func NewStaffDutyRepo(db *sql.DB) *StaffDutyRepo { return &StaffDutyRepo{db: db} }

const dutyCols = `id, staff_id, staff_name, allocation_ref, exam_name, cat_number,
	subject_code, subject_name, exam_date, session, hall_number, year, semester,
	duty_start_time, duty_end_time, duty_hours, allocation_created_date, created_at`

// DeleteByAllocation removes every duty row owned by one allocation
// reference.  Safe to call when there are no rows.
func (r *StaffDutyRepo) DeleteByAllocation(ctx context.Context, ref string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM staff_duties WHERE allocation_ref = ?`, ref)
	return err
}

// InsertBatch inserts duty rows in a single statement.
func (r *StaffDutyRepo) InsertBatch(ctx context.Context, duties []model.StaffDuty) error {
	if len(duties) == 0 {
		return nil
	}
	query := `INSERT INTO staff_duties
		(staff_id, staff_name, allocation_ref, exam_name, cat_number, subject_code,
		 subject_name, exam_date, session, hall_number, year, semester,
		 duty_start_time, duty_end_time, duty_hours, allocation_created_date) VALUES `
	args := make([]interface{}, 0, len(duties)*16)
	for i, d := range duties {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, d.StaffID, d.StaffName, d.AllocationRef, d.ExamName,
			d.CATNumber, d.SubjectCode, d.SubjectName, d.ExamDate, d.Session,
			d.HallNumber, d.Year, d.Semester, d.DutyStartTime, d.DutyEndTime,
			d.DutyHours, d.AllocationCreatedDate)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListAll returns every duty row, newest exam first.
func (r *StaffDutyRepo) ListAll(ctx context.Context) ([]model.StaffDuty, error) {
	return r.list(ctx, `SELECT `+dutyCols+` FROM staff_duties ORDER BY exam_date DESC`)
}

// ListByStaffID returns the duties of one employee id, newest first.
func (r *StaffDutyRepo) ListByStaffID(ctx context.Context, staffID string) ([]model.StaffDuty, error) {
	return r.list(ctx,
		`SELECT `+dutyCols+` FROM staff_duties WHERE staff_id = ? ORDER BY exam_date DESC`,
		strings.ToUpper(strings.TrimSpace(staffID)))
}

// ListByStaffName returns duties whose staff name contains the given
// fragment, case-insensitively, newest first.
func (r *StaffDutyRepo) ListByStaffName(ctx context.Context, name string) ([]model.StaffDuty, error) {
	return r.list(ctx,
		`SELECT `+dutyCols+` FROM staff_duties
		 WHERE LOWER(staff_name) LIKE LOWER(?) ORDER BY exam_date DESC`,
		"%"+strings.TrimSpace(name)+"%")
}

// DutyTotals aggregates one employee's duty load.
type DutyTotals struct {
	StaffID        string
	StaffName      string
	TotalDuties    int
	TotalHours     float64
	UpcomingDuties int
}

// Totals aggregates duty count, hours and upcoming-duty count per
// staff id across all duty rows.
func (r *StaffDutyRepo) Totals(ctx context.Context) ([]DutyTotals, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT staff_id, MIN(staff_name), COUNT(*), COALESCE(SUM(duty_hours), 0),
		        COALESCE(SUM(exam_date >= UTC_TIMESTAMP()), 0)
		 FROM staff_duties GROUP BY staff_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DutyTotals
	for rows.Next() {
		var t DutyTotals
		if err := rows.Scan(&t.StaffID, &t.StaffName, &t.TotalDuties, &t.TotalHours,
			&t.UpcomingDuties); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *StaffDutyRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.StaffDuty, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.StaffDuty
	for rows.Next() {
		var d model.StaffDuty
		if err := rows.Scan(&d.ID, &d.StaffID, &d.StaffName, &d.AllocationRef,
			&d.ExamName, &d.CATNumber, &d.SubjectCode, &d.SubjectName, &d.ExamDate,
			&d.Session, &d.HallNumber, &d.Year, &d.Semester, &d.DutyStartTime,
			&d.DutyEndTime, &d.DutyHours, &d.AllocationCreatedDate, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
