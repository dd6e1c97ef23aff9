package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/examcell/hall-allocation/internal/model"
)

// ErrLabAllocationNotFound is returned when a lab allocation lookup
// yields no rows.
var ErrLabAllocationNotFound = errors.New("lab allocation not found")

// LabAllocationRepo persists lab allocations.  Unlike hall
// allocations there is no per-seat layout, only a contiguous roll
// range per lab, and the exam date is a typed DATE column.  The same
// composite unique index guards (lab, exam_date, exam_time, session,
// year).
type LabAllocationRepo struct {
	db *sql.DB
}

// NewLabAllocationRepo constructs a LabAllocationRepo with the given DB handle.
func NewLabAllocationRepo(db *sql.DB) *LabAllocationRepo { return &LabAllocationRepo{db: db} }

const labCols = `id, lab, exam_name, exam_date, session, exam_time, year, total_students,
	roll_start, roll_end, class_names, invigilators, expiry_date, created_at, updated_at`

// InsertBatch persists a validated lab batch in one transaction.
func (r *LabAllocationRepo) InsertBatch(ctx context.Context, labs []*model.LabAllocation) error {
	if len(labs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range labs {
		invJSON, err := json.Marshal(l.Invigilators)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO lab_allocations
			 (lab, exam_name, exam_date, session, exam_time, year, total_students,
			  roll_start, roll_end, class_names, invigilators, expiry_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.Lab, l.ExamName, l.ExamDate, l.Session, l.Time, l.Year, l.TotalStudents,
			l.RollStart, l.RollEnd, l.ClassNames, string(invJSON), l.ExpiryDate)
		if err != nil {
			if isDuplicate(err) {
				return ErrDuplicateAllocation
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		l.ID = uint64(id)
	}
	return tx.Commit()
}

// FindActive lists lab allocations that have not yet expired.
func (r *LabAllocationRepo) FindActive(ctx context.Context) ([]model.LabAllocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+labCols+` FROM lab_allocations
		 WHERE expiry_date >= UTC_TIMESTAMP() ORDER BY exam_date, lab`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LabAllocation
	for rows.Next() {
		l, err := scanLabAllocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	return result, rows.Err()
}

// GetByID retrieves one lab allocation.
func (r *LabAllocationRepo) GetByID(ctx context.Context, id uint64) (*model.LabAllocation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+labCols+` FROM lab_allocations WHERE id = ?`, id)
	l, err := scanLabAllocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLabAllocationNotFound
		}
		return nil, err
	}
	return l, nil
}

// YearsAt returns the cohort years already occupying one lab/timeslot.
// The incoming exam date arrives in its string form and is parsed to
// the typed DATE this table stores, so the comparison stays correct
// across the two allocation kinds.
func (r *LabAllocationRepo) YearsAt(ctx context.Context, lab, examDate, timeOfDay, session string) ([]string, error) {
	date, err := model.ParseExamDate(examDate)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT year FROM lab_allocations
		 WHERE lab = ? AND exam_date = ? AND exam_time = ? AND session = ?`,
		lab, date.Format("2006-01-02"), timeOfDay, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []string
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// UpdateInvigilators replaces the invigilator pair of one lab allocation.
func (r *LabAllocationRepo) UpdateInvigilators(ctx context.Context, id uint64, invigilators []string) error {
	invJSON, err := json.Marshal(invigilators)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE lab_allocations SET invigilators = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(invJSON), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Update rewrites every field of a lab allocation.
func (r *LabAllocationRepo) Update(ctx context.Context, l *model.LabAllocation) error {
	invJSON, err := json.Marshal(l.Invigilators)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE lab_allocations SET lab = ?, exam_name = ?, exam_date = ?, session = ?,
		 exam_time = ?, year = ?, total_students = ?, roll_start = ?, roll_end = ?,
		 class_names = ?, invigilators = ?, expiry_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		l.Lab, l.ExamName, l.ExamDate, l.Session, l.Time, l.Year, l.TotalStudents,
		l.RollStart, l.RollEnd, l.ClassNames, string(invJSON), l.ExpiryDate, l.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateAllocation
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one lab allocation.
func (r *LabAllocationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lab_allocations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLabAllocationNotFound
	}
	return nil
}

// ReapExpired deletes lab allocations past their expiry timestamp.
func (r *LabAllocationRepo) ReapExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM lab_allocations WHERE expiry_date < UTC_TIMESTAMP()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanLabAllocation(row rowScanner) (*model.LabAllocation, error) {
	var l model.LabAllocation
	var invJSON string
	if err := row.Scan(&l.ID, &l.Lab, &l.ExamName, &l.ExamDate, &l.Session, &l.Time,
		&l.Year, &l.TotalStudents, &l.RollStart, &l.RollEnd, &l.ClassNames, &invJSON,
		&l.ExpiryDate, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if invJSON != "" {
		if err := json.Unmarshal([]byte(invJSON), &l.Invigilators); err != nil {
			return nil, err
		}
	}
	return &l, nil
}
