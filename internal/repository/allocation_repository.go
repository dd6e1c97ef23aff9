package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/examcell/hall-allocation/internal/model"
)

// ErrAllocationNotFound is returned when an allocation lookup yields
// no rows.
var ErrAllocationNotFound = errors.New("allocation not found")

// AllocationRepo persists hall allocations and their embedded seat
// assignments.  The table carries a composite unique index over
// (room, exam_date, exam_time, session, year); inserts that trip it
// surface as ErrDuplicateAllocation.  Seat assignment rows are owned
// by their allocation and regenerated with it, never edited alone.
type AllocationRepo struct {
	db *sql.DB
}

// NewAllocationRepo constructs an AllocationRepo with the given DB handle.
func NewAllocationRepo(db *sql.DB) *AllocationRepo { return &AllocationRepo{db: db} }

const allocationCols = `id, exam_name, exam_date, exam_time, cat, session, subject_with_code,
	year, semester, hall_no, room, total_students, roll_numbers, roll_start, roll_end,
	invigilators, is_unallocated, expiry_date, created_at, updated_at`

// InsertBatch persists a validated batch in one transaction.  Either
// every allocation in the batch is written, students included, or
// none is.  On success each allocation's ID is populated.
func (r *AllocationRepo) InsertBatch(ctx context.Context, allocs []*model.Allocation) error {
	if len(allocs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range allocs {
		invJSON, err := json.Marshal(a.Invigilators)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO allocations
			 (exam_name, exam_date, exam_time, cat, session, subject_with_code, year, semester,
			  hall_no, room, total_students, roll_numbers, roll_start, roll_end,
			  invigilators, is_unallocated, expiry_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ExamName, a.ExamDate, a.Time, a.CAT, a.Session, a.SubjectWithCode, a.Year,
			a.Semester, a.HallNo, a.Room, a.TotalStudents, a.RollNumbers, a.RollStart,
			a.RollEnd, string(invJSON), a.IsUnallocated, a.ExpiryDate)
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
		a.ID = uint64(id)
		if err := insertStudentsTx(ctx, tx, a.ID, a.Students); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// FindActive lists allocations that have not yet expired, students
// included.
func (r *AllocationRepo) FindActive(ctx context.Context) ([]model.Allocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+allocationCols+` FROM allocations
		 WHERE expiry_date >= UTC_TIMESTAMP() ORDER BY exam_date, room`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		students, err := r.studentsFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Students = students
	}
	return result, nil
}

// GetByID retrieves one allocation with its seat assignments.
func (r *AllocationRepo) GetByID(ctx context.Context, id uint64) (*model.Allocation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+allocationCols+` FROM allocations WHERE id = ?`, id)
	a, err := scanAllocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAllocationNotFound
		}
		return nil, err
	}
	students, err := r.studentsFor(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Students = students
	return a, nil
}

// YearsAt returns the cohort years of persisted allocations sharing
// one (room, exam date, time, session) slot.  Hall allocations store
// the exam date as a string, so the comparison is on the raw form.
func (r *AllocationRepo) YearsAt(ctx context.Context, room, examDate, timeOfDay, session string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year FROM allocations
		 WHERE room = ? AND exam_date = ? AND exam_time = ? AND session = ?`,
		room, examDate, timeOfDay, session)
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

// UpdateInvigilators replaces the invigilator list of one allocation.
func (r *AllocationRepo) UpdateInvigilators(ctx context.Context, id uint64, invigilators []string) error {
	invJSON, err := json.Marshal(invigilators)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE allocations SET invigilators = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
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

// Update rewrites every field of an allocation and regenerates its
// seat assignment rows.
func (r *AllocationRepo) Update(ctx context.Context, a *model.Allocation) error {
	invJSON, err := json.Marshal(a.Invigilators)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE allocations SET exam_name = ?, exam_date = ?, exam_time = ?, cat = ?,
		 session = ?, subject_with_code = ?, year = ?, semester = ?, hall_no = ?, room = ?,
		 total_students = ?, roll_numbers = ?, roll_start = ?, roll_end = ?,
		 invigilators = ?, is_unallocated = ?, expiry_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		a.ExamName, a.ExamDate, a.Time, a.CAT, a.Session, a.SubjectWithCode, a.Year,
		a.Semester, a.HallNo, a.Room, a.TotalStudents, a.RollNumbers, a.RollStart,
		a.RollEnd, string(invJSON), a.IsUnallocated, a.ExpiryDate, a.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateAllocation
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM allocations WHERE id = ?`, a.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAllocationNotFound
			}
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM allocation_students WHERE allocation_id = ?`, a.ID); err != nil {
		return err
	}
	if err := insertStudentsTx(ctx, tx, a.ID, a.Students); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes one allocation; its seat assignment rows cascade.
func (r *AllocationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM allocations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAllocationNotFound
	}
	return nil
}

// ReapExpired deletes allocations past their expiry timestamp and
// returns how many rows went.  The store owns expiry; callers never
// filter expired rows themselves beyond FindActive.
func (r *AllocationRepo) ReapExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM allocations WHERE expiry_date < UTC_TIMESTAMP()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *AllocationRepo) studentsFor(ctx context.Context, allocationID uint64) ([]model.SeatAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, rollno, seat_row, seat_col, bench_no, class, department, original_sheet_name
		 FROM allocation_students WHERE allocation_id = ? ORDER BY bench_no`, allocationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []model.SeatAssignment
	for rows.Next() {
		var s model.SeatAssignment
		if err := rows.Scan(&s.Name, &s.RollNo, &s.Row, &s.Col, &s.BenchNo,
			&s.Class, &s.Department, &s.OriginalSheetName); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func insertStudentsTx(ctx context.Context, tx *sql.Tx, allocationID uint64, seats []model.SeatAssignment) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO allocation_students
		(allocation_id, name, rollno, seat_row, seat_col, bench_no, class, department, original_sheet_name) VALUES `
	args := make([]interface{}, 0, len(seats)*9)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, allocationID, s.Name, s.RollNo, s.Row, s.Col, s.BenchNo,
			s.Class, s.Department, s.OriginalSheetName)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAllocation(row rowScanner) (*model.Allocation, error) {
	var a model.Allocation
	var invJSON string
	if err := row.Scan(&a.ID, &a.ExamName, &a.ExamDate, &a.Time, &a.CAT, &a.Session,
		&a.SubjectWithCode, &a.Year, &a.Semester, &a.HallNo, &a.Room, &a.TotalStudents,
		&a.RollNumbers, &a.RollStart, &a.RollEnd, &invJSON, &a.IsUnallocated,
		&a.ExpiryDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if invJSON != "" {
		if err := json.Unmarshal([]byte(invJSON), &a.Invigilators); err != nil {
			return nil, err
		}
	}
	return &a, nil
}
