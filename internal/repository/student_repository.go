package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/examcell/hall-allocation/internal/model"
)

// ErrStudentNotFound is returned when a student lookup yields no rows.
var ErrStudentNotFound = errors.New("student not found")

// StudentRepo provides access to the student directory.  During bench
// validation it serves as the roll -> cohort year lookup.
type StudentRepo struct {
	db *sql.DB
}

// NewStudentRepo constructs a StudentRepo with the given DB handle.
func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

// Create inserts a single student.  The roll number and class name
// are upper-cased before storage.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO students (rollno, name, class_name, year, password) VALUES (?, ?, ?, ?, ?)`,
		strings.ToUpper(s.RollNo), s.Name, strings.ToUpper(s.ClassName), s.Year, s.Password)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// CreateBulk inserts multiple students in a single statement.
func (r *StudentRepo) CreateBulk(ctx context.Context, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	query := `INSERT INTO students (rollno, name, class_name, year, password) VALUES `
	args := make([]interface{}, 0, len(students)*5)
	for i, s := range students {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, strings.ToUpper(s.RollNo), s.Name, strings.ToUpper(s.ClassName), s.Year, s.Password)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByRoll retrieves one student by upper-cased roll number.
func (r *StudentRepo) GetByRoll(ctx context.Context, roll string) (*model.Student, error) {
	var s model.Student
	err := r.db.QueryRowContext(ctx,
		`SELECT id, rollno, name, class_name, year, password FROM students WHERE rollno = ?`,
		strings.ToUpper(strings.TrimSpace(roll))).
		Scan(&s.ID, &s.RollNo, &s.Name, &s.ClassName, &s.Year, &s.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByClassYear lists the students of one class and cohort year,
// ordered by roll number.
func (r *StudentRepo) GetByClassYear(ctx context.Context, className, year string) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rollno, name, class_name, year, password
		 FROM students WHERE class_name = ? AND year = ? ORDER BY rollno`,
		strings.ToUpper(strings.TrimSpace(className)), strings.TrimSpace(year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.RollNo, &s.Name, &s.ClassName, &s.Year, &s.Password); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// YearsByRoll resolves roll numbers to cohort years in one query.
// Rolls absent from the directory are missing from the returned map;
// the bench validator treats that as a MISSING_YEAR condition.
func (r *StudentRepo) YearsByRoll(ctx context.Context, rolls []string) (map[string]string, error) {
	out := make(map[string]string, len(rolls))
	if len(rolls) == 0 {
		return out, nil
	}
	query := `SELECT rollno, year FROM students WHERE rollno IN (?` +
		strings.Repeat(",?", len(rolls)-1) + `)`
	args := make([]interface{}, len(rolls))
	for i, roll := range rolls {
		args[i] = strings.ToUpper(roll)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var roll, year string
		if err := rows.Scan(&roll, &year); err != nil {
			return nil, err
		}
		out[strings.ToUpper(roll)] = year
	}
	return out, rows.Err()
}

// DeleteByRoll removes one student by roll number.
func (r *StudentRepo) DeleteByRoll(ctx context.Context, roll string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM students WHERE rollno = ?`, strings.ToUpper(strings.TrimSpace(roll)))
	return err
}

// DeleteByYear removes every student of a cohort year and returns the
// number of rows deleted.
func (r *StudentRepo) DeleteByYear(ctx context.Context, year string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE year = ?`, strings.TrimSpace(year))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByClass removes every student of a class and returns the
// number of rows deleted.
func (r *StudentRepo) DeleteByClass(ctx context.Context, className string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM students WHERE class_name = ?`, strings.ToUpper(strings.TrimSpace(className)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
