package model

import (
	"fmt"
	"time"
)

// Exam sessions: two fixed half-day slots per day.
const (
	SessionFN = "FN" // forenoon
	SessionAN = "AN" // afternoon
)

// ExpiryDays is how long an allocation outlives its exam date before
// the store reaps it.
const ExpiryDays = 3

// SeatAssignment places one examinee on a seat within a room
// allocation.  Row and Col describe the physical position (row within
// the column); BenchNo is a 1-based counter assigned in packing order,
// unique within the allocation.  Class, Department and the source
// sheet name are carried for traceability only.
type SeatAssignment struct {
	Name              string `json:"name"`                // allocation_students.name
	RollNo            string `json:"rollno"`              // allocation_students.rollno, upper-cased
	Row               int    `json:"row"`                 // allocation_students.row (0 when unplaced)
	Col               int    `json:"col"`                 // allocation_students.col (0 when unplaced)
	BenchNo           int    `json:"bench_no"`            // allocation_students.bench_no
	Class             string `json:"class"`               // allocation_students.class
	Department        string `json:"department"`          // allocation_students.department
	OriginalSheetName string `json:"original_sheet_name"` // allocation_students.original_sheet_name
}

// Allocation is one hall exam unit: a room, a timeslot and the seated
// examinees, plus the invigilators on duty.  The exam date is kept in
// its original string form; lab allocations store a typed date
// instead, and ParseExamDate bridges the two when they must be
// compared.
//
// An allocation expires ExpiryDays after its exam date; expired rows
// are invisible to reads and reaped by the store.
type Allocation struct {
	ID              uint64           `json:"id"`                // allocations.id
	ExamName        string           `json:"exam_name"`         // allocations.exam_name
	ExamDate        string           `json:"exam_date"`         // allocations.exam_date (string form)
	Time            string           `json:"time"`              // allocations.exam_time (e.g. "09:30")
	CAT             string           `json:"cat"`               // allocations.cat (test identifier)
	Session         string           `json:"session"`           // allocations.session (FN | AN)
	SubjectWithCode string           `json:"subject_with_code"` // allocations.subject_with_code
	Year            string           `json:"year"`              // allocations.year (cohort label)
	Semester        string           `json:"semester"`          // allocations.semester
	HallNo          string           `json:"hall_no"`           // allocations.hall_no
	Room            string           `json:"room"`              // allocations.room (location key)
	TotalStudents   int              `json:"total_students"`    // allocations.total_students
	RollNumbers     string           `json:"roll_numbers"`      // allocations.roll_numbers
	RollStart       string           `json:"roll_start"`        // allocations.roll_start
	RollEnd         string           `json:"roll_end"`          // allocations.roll_end
	Invigilators    []string         `json:"invigilators"`      // allocations.invigilators (JSON)
	Students        []SeatAssignment `json:"students"`          // allocations -> allocation_students
	IsUnallocated   bool             `json:"is_unallocated"`    // allocations.is_unallocated (leftover bucket)
	ExpiryDate      time.Time        `json:"expiry_date"`       // allocations.expiry_date
	CreatedAt       time.Time        `json:"created_at"`        // allocations.created_at
	UpdatedAt       time.Time        `json:"updated_at"`        // allocations.updated_at
}

// Ref returns the owning-allocation reference recorded on derived
// duty rows.  Hall and lab allocations live in separate tables, so the
// reference carries the kind to keep ids from colliding.
func (a Allocation) Ref() string { return fmt.Sprintf("hall-%d", a.ID) }

// examDateFormats are the accepted exam date spellings: ISO dates from
// the admin UI and day-first dates from imported sheets.
var examDateFormats = []string{"2006-01-02", "02-01-2006"}

// ParseExamDate normalizes an exam date string to a time.Time.  Hall
// allocations persist the raw string while lab allocations persist a
// DATE column; every comparison between the two goes through here.
func ParseExamDate(s string) (time.Time, error) {
	for _, layout := range examDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized exam date %q", s)
}

// ExpiryFor derives the expiry timestamp for an exam date string.
// When the date cannot be parsed the clock starts now, so a malformed
// date never produces an immortal record.
func ExpiryFor(examDate string) time.Time {
	base, err := ParseExamDate(examDate)
	if err != nil {
		base = time.Now().UTC()
	}
	return base.Add(ExpiryDays * 24 * time.Hour)
}
