package service

import (
	"fmt"
	"strings"

	"github.com/examcell/hall-allocation/internal/model"
)

// defaultGridRows and defaultGridCols are assumed when a grid payload
// omits its dimensions.
const (
	defaultGridRows = 5
	defaultGridCols = 5
)

// StudentPosition is one seated examinee in an incoming payload.
type StudentPosition struct {
	Roll              string `json:"roll"`
	Name              string `json:"name"`
	Row               int    `json:"row"`
	Col               int    `json:"col"`
	BenchNo           int    `json:"benchNo"`
	Class             string `json:"class"`
	Department        string `json:"department"`
	OriginalSheetName string `json:"originalSheetName"`
}

// AllocationInput is the write payload for one hall allocation.  Seats
// arrive in one of two shapes: explicit studentPositions with row/col,
// or a flat assignedStudents list that is expanded column-major over a
// rows x columns grid.  When both are present the explicit positions
// win.
type AllocationInput struct {
	ExamName             string            `json:"examName"`
	SubjectWithCode      string            `json:"subjectWithCode"`
	ExamDate             string            `json:"examDate"`
	Time                 string            `json:"time"`
	CAT                  string            `json:"cat"`
	Session              string            `json:"session"`
	Year                 string            `json:"year"`
	Semester             string            `json:"semester"`
	HallNo               string            `json:"hallNo"`
	Room                 string            `json:"room"`
	TotalStudents        int               `json:"totalStudents"`
	RollNumbers          string            `json:"rollNumbers"`
	RollStart            string            `json:"rollStart"`
	RollEnd              string            `json:"rollEnd"`
	Invigilators         []string          `json:"invigilators"`
	StudentPositions     []StudentPosition `json:"studentPositions"`
	AssignedStudents     []string          `json:"assignedStudents"`
	AssignedStudentsName []string          `json:"assignedStudentsName"`
	Rows                 int               `json:"rows"`
	Columns              int               `json:"columns"`
	IsUnallocated        bool              `json:"isUnallocated"`
}

// toModel normalizes the input into a persistable Allocation: seats
// are materialized, roll numbers upper-cased, range fields derived
// when absent, and the expiry stamped from the exam date.
func (in AllocationInput) toModel() *model.Allocation {
	seats := in.seats()

	examName := in.ExamName
	if examName == "" {
		examName = in.SubjectWithCode
	}

	rollNumbers := in.RollNumbers
	rollStart := strings.ToUpper(strings.TrimSpace(in.RollStart))
	rollEnd := strings.ToUpper(strings.TrimSpace(in.RollEnd))
	if len(seats) > 0 {
		if rollStart == "" {
			rollStart = seats[0].RollNo
		}
		if rollEnd == "" {
			rollEnd = seats[len(seats)-1].RollNo
		}
		if rollNumbers == "" {
			rollNumbers = fmt.Sprintf("%s - %s", rollStart, rollEnd)
		}
	}

	total := in.TotalStudents
	if total == 0 {
		total = len(seats)
	}

	return &model.Allocation{
		ExamName:        examName,
		ExamDate:        strings.TrimSpace(in.ExamDate),
		Time:            strings.TrimSpace(in.Time),
		CAT:             strings.TrimSpace(in.CAT),
		Session:         strings.ToUpper(strings.TrimSpace(in.Session)),
		SubjectWithCode: in.SubjectWithCode,
		Year:            strings.TrimSpace(in.Year),
		Semester:        strings.TrimSpace(in.Semester),
		HallNo:          strings.TrimSpace(in.HallNo),
		Room:            strings.TrimSpace(in.Room),
		TotalStudents:   total,
		RollNumbers:     rollNumbers,
		RollStart:       rollStart,
		RollEnd:         rollEnd,
		Invigilators:    in.Invigilators,
		Students:        seats,
		IsUnallocated:   in.IsUnallocated,
		ExpiryDate:      model.ExpiryFor(in.ExamDate),
	}
}

// seats materializes the seat list from whichever payload shape is
// present.
func (in AllocationInput) seats() []model.SeatAssignment {
	if len(in.StudentPositions) > 0 {
		seats := make([]model.SeatAssignment, len(in.StudentPositions))
		for i, p := range in.StudentPositions {
			bench := p.BenchNo
			if bench == 0 {
				bench = i + 1
			}
			seats[i] = model.SeatAssignment{
				Name:              strings.TrimSpace(p.Name),
				RollNo:            strings.ToUpper(strings.TrimSpace(p.Roll)),
				Row:               p.Row,
				Col:               p.Col,
				BenchNo:           bench,
				Class:             p.Class,
				Department:        p.Department,
				OriginalSheetName: p.OriginalSheetName,
			}
		}
		return seats
	}
	if len(in.AssignedStudents) == 0 {
		return nil
	}

	// Flat list: expand over the grid column by column, row index
	// moving fastest, same as physical packing.
	rows := in.Rows
	if rows <= 0 {
		rows = defaultGridRows
	}
	cols := in.Columns
	if cols <= 0 {
		cols = defaultGridCols
	}
	seats := make([]model.SeatAssignment, 0, len(in.AssignedStudents))
	idx := 0
	for c := 1; c <= cols && idx < len(in.AssignedStudents); c++ {
		for r := 1; r <= rows && idx < len(in.AssignedStudents); r++ {
			name := ""
			if idx < len(in.AssignedStudentsName) {
				name = strings.TrimSpace(in.AssignedStudentsName[idx])
			}
			seats = append(seats, model.SeatAssignment{
				Name:    name,
				RollNo:  strings.ToUpper(strings.TrimSpace(in.AssignedStudents[idx])),
				Row:     r,
				Col:     c,
				BenchNo: idx + 1,
			})
			idx++
		}
	}
	return seats
}
