package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToModelFromStudentPositions(t *testing.T) {
	in := AllocationInput{
		SubjectWithCode: "CS8491 - Computer Architecture",
		ExamDate:        "2026-09-10",
		Time:            "09:30",
		Session:         "fn",
		Year:            "III",
		Room:            "R1",
		StudentPositions: []StudentPosition{
			{Roll: "p21ai001", Row: 1, Col: 1, BenchNo: 1},
			{Roll: "P21AI002", Row: 2, Col: 1},
		},
	}

	a := in.toModel()

	// Exam name falls back to the subject when absent.
	assert.Equal(t, "CS8491 - Computer Architecture", a.ExamName)
	assert.Equal(t, "FN", a.Session)

	require.Len(t, a.Students, 2)
	assert.Equal(t, "P21AI001", a.Students[0].RollNo)
	// Bench counter defaults to position order when the payload
	// omitted it.
	assert.Equal(t, 2, a.Students[1].BenchNo)

	// Range fields derive from the seat list.
	assert.Equal(t, "P21AI001", a.RollStart)
	assert.Equal(t, "P21AI002", a.RollEnd)
	assert.Equal(t, "P21AI001 - P21AI002", a.RollNumbers)
	assert.Equal(t, 2, a.TotalStudents)

	// Expiry sits a fixed grace period past the exam date.
	want := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	assert.True(t, a.ExpiryDate.Equal(want), "expiry %v, want %v", a.ExpiryDate, want)
}

func TestToModelExpandsFlatListColumnMajor(t *testing.T) {
	in := AllocationInput{
		ExamName:         "Model Exam",
		ExamDate:         "10-09-2026",
		Room:             "R2",
		Rows:             3,
		Columns:          3,
		AssignedStudents: []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7"},
		AssignedStudentsName: []string{
			"One", "Two", "Three", "Four", "Five", "Six", "Seven",
		},
	}

	a := in.toModel()
	require.Len(t, a.Students, 7)

	// Column 1 rows 1..3, column 2 rows 1..3, column 3 row 1.
	expected := []struct{ row, col int }{
		{1, 1}, {2, 1}, {3, 1},
		{1, 2}, {2, 2}, {3, 2},
		{1, 3},
	}
	for i, want := range expected {
		assert.Equal(t, want.row, a.Students[i].Row, "seat %d row", i)
		assert.Equal(t, want.col, a.Students[i].Col, "seat %d col", i)
		assert.Equal(t, i+1, a.Students[i].BenchNo, "seat %d bench", i)
	}
	assert.Equal(t, "Four", a.Students[3].Name)
}

func TestToModelGridDefaults(t *testing.T) {
	in := AllocationInput{
		ExamName:         "Quiz",
		ExamDate:         "2026-09-10",
		Room:             "R1",
		AssignedStudents: make([]string, 30),
	}
	for i := range in.AssignedStudents {
		in.AssignedStudents[i] = "A1"
	}

	a := in.toModel()
	// A 5x5 default grid holds at most 25 of the 30 names.
	assert.Len(t, a.Students, 25)
}

func TestToModelExplicitPositionsWinOverFlatList(t *testing.T) {
	in := AllocationInput{
		ExamName:         "Quiz",
		ExamDate:         "2026-09-10",
		Room:             "R1",
		StudentPositions: []StudentPosition{{Roll: "A1", Row: 1, Col: 1}},
		AssignedStudents: []string{"B1", "B2"},
	}
	a := in.toModel()
	require.Len(t, a.Students, 1)
	assert.Equal(t, "A1", a.Students[0].RollNo)
}

func TestNextInvigilatorPairRotates(t *testing.T) {
	roster := rosterOf("STF001-A", "STF002-B", "STF003-C")
	idx := 0

	first := nextInvigilatorPair(roster, &idx)
	second := nextInvigilatorPair(roster, &idx)

	assert.Equal(t, []string{"STF001-A", "STF002-B"}, first)
	// The pair wraps around the roster.
	assert.Equal(t, []string{"STF003-C", "STF001-A"}, second)

	assert.Nil(t, nextInvigilatorPair(nil, &idx))
}
