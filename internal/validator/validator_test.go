package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcell/hall-allocation/internal/model"
)

// fakeYears resolves rolls against a fixed map, like the student
// directory does.
type fakeYears struct {
	years map[string]string
}

func (f *fakeYears) YearsByRoll(_ context.Context, rolls []string) (map[string]string, error) {
	out := make(map[string]string, len(rolls))
	for _, r := range rolls {
		if y, ok := f.years[strings.ToUpper(r)]; ok {
			out[strings.ToUpper(r)] = y
		}
	}
	return out, nil
}

// fakeExisting answers YearsAt from a fixed map keyed
// "location|date|time|session".
type fakeExisting struct {
	occupied map[string][]string
}

func (f *fakeExisting) YearsAt(_ context.Context, location, examDate, timeOfDay, session string) ([]string, error) {
	return f.occupied[strings.Join([]string{location, examDate, timeOfDay, session}, "|")], nil
}

func seat(roll string, row, col int) model.SeatAssignment {
	return model.SeatAssignment{RollNo: roll, Row: row, Col: col}
}

func violationKind(t *testing.T, err error) string {
	t.Helper()
	var v *Violation
	require.ErrorAs(t, err, &v)
	return v.Kind
}

func TestValidateBenches(t *testing.T) {
	years := &fakeYears{years: map[string]string{
		"A1": "II", "A2": "II", "A3": "II",
		"B1": "III", "B2": "III",
	}}

	tests := []struct {
		name     string
		seats    []model.SeatAssignment
		wantKind string
	}{
		{
			name:  "pair from different years passes",
			seats: []model.SeatAssignment{seat("A1", 1, 1), seat("B1", 1, 1)},
		},
		{
			name:  "single occupant always passes",
			seats: []model.SeatAssignment{seat("A1", 1, 1)},
		},
		{
			name:  "single occupant with unknown year passes",
			seats: []model.SeatAssignment{seat("GHOST1", 1, 1)},
		},
		{
			name: "three on one bench overfull",
			seats: []model.SeatAssignment{
				seat("A1", 1, 1), seat("B1", 1, 1), seat("A2", 1, 1),
			},
			wantKind: KindBenchOverfull,
		},
		{
			name:     "pair from the same year conflicts",
			seats:    []model.SeatAssignment{seat("A1", 1, 1), seat("A2", 1, 1)},
			wantKind: KindSameYearBench,
		},
		{
			name:     "pair with unknown year is missing",
			seats:    []model.SeatAssignment{seat("A1", 1, 1), seat("GHOST1", 1, 1)},
			wantKind: KindMissingYear,
		},
		{
			name: "same row different columns are different benches",
			seats: []model.SeatAssignment{
				seat("A1", 1, 1), seat("A2", 1, 2),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := []Candidate{{Location: "R1", Seats: tt.seats}}
			err := ValidateBenches(context.Background(), cands, years)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantKind, violationKind(t, err))
		})
	}
}

func TestValidateBenchesFallsBackToBenchCounter(t *testing.T) {
	years := &fakeYears{years: map[string]string{"A1": "II", "A2": "II"}}
	// No row/col recorded: the bench counter identifies the seat unit.
	cands := []Candidate{{
		Location: "R1",
		Seats: []model.SeatAssignment{
			{RollNo: "A1", BenchNo: 4},
			{RollNo: "A2", BenchNo: 4},
		},
	}}
	err := ValidateBenches(context.Background(), cands, years)
	assert.Equal(t, KindSameYearBench, violationKind(t, err))
}

func TestValidateLocationYears(t *testing.T) {
	slot := func(loc string, years ...string) Candidate {
		c := Candidate{Location: loc, ExamDate: "2026-09-10", Time: "09:30", Session: "FN"}
		if len(years) > 0 {
			c.Year = years[0]
		}
		return c
	}

	tests := []struct {
		name     string
		cands    []Candidate
		occupied map[string][]string
		wantKind string
	}{
		{
			name:  "two incoming years pass an empty room",
			cands: []Candidate{slot("R1", "II"), slot("R1", "III")},
		},
		{
			name: "three incoming years refused",
			cands: []Candidate{
				slot("R1", "II"), slot("R1", "III"), slot("R1", "IV"),
			},
			wantKind: KindTooManyIncomingYears,
		},
		{
			name:  "year already present in the room",
			cands: []Candidate{slot("R1", "II")},
			occupied: map[string][]string{
				"R1|2026-09-10|09:30|FN": {"II"},
			},
			wantKind: KindDuplicateYearInRoom,
		},
		{
			name:  "third year cannot join a full room",
			cands: []Candidate{slot("R1", "IV")},
			occupied: map[string][]string{
				"R1|2026-09-10|09:30|FN": {"II", "III"},
			},
			wantKind: KindThirdYearInRoom,
		},
		{
			name:  "second year joins a half-full room",
			cands: []Candidate{slot("R1", "III")},
			occupied: map[string][]string{
				"R1|2026-09-10|09:30|FN": {"II"},
			},
		},
		{
			name: "same years in different rooms pass",
			cands: []Candidate{
				slot("R1", "II"), slot("R2", "II"),
			},
		},
		{
			name: "duplicate incoming year counts once",
			cands: []Candidate{
				slot("R1", "II"), slot("R1", "II"), slot("R1", "III"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &fakeExisting{occupied: tt.occupied}
			err := ValidateLocationYears(context.Background(), tt.cands, existing)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantKind, violationKind(t, err))
		})
	}
}

func TestValidateLocationYearsSessionsAreIndependent(t *testing.T) {
	existing := &fakeExisting{occupied: map[string][]string{
		"R1|2026-09-10|09:30|FN": {"II", "III"},
	}}
	// Same room and date, afternoon session: the morning occupancy
	// must not block it.
	cands := []Candidate{{
		Location: "R1", ExamDate: "2026-09-10", Time: "13:30", Session: "AN", Year: "II",
	}}
	assert.NoError(t, ValidateLocationYears(context.Background(), cands, existing))
}
