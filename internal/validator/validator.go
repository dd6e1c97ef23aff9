// Package validator enforces the year-separation rules for candidate
// allocation batches: bench-level rules inside each allocation and
// room/session-level rules across the batch and the persisted store.
// The first violation found aborts the whole batch; nothing may be
// written before both layers pass.
package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/examcell/hall-allocation/internal/model"
)

// Violation kinds.  These travel to the API layer unchanged, so
// clients can react to the specific rule that failed.
const (
	KindBenchOverfull        = "BENCH_OVERFULL"
	KindMissingYear          = "MISSING_YEAR"
	KindSameYearBench        = "SAME_YEAR_CONFLICT"
	KindTooManyIncomingYears = "TOO_MANY_INCOMING_YEARS"
	KindDuplicateYearInRoom  = "DUPLICATE_YEAR_IN_ROOM"
	KindThirdYearInRoom      = "THIRD_YEAR_IN_ROOM"
)

// Violation is a typed constraint failure.  It satisfies error so it
// can flow up through the service layer; handlers unwrap it with
// errors.As to produce a 400 with the violation kind.
type Violation struct {
	Kind    string
	Message string
}

func (v *Violation) Error() string { return v.Kind + ": " + v.Message }

// Candidate carries the slice of an allocation the validator needs.
// Both allocation kinds map onto it: Location is the room number or
// the lab identifier, ExamDate is the normalized string form.
type Candidate struct {
	Location string
	ExamDate string
	Time     string
	Session  string
	Year     string
	Seats    []model.SeatAssignment
}

// YearLookup resolves roll numbers to cohort years.  Rolls are passed
// upper-cased; rolls absent from the directory are simply missing from
// the returned map.
type YearLookup interface {
	YearsByRoll(ctx context.Context, rolls []string) (map[string]string, error)
}

// ExistingFinder queries the persisted allocation set for the cohort
// years already occupying a location/timeslot.  Implementations own
// their date representation: the hall store compares the string form
// directly, the lab store parses it to a typed date first.
type ExistingFinder interface {
	YearsAt(ctx context.Context, location, examDate, timeOfDay, session string) ([]string, error)
}

// ValidateBenches checks the bench-level rules for every candidate:
// at most two occupants per bench, and two occupants must come from
// different cohort years with both years known.  Benches with zero or
// one occupant are always valid, even when the year is unknown.
func ValidateBenches(ctx context.Context, cands []Candidate, years YearLookup) error {
	rollSet := map[string]struct{}{}
	for _, c := range cands {
		for _, s := range c.Seats {
			if s.RollNo != "" {
				rollSet[strings.ToUpper(s.RollNo)] = struct{}{}
			}
		}
	}
	if len(rollSet) == 0 {
		return nil
	}
	rolls := make([]string, 0, len(rollSet))
	for r := range rollSet {
		rolls = append(rolls, r)
	}
	sort.Strings(rolls)

	rollToYear, err := years.YearsByRoll(ctx, rolls)
	if err != nil {
		return fmt.Errorf("resolve student years: %w", err)
	}

	for _, cand := range cands {
		benches := map[string][]string{}
		var keys []string
		for _, s := range cand.Seats {
			key := benchKey(s)
			if _, seen := benches[key]; !seen {
				keys = append(keys, key)
			}
			benches[key] = append(benches[key], strings.ToUpper(s.RollNo))
		}
		for _, key := range keys {
			occupants := benches[key]
			if len(occupants) > 2 {
				return &Violation{
					Kind:    KindBenchOverfull,
					Message: fmt.Sprintf("bench %s in %s has more than 2 students", key, cand.Location),
				}
			}
			if len(occupants) != 2 {
				continue
			}
			y0, ok0 := rollToYear[occupants[0]]
			y1, ok1 := rollToYear[occupants[1]]
			if !ok0 || y0 == "" || !ok1 || y1 == "" {
				return &Violation{
					Kind:    KindMissingYear,
					Message: fmt.Sprintf("student year missing for bench %s in %s", key, cand.Location),
				}
			}
			if y0 == y1 {
				return &Violation{
					Kind: KindSameYearBench,
					Message: fmt.Sprintf(
						"students of year %s already share bench %s in %s; a bench needs two different years", y0, key, cand.Location),
				}
			}
		}
	}
	return nil
}

// benchKey identifies the physical seat unit: the row/column pair when
// the layout recorded one, otherwise the bench counter.
func benchKey(s model.SeatAssignment) string {
	if s.Row > 0 && s.Col > 0 {
		return fmt.Sprintf("%d-%d", s.Row, s.Col)
	}
	return fmt.Sprintf("bench-%d", s.BenchNo)
}

// locationGroup accumulates the candidate years requested for one
// (location, date, time, session) composite key.
type locationGroup struct {
	location string
	examDate string
	timeOf   string
	session  string
	incoming map[string]struct{}
}

// ValidateLocationYears checks the room/session-level rules: a single
// submission may not introduce more than two cohort years into one
// location/timeslot, an incoming year must not already be present
// there, and existing plus incoming years may never exceed two.
// Groups are checked in sorted key order so failures are reproducible.
func ValidateLocationYears(ctx context.Context, cands []Candidate, existing ExistingFinder) error {
	groups := map[string]*locationGroup{}
	for _, c := range cands {
		key := strings.Join([]string{c.Location, c.ExamDate, c.Time, c.Session}, "|")
		g, ok := groups[key]
		if !ok {
			g = &locationGroup{
				location: c.Location,
				examDate: c.ExamDate,
				timeOf:   c.Time,
				session:  c.Session,
				incoming: map[string]struct{}{},
			}
			groups[key] = g
		}
		if c.Year != "" {
			g.incoming[c.Year] = struct{}{}
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		g := groups[key]
		if len(g.incoming) > 2 {
			return &Violation{
				Kind:    KindTooManyIncomingYears,
				Message: fmt.Sprintf("cannot allocate more than two different years in %s", g.location),
			}
		}

		existingYears, err := existing.YearsAt(ctx, g.location, g.examDate, g.timeOf, g.session)
		if err != nil {
			return fmt.Errorf("query existing allocations for %s: %w", g.location, err)
		}
		existingSet := map[string]struct{}{}
		for _, y := range existingYears {
			if y != "" {
				existingSet[y] = struct{}{}
			}
		}

		incoming := make([]string, 0, len(g.incoming))
		for y := range g.incoming {
			incoming = append(incoming, y)
		}
		sort.Strings(incoming)

		for _, y := range incoming {
			if _, dup := existingSet[y]; dup {
				return &Violation{
					Kind: KindDuplicateYearInRoom,
					Message: fmt.Sprintf(
						"year %s students are already present in %s and writing at the same time; not enough space to allocate", y, g.location),
				}
			}
		}

		combined := len(existingSet)
		for _, y := range incoming {
			if _, ok := existingSet[y]; !ok {
				combined++
			}
		}
		if combined > 2 {
			return &Violation{
				Kind:    KindThirdYearInRoom,
				Message: fmt.Sprintf("%s already holds two different years", g.location),
			}
		}
	}
	return nil
}
