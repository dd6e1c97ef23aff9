// Package duty derives staff-duty records from allocation
// invigilator lists.  Duty rows are regenerated wholesale
// (delete-all-then-insert) on every sync, so after a sync completes
// the rows for an allocation mirror its invigilator list exactly.
package duty

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/examcell/hall-allocation/internal/model"
)

// Fixed half-day duty windows.
const (
	fnStart = "09:30"
	fnEnd   = "12:30"
	anStart = "13:30"
	anEnd   = "16:30"

	// defaultHours is used when a session has no known window.
	defaultHours = 3
)

// ErrStaffNotFound is what a StaffDirectory returns when no member
// matches the requested name.
var ErrStaffNotFound = errors.New("staff member not found")

// Store is the persistence surface the synchronizer needs: wholesale
// delete by owning allocation and batch insert.
type Store interface {
	DeleteByAllocation(ctx context.Context, ref string) error
	InsertBatch(ctx context.Context, duties []model.StaffDuty) error
}

// StaffDirectory resolves a display name (case-insensitive exact
// match) to a staff directory entry.  The synchronizer only ever
// reads the directory.
type StaffDirectory interface {
	FindByName(ctx context.Context, name string) (*model.Invigilator, error)
}

// Source is the allocation slice a sync consumes.  Both allocation
// kinds map onto it; Ref identifies the owner of the derived rows.
type Source struct {
	Ref             string
	ExamName        string
	CATNumber       string
	SubjectWithCode string
	ExamDate        string
	Session         string
	Location        string
	Year            string
	Semester        string
	Invigilators    []string
	CreatedAt       time.Time
}

// Synchronizer regenerates staff-duty rows.  Syncs for the same
// allocation reference are serialized so concurrent delete/insert
// passes cannot interleave into a duplicated or partial duty set.
type Synchronizer struct {
	store Store
	dir   StaffDirectory

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSynchronizer builds a Synchronizer over the given store and
// staff directory.
func NewSynchronizer(store Store, dir StaffDirectory) *Synchronizer {
	return &Synchronizer{store: store, dir: dir, locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the mutex guarding one allocation reference.
func (s *Synchronizer) lockFor(ref string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[ref]
	if !ok {
		l = &sync.Mutex{}
		s.locks[ref] = l
	}
	return l
}

// Sync replaces the duty rows of one allocation.  It is idempotent:
// running it twice with the same source leaves the same final row
// set.  An allocation without invigilators ends up with no rows.
func (s *Synchronizer) Sync(ctx context.Context, src Source) error {
	l := s.lockFor(src.Ref)
	l.Lock()
	defer l.Unlock()

	if err := s.store.DeleteByAllocation(ctx, src.Ref); err != nil {
		return fmt.Errorf("delete duties for %s: %w", src.Ref, err)
	}
	if len(src.Invigilators) == 0 {
		return nil
	}

	start, end := SessionWindow(src.Session)
	hours := DutyHours(src.Session, start, end)

	examDate, err := model.ParseExamDate(src.ExamDate)
	if err != nil {
		examDate = time.Time{} // keep the row; the date column stays zero
	}
	created := src.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	duties := make([]model.StaffDuty, 0, len(src.Invigilators))
	for _, entry := range src.Invigilators {
		staffID, staffName := s.resolve(ctx, entry)
		duties = append(duties, model.StaffDuty{
			StaffID:               strings.ToUpper(staffID),
			StaffName:             staffName,
			AllocationRef:         src.Ref,
			ExamName:              src.ExamName,
			CATNumber:             src.CATNumber,
			SubjectCode:           subjectCode(src.SubjectWithCode),
			SubjectName:           src.SubjectWithCode,
			ExamDate:              examDate,
			Session:               src.Session,
			HallNumber:            src.Location,
			Year:                  src.Year,
			Semester:              src.Semester,
			DutyStartTime:         start,
			DutyEndTime:           end,
			DutyHours:             hours,
			AllocationCreatedDate: created,
		})
	}
	if err := s.store.InsertBatch(ctx, duties); err != nil {
		return fmt.Errorf("insert duties for %s: %w", src.Ref, err)
	}
	return nil
}

// Remove deletes every duty row owned by the given allocation
// reference.  Removing an allocation that has no rows is a no-op.
func (s *Synchronizer) Remove(ctx context.Context, ref string) error {
	l := s.lockFor(ref)
	l.Lock()
	defer l.Unlock()

	if err := s.store.DeleteByAllocation(ctx, ref); err != nil {
		return fmt.Errorf("remove duties for %s: %w", ref, err)
	}
	return nil
}

// resolve turns one invigilator entry into an employee id and display
// name.  "ID-Name" entries split on the first dash; plain names go
// through the staff directory, falling back to the unknown sentinel
// when no member matches.
func (s *Synchronizer) resolve(ctx context.Context, entry string) (staffID, staffName string) {
	entry = strings.TrimSpace(entry)
	if i := strings.Index(entry, "-"); i > 0 {
		return strings.TrimSpace(entry[:i]), strings.TrimSpace(entry[i+1:])
	}
	if s.dir != nil {
		if found, err := s.dir.FindByName(ctx, entry); err == nil && found != nil {
			return found.EmpID, found.Name
		}
	}
	return model.UnknownStaffID, entry
}

// SessionWindow returns the fixed start/end time-of-day for a
// session; unknown sessions yield empty strings.
func SessionWindow(session string) (start, end string) {
	switch session {
	case model.SessionFN:
		return fnStart, fnEnd
	case model.SessionAN:
		return anStart, anEnd
	}
	return "", ""
}

// DutyHours computes end minus start in hours.  When either bound is
// missing or unparsable, a known session falls back to the default
// window length and anything else counts zero.
func DutyHours(session, start, end string) float64 {
	if start != "" && end != "" {
		st, errS := time.Parse("15:04", start)
		et, errE := time.Parse("15:04", end)
		if errS == nil && errE == nil {
			if h := et.Sub(st).Hours(); h > 0 {
				return h
			}
			return 0
		}
	}
	if session == model.SessionFN || session == model.SessionAN {
		return defaultHours
	}
	return 0
}

// subjectCode extracts the code part of "CODE - Subject Name".
func subjectCode(subjectWithCode string) string {
	if subjectWithCode == "" {
		return ""
	}
	return strings.TrimSpace(strings.SplitN(subjectWithCode, "-", 2)[0])
}
