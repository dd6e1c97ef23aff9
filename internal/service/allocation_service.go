// Package service orchestrates the allocation write path: candidate
// normalization, constraint validation, persistence, and the
// post-commit duty resync and event publish.  Validation always
// completes before the first write; duty records and events are
// best-effort derived state and never fail the authoritative write.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/examcell/hall-allocation/internal/allocator"
	"github.com/examcell/hall-allocation/internal/duty"
	"github.com/examcell/hall-allocation/internal/model"
	"github.com/examcell/hall-allocation/internal/queue"
	"github.com/examcell/hall-allocation/internal/validator"
)

// UnallocatedRoom marks the leftover bucket: examinees that could not
// be placed after exhausting the usable room sequence are persisted
// under this location so they are never silently dropped.
const UnallocatedRoom = "UNALLOCATED"

// AllocationStore is the persistence surface the service needs for
// hall allocations.  *repository.AllocationRepo implements it.
type AllocationStore interface {
	InsertBatch(ctx context.Context, allocs []*model.Allocation) error
	FindActive(ctx context.Context) ([]model.Allocation, error)
	GetByID(ctx context.Context, id uint64) (*model.Allocation, error)
	UpdateInvigilators(ctx context.Context, id uint64, invigilators []string) error
	Update(ctx context.Context, a *model.Allocation) error
	Delete(ctx context.Context, id uint64) error
	YearsAt(ctx context.Context, location, examDate, timeOfDay, session string) ([]string, error)
}

// DutySyncer regenerates derived staff-duty rows.
type DutySyncer interface {
	Sync(ctx context.Context, src duty.Source) error
	Remove(ctx context.Context, ref string) error
}

// EventPublisher emits allocation lifecycle events.  A nil publisher
// disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AllocationEvent) error
}

// RoomCatalog lists rooms in the fixed floor/room-number order.
type RoomCatalog interface {
	GetAll(ctx context.Context) ([]model.Room, error)
}

// StaffRoster lists the active invigilator roster.
type StaffRoster interface {
	GetActive(ctx context.Context) ([]model.Invigilator, error)
}

// AllocationService owns the hall allocation lifecycle.
type AllocationService struct {
	store  AllocationStore
	years  validator.YearLookup
	rooms  RoomCatalog
	roster StaffRoster
	duties DutySyncer
	events EventPublisher
}

// NewAllocationService wires an AllocationService.
func NewAllocationService(store AllocationStore, years validator.YearLookup,
	rooms RoomCatalog, roster StaffRoster, duties DutySyncer, events EventPublisher) *AllocationService {
	return &AllocationService{store: store, years: years, rooms: rooms,
		roster: roster, duties: duties, events: events}
}

// SaveBatch validates and persists a batch of candidate allocations.
// Room/session-level rules run first, then bench-level rules; the
// first violation aborts the whole batch before any write.  After a
// successful insert the duty rows of each allocation are resynced and
// an event is published, both best-effort.
func (s *AllocationService) SaveBatch(ctx context.Context, inputs []AllocationInput) ([]model.Allocation, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	allocs := make([]*model.Allocation, len(inputs))
	cands := make([]validator.Candidate, len(inputs))
	for i, in := range inputs {
		a := in.toModel()
		allocs[i] = a
		cands[i] = validator.Candidate{
			Location: a.Room,
			ExamDate: a.ExamDate,
			Time:     a.Time,
			Session:  a.Session,
			Year:     a.Year,
			Seats:    a.Students,
		}
	}

	if err := validator.ValidateLocationYears(ctx, cands, s.store); err != nil {
		return nil, err
	}
	if err := validator.ValidateBenches(ctx, cands, s.years); err != nil {
		return nil, err
	}

	if err := s.store.InsertBatch(ctx, allocs); err != nil {
		return nil, err
	}

	saved := make([]model.Allocation, len(allocs))
	for i, a := range allocs {
		saved[i] = *a
		s.afterWrite(ctx, a, queue.ActionSaved)
	}
	return saved, nil
}

// PackRequest describes an allocate-and-save run: exam metadata plus
// the roll sources to pack from the given starting room.
type PackRequest struct {
	ExamName        string     `json:"examName"`
	SubjectWithCode string     `json:"subjectWithCode"`
	ExamDate        string     `json:"examDate"`
	Time            string     `json:"time"`
	CAT             string     `json:"cat"`
	Session         string     `json:"session"`
	Year            string     `json:"year"`
	Semester        string     `json:"semester"`
	HallNo          string     `json:"hallNo"`
	StartRoom       string     `json:"startRoom"`
	Sources         [][]string `json:"sources"`
	Shuffle         bool       `json:"shuffle"`
}

// PackAndSave seats the requested rolls across the room catalog from
// the starting room, pairs invigilators from the active roster, and
// hands the result to SaveBatch.  In shuffle mode the sources are
// round-robin interleaved so no single list monopolizes the early
// benches; otherwise they are consumed in order.  Leftover examinees
// become a flagged unallocated group.
func (s *AllocationService) PackAndSave(ctx context.Context, req PackRequest) ([]model.Allocation, []string, error) {
	rooms, err := s.rooms.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load room catalog: %w", err)
	}

	var rolls []string
	if req.Shuffle && len(req.Sources) > 1 {
		rolls = allocator.Interleave(req.Sources)
	} else {
		for _, src := range req.Sources {
			rolls = append(rolls, src...)
		}
	}

	placements, leftover, err := allocator.Pack(rolls, rooms, req.StartRoom)
	if err != nil {
		return nil, nil, err
	}

	roster, err := s.roster.GetActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load invigilator roster: %w", err)
	}

	invIndex := 0
	inputs := make([]AllocationInput, 0, len(placements)+1)
	for _, p := range placements {
		positions := make([]StudentPosition, len(p.Seats))
		for i, seat := range p.Seats {
			positions[i] = StudentPosition{
				Roll:    seat.RollNo,
				Row:     seat.Row,
				Col:     seat.Col,
				BenchNo: seat.BenchNo,
			}
		}
		inputs = append(inputs, AllocationInput{
			ExamName:         req.ExamName,
			SubjectWithCode:  req.SubjectWithCode,
			ExamDate:         req.ExamDate,
			Time:             req.Time,
			CAT:              req.CAT,
			Session:          req.Session,
			Year:             req.Year,
			Semester:         req.Semester,
			HallNo:           req.HallNo,
			Room:             p.Room.RoomNo,
			Invigilators:     nextInvigilatorPair(roster, &invIndex),
			StudentPositions: positions,
		})
	}
	if len(leftover) > 0 {
		positions := make([]StudentPosition, len(leftover))
		for i, roll := range leftover {
			positions[i] = StudentPosition{Roll: roll, BenchNo: i + 1}
		}
		inputs = append(inputs, AllocationInput{
			ExamName:         req.ExamName,
			SubjectWithCode:  req.SubjectWithCode,
			ExamDate:         req.ExamDate,
			Time:             req.Time,
			CAT:              req.CAT,
			Session:          req.Session,
			Year:             req.Year,
			Semester:         req.Semester,
			HallNo:           req.HallNo,
			Room:             UnallocatedRoom,
			IsUnallocated:    true,
			StudentPositions: positions,
		})
	}

	saved, err := s.SaveBatch(ctx, inputs)
	if err != nil {
		return nil, nil, err
	}
	return saved, leftover, nil
}

// UpdateInvigilators replaces an allocation's invigilator list and
// resyncs its duty rows.
func (s *AllocationService) UpdateInvigilators(ctx context.Context, id uint64, invigilators []string) (*model.Allocation, error) {
	if err := s.store.UpdateInvigilators(ctx, id, invigilators); err != nil {
		return nil, err
	}
	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, updated, queue.ActionSaved)
	return updated, nil
}

// Update rewrites an allocation's fields and resyncs its duty rows.
func (s *AllocationService) Update(ctx context.Context, id uint64, in AllocationInput) (*model.Allocation, error) {
	a := in.toModel()
	a.ID = id
	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, updated, queue.ActionSaved)
	return updated, nil
}

// Delete removes an allocation together with its derived duty rows.
func (s *AllocationService) Delete(ctx context.Context, id uint64) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	synced := true
	if err := s.duties.Remove(ctx, a.Ref()); err != nil {
		synced = false
		log.Printf("duty-sync: remove duties for %s failed: %v", a.Ref(), err)
	}
	s.publish(ctx, *a, queue.ActionRemoved, synced)
	return nil
}

// Active lists allocations that have not yet expired.
func (s *AllocationService) Active(ctx context.Context) ([]model.Allocation, error) {
	return s.store.FindActive(ctx)
}

// StudentAllocation pairs an allocation with the matched student's
// own seat, for student-facing lookups.
type StudentAllocation struct {
	Allocation model.Allocation      `json:"allocation"`
	Seat       *model.SeatAssignment `json:"seat,omitempty"`
}

// ForStudent returns the active allocations that include the given
// roll number, either as a seated student or within the allocation's
// roll range.
func (s *AllocationService) ForStudent(ctx context.Context, roll string) ([]StudentAllocation, error) {
	roll = strings.ToUpper(strings.TrimSpace(roll))
	all, err := s.store.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	var matched []StudentAllocation
	for _, a := range all {
		if seat := findSeat(a, roll); seat != nil {
			matched = append(matched, StudentAllocation{Allocation: a, Seat: seat})
			continue
		}
		if allocator.RollInRange(roll, a.RollStart, a.RollEnd) ||
			allocator.RollInRangeString(roll, a.RollNumbers) {
			matched = append(matched, StudentAllocation{Allocation: a})
		}
	}
	return matched, nil
}

func findSeat(a model.Allocation, roll string) *model.SeatAssignment {
	for i := range a.Students {
		if strings.ToUpper(a.Students[i].RollNo) == roll {
			return &a.Students[i]
		}
	}
	return nil
}

// afterWrite runs the post-commit side effects for one allocation: a
// best-effort duty resync and an event publish.  Failures are logged
// and never propagated; the allocation write has already committed.
func (s *AllocationService) afterWrite(ctx context.Context, a *model.Allocation, action string) {
	synced := true
	if err := s.duties.Sync(ctx, dutySourceFromAllocation(a)); err != nil {
		synced = false
		log.Printf("duty-sync: sync duties for %s failed: %v", a.Ref(), err)
	}
	s.publish(ctx, *a, action, synced)
}

func (s *AllocationService) publish(ctx context.Context, a model.Allocation, action string, synced bool) {
	if s.events == nil {
		return
	}
	ev := queue.AllocationEvent{
		Action:        action,
		Ref:           a.Ref(),
		Location:      a.Room,
		ExamName:      a.ExamName,
		ExamDate:      a.ExamDate,
		Time:          a.Time,
		Session:       a.Session,
		Year:          a.Year,
		TotalStudents: a.TotalStudents,
		Invigilators:  a.Invigilators,
		DutySynced:    synced,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("allocation-events: publish %s for %s failed: %v", action, a.Ref(), err)
	}
}

func dutySourceFromAllocation(a *model.Allocation) duty.Source {
	return duty.Source{
		Ref:             a.Ref(),
		ExamName:        a.ExamName,
		CATNumber:       a.CAT,
		SubjectWithCode: a.SubjectWithCode,
		ExamDate:        a.ExamDate,
		Session:         a.Session,
		Location:        a.Room,
		Year:            a.Year,
		Semester:        a.Semester,
		Invigilators:    a.Invigilators,
		CreatedAt:       a.CreatedAt,
	}
}

// nextInvigilatorPair takes the next two roster members round-robin,
// formatted "EMPID-Name" so duty derivation can split them without a
// directory lookup.  An empty roster yields no invigilators.
func nextInvigilatorPair(roster []model.Invigilator, idx *int) []string {
	if len(roster) == 0 {
		return nil
	}
	first := roster[*idx%len(roster)]
	second := roster[(*idx+1)%len(roster)]
	*idx += 2
	return []string{
		first.EmpID + "-" + first.Name,
		second.EmpID + "-" + second.Name,
	}
}
