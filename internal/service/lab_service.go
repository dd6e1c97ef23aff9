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

// LabStore is the persistence surface for lab allocations.
// *repository.LabAllocationRepo implements it.
type LabStore interface {
	InsertBatch(ctx context.Context, labs []*model.LabAllocation) error
	FindActive(ctx context.Context) ([]model.LabAllocation, error)
	GetByID(ctx context.Context, id uint64) (*model.LabAllocation, error)
	UpdateInvigilators(ctx context.Context, id uint64, invigilators []string) error
	Update(ctx context.Context, l *model.LabAllocation) error
	Delete(ctx context.Context, id uint64) error
	YearsAt(ctx context.Context, lab, examDate, timeOfDay, session string) ([]string, error)
}

// LabAllocationInput is the write payload for one lab allocation.
type LabAllocationInput struct {
	Lab           string   `json:"lab"`
	ExamName      string   `json:"examName"`
	ExamDate      string   `json:"examDate"`
	Session       string   `json:"session"`
	Time          string   `json:"time"`
	Year          string   `json:"year"`
	TotalStudents int      `json:"totalStudents"`
	RollStart     string   `json:"rollStart"`
	RollEnd       string   `json:"rollEnd"`
	ClassNames    string   `json:"classNames"`
	Invigilators  []string `json:"invigilators"`
}

func (in LabAllocationInput) toModel() (*model.LabAllocation, error) {
	date, err := model.ParseExamDate(strings.TrimSpace(in.ExamDate))
	if err != nil {
		return nil, err
	}
	return &model.LabAllocation{
		Lab:           strings.TrimSpace(in.Lab),
		ExamName:      strings.TrimSpace(in.ExamName),
		ExamDate:      date,
		Session:       strings.ToUpper(strings.TrimSpace(in.Session)),
		Time:          strings.TrimSpace(in.Time),
		Year:          strings.TrimSpace(in.Year),
		TotalStudents: in.TotalStudents,
		RollStart:     strings.ToUpper(strings.TrimSpace(in.RollStart)),
		RollEnd:       strings.ToUpper(strings.TrimSpace(in.RollEnd)),
		ClassNames:    in.ClassNames,
		Invigilators:  in.Invigilators,
		ExpiryDate:    model.ExpiryFor(in.ExamDate),
	}, nil
}

// LabAllocationService owns the lab allocation lifecycle.  Labs have
// no per-seat layout, so only the room/session-level rules apply.
type LabAllocationService struct {
	store  LabStore
	roster StaffRoster
	duties DutySyncer
	events EventPublisher
}

// NewLabAllocationService wires a LabAllocationService.
func NewLabAllocationService(store LabStore, roster StaffRoster, duties DutySyncer, events EventPublisher) *LabAllocationService {
	return &LabAllocationService{store: store, roster: roster, duties: duties, events: events}
}

// SaveBatch validates and persists a batch of lab allocations.
func (s *LabAllocationService) SaveBatch(ctx context.Context, inputs []LabAllocationInput) ([]model.LabAllocation, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	labs := make([]*model.LabAllocation, len(inputs))
	cands := make([]validator.Candidate, len(inputs))
	for i, in := range inputs {
		l, err := in.toModel()
		if err != nil {
			return nil, err
		}
		labs[i] = l
		cands[i] = validator.Candidate{
			Location: l.Lab,
			ExamDate: l.ExamDate.Format("2006-01-02"),
			Time:     l.Time,
			Session:  l.Session,
			Year:     l.Year,
		}
	}

	if err := validator.ValidateLocationYears(ctx, cands, s.store); err != nil {
		return nil, err
	}

	if err := s.store.InsertBatch(ctx, labs); err != nil {
		return nil, err
	}

	saved := make([]model.LabAllocation, len(labs))
	for i, l := range labs {
		saved[i] = *l
		s.afterWrite(ctx, l, queue.ActionSaved)
	}
	return saved, nil
}

// LabPackRequest describes an allocate-and-save run over labs.
type LabPackRequest struct {
	ExamName string   `json:"examName"`
	ExamDate string   `json:"examDate"`
	Session  string   `json:"session"`
	Time     string   `json:"time"`
	Year     string   `json:"year"`
	Classes  string   `json:"classNames"`
	Labs     []string `json:"labs"`
	StartLab string   `json:"startLab"`
	Capacity int      `json:"capacity"`
	Rolls    []string `json:"rolls"`
}

// PackAndSave splits the rolls into capacity-sized lab batches and
// hands the result to SaveBatch, pairing invigilators from the active
// roster.  Unlike hall packing there is no leftover bucket; a request
// the labs cannot hold is refused outright.
func (s *LabAllocationService) PackAndSave(ctx context.Context, req LabPackRequest) ([]model.LabAllocation, error) {
	groups, err := allocator.PackLabs(req.Rolls, req.Labs, req.StartLab, req.Capacity)
	if err != nil {
		return nil, err
	}

	roster, err := s.roster.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load invigilator roster: %w", err)
	}

	invIndex := 0
	inputs := make([]LabAllocationInput, len(groups))
	for i, g := range groups {
		var start, end string
		if len(g.Rolls) > 0 {
			start, end = g.Rolls[0], g.Rolls[len(g.Rolls)-1]
		}
		inputs[i] = LabAllocationInput{
			Lab:           g.Lab,
			ExamName:      req.ExamName,
			ExamDate:      req.ExamDate,
			Session:       req.Session,
			Time:          req.Time,
			Year:          req.Year,
			TotalStudents: len(g.Rolls),
			RollStart:     start,
			RollEnd:       end,
			ClassNames:    req.Classes,
			Invigilators:  nextInvigilatorPair(roster, &invIndex),
		}
	}
	return s.SaveBatch(ctx, inputs)
}

// UpdateInvigilators replaces a lab allocation's invigilator pair and
// resyncs its duty rows.
func (s *LabAllocationService) UpdateInvigilators(ctx context.Context, id uint64, invigilators []string) (*model.LabAllocation, error) {
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

// Update rewrites a lab allocation's fields and resyncs its duty rows.
func (s *LabAllocationService) Update(ctx context.Context, id uint64, in LabAllocationInput) (*model.LabAllocation, error) {
	l, err := in.toModel()
	if err != nil {
		return nil, err
	}
	l.ID = id
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, updated, queue.ActionSaved)
	return updated, nil
}

// Delete removes a lab allocation together with its duty rows.
func (s *LabAllocationService) Delete(ctx context.Context, id uint64) error {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	synced := true
	if err := s.duties.Remove(ctx, l.Ref()); err != nil {
		synced = false
		log.Printf("duty-sync: remove duties for %s failed: %v", l.Ref(), err)
	}
	s.publish(ctx, l, queue.ActionRemoved, synced)
	return nil
}

// Active lists lab allocations that have not yet expired.
func (s *LabAllocationService) Active(ctx context.Context) ([]model.LabAllocation, error) {
	return s.store.FindActive(ctx)
}

// ForStudent returns the active lab allocations whose roll range
// contains the given roll number.
func (s *LabAllocationService) ForStudent(ctx context.Context, roll string) ([]model.LabAllocation, error) {
	roll = strings.ToUpper(strings.TrimSpace(roll))
	all, err := s.store.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	var matched []model.LabAllocation
	for _, l := range all {
		if allocator.RollInRange(roll, l.RollStart, l.RollEnd) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

func (s *LabAllocationService) afterWrite(ctx context.Context, l *model.LabAllocation, action string) {
	synced := true
	if err := s.duties.Sync(ctx, dutySourceFromLab(l)); err != nil {
		synced = false
		log.Printf("duty-sync: sync duties for %s failed: %v", l.Ref(), err)
	}
	s.publish(ctx, l, action, synced)
}

func (s *LabAllocationService) publish(ctx context.Context, l *model.LabAllocation, action string, synced bool) {
	if s.events == nil {
		return
	}
	ev := queue.AllocationEvent{
		Action:        action,
		Ref:           l.Ref(),
		Location:      l.Lab,
		ExamName:      l.ExamName,
		ExamDate:      l.ExamDate.Format("2006-01-02"),
		Time:          l.Time,
		Session:       l.Session,
		Year:          l.Year,
		TotalStudents: l.TotalStudents,
		Invigilators:  l.Invigilators,
		DutySynced:    synced,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("allocation-events: publish %s for %s failed: %v", action, l.Ref(), err)
	}
}

func dutySourceFromLab(l *model.LabAllocation) duty.Source {
	return duty.Source{
		Ref:          l.Ref(),
		ExamName:     l.ExamName,
		ExamDate:     l.ExamDate.Format("2006-01-02"),
		Session:      l.Session,
		Location:     l.Lab,
		Year:         l.Year,
		Invigilators: l.Invigilators,
		CreatedAt:    l.CreatedAt,
	}
}
