package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcell/hall-allocation/internal/duty"
	"github.com/examcell/hall-allocation/internal/model"
	"github.com/examcell/hall-allocation/internal/queue"
	"github.com/examcell/hall-allocation/internal/validator"
)

func rosterOf(entries ...string) []model.Invigilator {
	roster := make([]model.Invigilator, len(entries))
	for i, e := range entries {
		parts := strings.SplitN(e, "-", 2)
		roster[i] = model.Invigilator{EmpID: parts[0], Name: parts[1], IsActive: true}
	}
	return roster
}

// fakeAllocStore records inserts and serves YearsAt from a fixed map.
type fakeAllocStore struct {
	inserted []*model.Allocation
	occupied map[string][]string
	nextID   uint64
}

func (f *fakeAllocStore) InsertBatch(_ context.Context, allocs []*model.Allocation) error {
	for _, a := range allocs {
		f.nextID++
		a.ID = f.nextID
	}
	f.inserted = append(f.inserted, allocs...)
	return nil
}

func (f *fakeAllocStore) FindActive(context.Context) ([]model.Allocation, error) {
	out := make([]model.Allocation, len(f.inserted))
	for i, a := range f.inserted {
		out[i] = *a
	}
	return out, nil
}

func (f *fakeAllocStore) GetByID(_ context.Context, id uint64) (*model.Allocation, error) {
	for _, a := range f.inserted {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAllocStore) UpdateInvigilators(_ context.Context, id uint64, inv []string) error {
	a, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	a.Invigilators = inv
	return nil
}

func (f *fakeAllocStore) Update(context.Context, *model.Allocation) error { return nil }
func (f *fakeAllocStore) Delete(context.Context, uint64) error            { return nil }

func (f *fakeAllocStore) YearsAt(_ context.Context, location, examDate, timeOfDay, session string) ([]string, error) {
	return f.occupied[strings.Join([]string{location, examDate, timeOfDay, session}, "|")], nil
}

type fakeYearLookup struct{ years map[string]string }

func (f *fakeYearLookup) YearsByRoll(_ context.Context, rolls []string) (map[string]string, error) {
	out := map[string]string{}
	for _, r := range rolls {
		if y, ok := f.years[strings.ToUpper(r)]; ok {
			out[strings.ToUpper(r)] = y
		}
	}
	return out, nil
}

type fakeSyncer struct {
	synced  []duty.Source
	removed []string
	fail    bool
}

func (f *fakeSyncer) Sync(_ context.Context, src duty.Source) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.synced = append(f.synced, src)
	return nil
}

func (f *fakeSyncer) Remove(_ context.Context, ref string) error {
	f.removed = append(f.removed, ref)
	return nil
}

type fakePublisher struct{ events []queue.AllocationEvent }

func (f *fakePublisher) Publish(_ context.Context, ev queue.AllocationEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeRooms struct{ rooms []model.Room }

func (f *fakeRooms) GetAll(context.Context) ([]model.Room, error) { return f.rooms, nil }

type fakeRoster struct{ roster []model.Invigilator }

func (f *fakeRoster) GetActive(context.Context) ([]model.Invigilator, error) {
	return f.roster, nil
}

func newTestService(store *fakeAllocStore, years map[string]string,
	rooms []model.Room, roster []model.Invigilator) (*AllocationService, *fakeSyncer, *fakePublisher) {
	syncer := &fakeSyncer{}
	pub := &fakePublisher{}
	svc := NewAllocationService(store, &fakeYearLookup{years: years},
		&fakeRooms{rooms: rooms}, &fakeRoster{roster: roster}, syncer, pub)
	return svc, syncer, pub
}

func validInput(room, year string, rolls ...string) AllocationInput {
	positions := make([]StudentPosition, len(rolls))
	for i, r := range rolls {
		positions[i] = StudentPosition{Roll: r, Row: i + 1, Col: 1}
	}
	return AllocationInput{
		ExamName:         "Model Exam",
		ExamDate:         "2026-09-10",
		Time:             "09:30",
		Session:          "FN",
		Year:             year,
		Room:             room,
		StudentPositions: positions,
	}
}

func TestSaveBatchPersistsAndSyncsDuties(t *testing.T) {
	store := &fakeAllocStore{}
	svc, syncer, pub := newTestService(store, map[string]string{"A1": "II"}, nil, nil)

	in := validInput("R1", "II", "A1")
	in.Invigilators = []string{"STF001-Alice"}

	saved, err := svc.SaveBatch(context.Background(), []AllocationInput{in})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, uint64(1), saved[0].ID)

	require.Len(t, syncer.synced, 1)
	assert.Equal(t, "hall-1", syncer.synced[0].Ref)

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.ActionSaved, pub.events[0].Action)
	assert.True(t, pub.events[0].DutySynced)
}

func TestSaveBatchRejectsViolationBeforeWriting(t *testing.T) {
	store := &fakeAllocStore{occupied: map[string][]string{
		"R1|2026-09-10|09:30|FN": {"II"},
	}}
	svc, syncer, _ := newTestService(store, map[string]string{"A1": "II"}, nil, nil)

	_, err := svc.SaveBatch(context.Background(), []AllocationInput{validInput("R1", "II", "A1")})

	var v *validator.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, validator.KindDuplicateYearInRoom, v.Kind)
	// Nothing was written and no side effects ran.
	assert.Empty(t, store.inserted)
	assert.Empty(t, syncer.synced)
}

func TestSaveBatchSurvivesDutySyncFailure(t *testing.T) {
	store := &fakeAllocStore{}
	svc, syncer, pub := newTestService(store, map[string]string{"A1": "II"}, nil, nil)
	syncer.fail = true

	saved, err := svc.SaveBatch(context.Background(), []AllocationInput{validInput("R1", "II", "A1")})
	// The allocation write stands even when duty derivation fails.
	require.NoError(t, err)
	require.Len(t, saved, 1)

	require.Len(t, pub.events, 1)
	assert.False(t, pub.events[0].DutySynced)
}

func TestPackAndSaveSeatsLeftoverAsUnallocated(t *testing.T) {
	store := &fakeAllocStore{}
	rooms := []model.Room{
		{RoomNo: "R1", Columns: []model.Column{{ColNo: 1, Rows: 2}}},
	}
	svc, _, _ := newTestService(store, map[string]string{}, rooms, rosterOf("STF001-Alice", "STF002-Bob"))

	saved, leftover, err := svc.PackAndSave(context.Background(), PackRequest{
		ExamName:  "Model Exam",
		ExamDate:  "2026-09-10",
		Time:      "09:30",
		Session:   "FN",
		Year:      "II",
		StartRoom: "R1",
		Sources:   [][]string{{"A1", "A2", "A3"}},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, []string{"A3"}, leftover)

	assert.Equal(t, "R1", saved[0].Room)
	assert.Equal(t, []string{"STF001-Alice", "STF002-Bob"}, saved[0].Invigilators)

	assert.Equal(t, UnallocatedRoom, saved[1].Room)
	assert.True(t, saved[1].IsUnallocated)
	require.Len(t, saved[1].Students, 1)
	assert.Equal(t, "A3", saved[1].Students[0].RollNo)
}

func TestForStudentMatchesSeatAndRange(t *testing.T) {
	store := &fakeAllocStore{}
	svc, _, _ := newTestService(store, map[string]string{"A1": "II", "B1": "III"}, nil, nil)

	seated := validInput("R1", "II", "A1")
	ranged := validInput("R2", "III", "B1")
	ranged.RollStart = "C001"
	ranged.RollEnd = "C050"

	_, err := svc.SaveBatch(context.Background(), []AllocationInput{seated, ranged})
	require.NoError(t, err)

	got, err := svc.ForStudent(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Seat)
	assert.Equal(t, "A1", got[0].Seat.RollNo)

	got, err = svc.ForStudent(context.Background(), "C010")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Seat)
	assert.Equal(t, "R2", got[0].Allocation.Room)
}
