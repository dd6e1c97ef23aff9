package duty

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcell/hall-allocation/internal/model"
)

// fakeStore keeps duty rows in memory keyed by allocation reference.
type fakeStore struct {
	rows    map[string][]model.StaffDuty
	deletes int
	inserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string][]model.StaffDuty{}}
}

func (f *fakeStore) DeleteByAllocation(_ context.Context, ref string) error {
	f.deletes++
	delete(f.rows, ref)
	return nil
}

func (f *fakeStore) InsertBatch(_ context.Context, duties []model.StaffDuty) error {
	f.inserts++
	for _, d := range duties {
		f.rows[d.AllocationRef] = append(f.rows[d.AllocationRef], d)
	}
	return nil
}

// fakeDirectory resolves names from a fixed map, case-insensitively.
type fakeDirectory struct {
	byName map[string]model.Invigilator
}

func (f *fakeDirectory) FindByName(_ context.Context, name string) (*model.Invigilator, error) {
	for _, inv := range f.byName {
		if strings.EqualFold(inv.Name, name) {
			found := inv
			return &found, nil
		}
	}
	return nil, ErrStaffNotFound
}

func testSource(invigilators ...string) Source {
	return Source{
		Ref:             "hall-7",
		ExamName:        "CS8491 - Computer Architecture",
		CATNumber:       "CAT-1",
		SubjectWithCode: "CS8491 - Computer Architecture",
		ExamDate:        "2026-09-10",
		Session:         model.SessionFN,
		Location:        "R1",
		Year:            "III",
		Semester:        "5",
		Invigilators:    invigilators,
		CreatedAt:       time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSyncCreatesOneRowPerInvigilator(t *testing.T) {
	store := newFakeStore()
	dir := &fakeDirectory{byName: map[string]model.Invigilator{
		"bob": {EmpID: "STF002", Name: "Bob Menon"},
	}}
	s := NewSynchronizer(store, dir)

	err := s.Sync(context.Background(), testSource("STF001-Alice Kumar", "Bob Menon", "Ghost Writer"))
	require.NoError(t, err)

	rows := store.rows["hall-7"]
	require.Len(t, rows, 3)

	// "ID-Name" entries split without touching the directory.
	assert.Equal(t, "STF001", rows[0].StaffID)
	assert.Equal(t, "Alice Kumar", rows[0].StaffName)

	// Plain names resolve through the directory.
	assert.Equal(t, "STF002", rows[1].StaffID)
	assert.Equal(t, "Bob Menon", rows[1].StaffName)

	// Unresolvable names keep the sentinel id but keep the name.
	assert.Equal(t, model.UnknownStaffID, rows[2].StaffID)
	assert.Equal(t, "Ghost Writer", rows[2].StaffName)

	for _, row := range rows {
		assert.Equal(t, "hall-7", row.AllocationRef)
		assert.Equal(t, "09:30", row.DutyStartTime)
		assert.Equal(t, "12:30", row.DutyEndTime)
		assert.InDelta(t, 3.0, row.DutyHours, 0.001)
		assert.Equal(t, "CS8491", row.SubjectCode)
		assert.Equal(t, 2026, row.ExamDate.Year())
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	store := newFakeStore()
	s := NewSynchronizer(store, nil)
	src := testSource("STF001-Alice Kumar", "STF002-Bob Menon")

	require.NoError(t, s.Sync(context.Background(), src))
	first := append([]model.StaffDuty(nil), store.rows["hall-7"]...)

	require.NoError(t, s.Sync(context.Background(), src))
	assert.Equal(t, first, store.rows["hall-7"])
	assert.Equal(t, 2, store.deletes)
	assert.Equal(t, 2, store.inserts)
}

func TestSyncWithoutInvigilatorsLeavesNoRows(t *testing.T) {
	store := newFakeStore()
	s := NewSynchronizer(store, nil)

	// Seed rows, then resync with an empty invigilator list.
	require.NoError(t, s.Sync(context.Background(), testSource("STF001-Alice Kumar")))
	require.NoError(t, s.Sync(context.Background(), testSource()))

	assert.Empty(t, store.rows["hall-7"])
	assert.Equal(t, 1, store.inserts)
}

func TestRemoveDeletesAllRows(t *testing.T) {
	store := newFakeStore()
	s := NewSynchronizer(store, nil)

	require.NoError(t, s.Sync(context.Background(), testSource("STF001-Alice Kumar")))
	require.NoError(t, s.Remove(context.Background(), "hall-7"))
	assert.Empty(t, store.rows["hall-7"])
}

func TestSessionWindow(t *testing.T) {
	tests := []struct {
		session    string
		start, end string
	}{
		{model.SessionFN, "09:30", "12:30"},
		{model.SessionAN, "13:30", "16:30"},
		{"EVENING", "", ""},
	}
	for _, tt := range tests {
		start, end := SessionWindow(tt.session)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}

func TestDutyHours(t *testing.T) {
	assert.InDelta(t, 3.0, DutyHours(model.SessionFN, "09:30", "12:30"), 0.001)
	assert.InDelta(t, 1.5, DutyHours(model.SessionAN, "13:30", "15:00"), 0.001)
	// Known session with a broken window falls back to the default.
	assert.InDelta(t, 3.0, DutyHours(model.SessionFN, "bogus", "12:30"), 0.001)
	// Unknown session with no window counts nothing.
	assert.Zero(t, DutyHours("EVENING", "", ""))
}
