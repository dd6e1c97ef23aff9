package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcell/hall-allocation/internal/model"
	"github.com/examcell/hall-allocation/internal/repository"
)

type fakeDutyLister struct {
	totals []repository.DutyTotals
}

func (f *fakeDutyLister) ListAll(context.Context) ([]model.StaffDuty, error)          { return nil, nil }
func (f *fakeDutyLister) ListByStaffID(context.Context, string) ([]model.StaffDuty, error) {
	return nil, nil
}
func (f *fakeDutyLister) ListByStaffName(context.Context, string) ([]model.StaffDuty, error) {
	return nil, nil
}
func (f *fakeDutyLister) Totals(context.Context) ([]repository.DutyTotals, error) {
	return f.totals, nil
}

func TestReportMergesRosterWithTotals(t *testing.T) {
	duties := &fakeDutyLister{totals: []repository.DutyTotals{
		{StaffID: "STF001", StaffName: "Alice Kumar", TotalDuties: 4, TotalHours: 12, UpcomingDuties: 1},
		{StaffID: "EXT99", StaffName: "Visiting Examiner", TotalDuties: 1, TotalHours: 3},
	}}
	roster := &fakeRoster{roster: []model.Invigilator{
		{EmpID: "STF001", Name: "Alice Kumar", Department: "CSE", Designation: "AP"},
		{EmpID: "STF002", Name: "Bob Menon", Department: "ECE", Designation: "AP"},
	}}

	svc := NewDutyReportService(duties, roster)
	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 3)

	// Sorted by name: Alice, Bob, Visiting.
	assert.Equal(t, "Alice Kumar", report[0].StaffName)
	assert.Equal(t, 4, report[0].TotalDuties)
	assert.Equal(t, "CSE", report[0].Department)

	// Roster members without duties still appear with zero counts.
	assert.Equal(t, "Bob Menon", report[1].StaffName)
	assert.Zero(t, report[1].TotalDuties)

	// Duty rows outside the roster land in the external bucket.
	assert.Equal(t, "Visiting Examiner", report[2].StaffName)
	assert.Equal(t, externalDepartment, report[2].Department)
	assert.Equal(t, 1, report[2].TotalDuties)
}
