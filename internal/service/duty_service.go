package service

import (
	"context"
	"sort"
	"strings"

	"github.com/examcell/hall-allocation/internal/model"
	"github.com/examcell/hall-allocation/internal/repository"
)

// DutyLister is the read surface over derived duty rows.
// *repository.StaffDutyRepo implements it.
type DutyLister interface {
	ListAll(ctx context.Context) ([]model.StaffDuty, error)
	ListByStaffID(ctx context.Context, staffID string) ([]model.StaffDuty, error)
	ListByStaffName(ctx context.Context, name string) ([]model.StaffDuty, error)
	Totals(ctx context.Context) ([]repository.DutyTotals, error)
}

// StaffDutySummary is one row of the duty report: an invigilator with
// their aggregated duty load.  Roster members without duties appear
// with zero counts; duty rows whose staff id matches no roster member
// are reported under the External/Other department.
type StaffDutySummary struct {
	StaffID        string  `json:"staffId"`
	StaffName      string  `json:"staffName"`
	Department     string  `json:"department"`
	Designation    string  `json:"designation"`
	TotalDuties    int     `json:"totalDuties"`
	TotalHours     float64 `json:"totalHours"`
	UpcomingDuties int     `json:"upcomingDuties"`
}

// externalDepartment labels duty rows carrying staff ids that are not
// on the active roster (resolved externals or the N/A sentinel).
const externalDepartment = "External/Other"

// DutyReportService produces staff-facing duty listings and the
// per-invigilator workload report.
type DutyReportService struct {
	duties DutyLister
	roster StaffRoster
}

// NewDutyReportService wires a DutyReportService.
func NewDutyReportService(duties DutyLister, roster StaffRoster) *DutyReportService {
	return &DutyReportService{duties: duties, roster: roster}
}

// All returns every duty row, newest exam first.
func (s *DutyReportService) All(ctx context.Context) ([]model.StaffDuty, error) {
	return s.duties.ListAll(ctx)
}

// ByStaffID returns one employee's duties.
func (s *DutyReportService) ByStaffID(ctx context.Context, staffID string) ([]model.StaffDuty, error) {
	return s.duties.ListByStaffID(ctx, staffID)
}

// ByStaffName returns duties matching a name fragment.
func (s *DutyReportService) ByStaffName(ctx context.Context, name string) ([]model.StaffDuty, error) {
	return s.duties.ListByStaffName(ctx, name)
}

// Report merges the duty totals with the active roster so every
// roster member appears even with zero duties, sorted by name.
func (s *DutyReportService) Report(ctx context.Context) ([]StaffDutySummary, error) {
	totals, err := s.duties.Totals(ctx)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]repository.DutyTotals, len(totals))
	for _, t := range totals {
		byID[strings.ToUpper(t.StaffID)] = t
	}

	report := make([]StaffDutySummary, 0, len(roster))
	seen := make(map[string]bool, len(roster))
	for _, inv := range roster {
		id := strings.ToUpper(inv.EmpID)
		seen[id] = true
		row := StaffDutySummary{
			StaffID:     inv.EmpID,
			StaffName:   inv.Name,
			Department:  inv.Department,
			Designation: inv.Designation,
		}
		if t, ok := byID[id]; ok {
			row.TotalDuties = t.TotalDuties
			row.TotalHours = t.TotalHours
			row.UpcomingDuties = t.UpcomingDuties
		}
		report = append(report, row)
	}
	for _, t := range totals {
		if seen[strings.ToUpper(t.StaffID)] {
			continue
		}
		report = append(report, StaffDutySummary{
			StaffID:        t.StaffID,
			StaffName:      t.StaffName,
			Department:     externalDepartment,
			TotalDuties:    t.TotalDuties,
			TotalHours:     t.TotalHours,
			UpcomingDuties: t.UpcomingDuties,
		})
	}

	sort.Slice(report, func(i, j int) bool {
		return strings.ToLower(report[i].StaffName) < strings.ToLower(report[j].StaffName)
	})
	return report, nil
}
