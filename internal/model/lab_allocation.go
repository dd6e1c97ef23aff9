package model

import (
	"fmt"
	"time"
)

// LabAllocation is the coarser allocation unit used for computer
// labs.  There is no per-seat layout, only a contiguous roll range per
// lab, and exactly two invigilators.  The exam date is a typed date
// here, unlike the string kept on hall allocations.
type LabAllocation struct {
	ID            uint64    `json:"id"`             // lab_allocations.id
	Lab           string    `json:"lab"`            // lab_allocations.lab (location key, e.g. "CC1 & CC2")
	ExamName      string    `json:"exam_name"`      // lab_allocations.exam_name
	ExamDate      time.Time `json:"exam_date"`      // lab_allocations.exam_date (DATE)
	Session       string    `json:"session"`        // lab_allocations.session (FN | AN)
	Time          string    `json:"time"`           // lab_allocations.exam_time
	Year          string    `json:"year"`           // lab_allocations.year
	TotalStudents int       `json:"total_students"` // lab_allocations.total_students
	RollStart     string    `json:"roll_start"`     // lab_allocations.roll_start
	RollEnd       string    `json:"roll_end"`       // lab_allocations.roll_end
	ClassNames    string    `json:"class_names"`    // lab_allocations.class_names (comma joined)
	Invigilators  []string  `json:"invigilators"`   // lab_allocations.invigilators (JSON, exactly 2)
	ExpiryDate    time.Time `json:"expiry_date"`    // lab_allocations.expiry_date
	CreatedAt     time.Time `json:"created_at"`     // lab_allocations.created_at
	UpdatedAt     time.Time `json:"updated_at"`     // lab_allocations.updated_at
}

// Ref returns the duty-row reference for this lab allocation.
func (l LabAllocation) Ref() string { return fmt.Sprintf("lab-%d", l.ID) }
