package model

import "time"

// StaffDuty is a derived record: one row per invigilator per
// allocation, regenerated in full whenever the owning allocation's
// invigilator list changes.  Rows reference their allocation through
// AllocationRef and are never patched incrementally.
type StaffDuty struct {
	ID                    uint64    `json:"id"`                      // staff_duties.id
	StaffID               string    `json:"staff_id"`                // upper-cased, "N/A" when unresolved
	StaffName             string    `json:"staff_name"`              // staff_duties.staff_name
	AllocationRef         string    `json:"allocation_ref"`          // "hall-<id>" | "lab-<id>"
	ExamName              string    `json:"exam_name"`               // staff_duties.exam_name
	CATNumber             string    `json:"cat_number"`              // staff_duties.cat_number
	SubjectCode           string    `json:"subject_code"`            // staff_duties.subject_code
	SubjectName           string    `json:"subject_name"`            // staff_duties.subject_name
	ExamDate              time.Time `json:"exam_date"`               // staff_duties.exam_date
	Session               string    `json:"session"`                 // FN | AN
	HallNumber            string    `json:"hall_number"`             // staff_duties.hall_number
	Year                  string    `json:"year"`                    // staff_duties.year
	Semester              string    `json:"semester"`                // staff_duties.semester
	DutyStartTime         string    `json:"duty_start_time"`         // "09:30"
	DutyEndTime           string    `json:"duty_end_time"`           // "12:30"
	DutyHours             float64   `json:"duty_hours"`              // staff_duties.duty_hours
	AllocationCreatedDate time.Time `json:"allocation_created_date"` // staff_duties.allocation_created_date
	CreatedAt             time.Time `json:"created_at"`              // staff_duties.created_at
}
