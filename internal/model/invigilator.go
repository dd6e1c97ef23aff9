package model

import "time"

// UnknownStaffID is the sentinel employee identifier recorded on a
// duty row when an invigilator name cannot be resolved against the
// staff directory.
const UnknownStaffID = "N/A"

// Invigilator is one member of the staff directory.  The directory is
// read-only for the allocation core: duty derivation looks up employee
// identifiers by display name, nothing here is ever mutated by it.
//
// Fields:
//  ID          – primary key identifier.
//  EmpID       – unique employee identifier.
//  Name        – display name matched case-insensitively.
//  Department  – owning department.
//  Designation – staff designation.
//  IsActive    – whether the member is part of the active roster.
//  CreatedAt   – creation timestamp.
type Invigilator struct {
	ID          uint64    `json:"id"`          // invigilators.id
	EmpID       string    `json:"emp_id"`      // invigilators.emp_id
	Name        string    `json:"name"`        // invigilators.name
	Department  string    `json:"department"`  // invigilators.department
	Designation string    `json:"designation"` // invigilators.designation
	IsActive    bool      `json:"is_active"`   // invigilators.is_active
	CreatedAt   time.Time `json:"created_at"`  // invigilators.created_at
}
