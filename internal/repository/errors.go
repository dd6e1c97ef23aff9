// Package repository implements data access over MySQL.  Sentinel
// errors shared by several repositories live here so handlers can
// translate them to the right HTTP status: not-found values map to
// 404, ErrDuplicateAllocation maps to 409.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicateAllocation is returned when an insert trips the
// composite unique index over (location, exam date, time, session,
// year).  It is the storage-level arbiter behind the validator's
// read-based room/session check: two batches can both pass validation
// and race to insert, and the index rejects the loser.
var ErrDuplicateAllocation = errors.New("allocation already exists for this location, timeslot and year")

// isDuplicate reports whether err is a MySQL duplicate-entry error
// (error number 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
