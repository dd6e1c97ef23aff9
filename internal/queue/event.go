// Package queue defines the message payloads exchanged over the
// broker and the background consumer that audits them.
package queue

// Event actions published on the allocation.duty queue.
const (
	ActionSaved   = "saved"
	ActionRemoved = "removed"
)

// DutyQueueName is the durable queue carrying allocation lifecycle
// events.  Duty rows themselves are written synchronously after the
// allocation commit; these events exist so the failure-swallowed side
// effect stays observable downstream.
const DutyQueueName = "allocation.duty"

// AllocationEvent is published after an allocation write commits and
// its duty resync has been attempted.  It carries enough for
// downstream consumers to audit or notify without querying the
// primary database.
type AllocationEvent struct {
	Action        string   `json:"action"` // saved | removed
	Ref           string   `json:"ref"`    // "hall-<id>" | "lab-<id>"
	Location      string   `json:"location"`
	ExamName      string   `json:"exam_name"`
	ExamDate      string   `json:"exam_date"`
	Time          string   `json:"time"`
	Session       string   `json:"session"`
	Year          string   `json:"year"`
	TotalStudents int      `json:"total_students"`
	Invigilators  []string `json:"invigilators"`
	DutySynced    bool     `json:"duty_synced"` // false when the resync failed and was only logged
	OccurredAt    string   `json:"occurred_at"`
}
