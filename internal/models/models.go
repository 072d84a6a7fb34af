// Package models holds the persistence row shapes the repository layer
// reads and writes; the optimisation core never depends on this package —
// the core does not persist its own results.
package models

import "time"

// AssignmentRow is one persisted (course, slot, instructor, room) record
// belonging to a solve run, keyed by the caller-supplied run id so the
// storage adapter preserves id identity.
type AssignmentRow struct {
	ID           string    `db:"id"`
	RunID        string    `db:"run_id"`
	CourseID     int       `db:"course_id"`
	SlotID       int       `db:"slot_id"`
	InstructorID int       `db:"instructor_id"`
	RoomID       int       `db:"room_id"`
	CreatedAt    time.Time `db:"created_at"`
}

// JobStatus enumerates the job runner's lifecycle:
// DRAFT → GENERATING → (GENERATED | DRAFT).
type JobStatus string

const (
	JobDraft      JobStatus = "DRAFT"
	JobGenerating JobStatus = "GENERATING"
	JobGenerated  JobStatus = "GENERATED"
)

// JobRow is one persisted job status record.
type JobRow struct {
	ID          string    `db:"id"`
	Status      JobStatus `db:"status"`
	RunID       string    `db:"run_id"`
	SolveStatus string    `db:"solve_status"`
	Objective   *float64  `db:"objective"`
	Error       *string   `db:"error"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
