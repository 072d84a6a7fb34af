// Package repository is the storage adapter collaborator: it
// persists a solved Assignment and maps it back to rows, preserving the
// course_id/slot_id/instructor_id/room_id identity the core hands back.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ashgrove/schedcore/internal/models"
)

// AssignmentRepository persists solved assignments keyed by run id.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository builds the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// SaveBatch upserts the rows of one solve run, keyed by
// (run_id, course_id, slot_id) so replaying the same run is idempotent.
func (r *AssignmentRepository) SaveBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.AssignmentRow) error {
	if len(rows) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO assignments (id, run_id, course_id, slot_id, instructor_id, room_id, created_at)
VALUES (:id, :run_id, :course_id, :slot_id, :instructor_id, :room_id, :created_at)
ON CONFLICT (run_id, course_id, slot_id) DO UPDATE
SET instructor_id = EXCLUDED.instructor_id,
    room_id = EXCLUDED.room_id`

	for i := range rows {
		row := &rows[i]
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, row); err != nil {
			return fmt.Errorf("upsert assignment row: %w", err)
		}
	}
	return nil
}

// ListByRun returns assignment rows for a run, ordered by (course_id, slot_id)
// to match the core's own ordering guarantee.
func (r *AssignmentRepository) ListByRun(ctx context.Context, runID string) ([]models.AssignmentRow, error) {
	const query = `SELECT id, run_id, course_id, slot_id, instructor_id, room_id, created_at
FROM assignments WHERE run_id = $1 ORDER BY course_id ASC, slot_id ASC`
	var rows []models.AssignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("list assignments by run: %w", err)
	}
	return rows, nil
}

// DeleteByRun removes all rows for a run.
func (r *AssignmentRepository) DeleteByRun(ctx context.Context, runID string) error {
	const query = `DELETE FROM assignments WHERE run_id = $1`
	if _, err := r.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("delete assignments by run: %w", err)
	}
	return nil
}
