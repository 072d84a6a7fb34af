package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ashgrove/schedcore/internal/models"
)

// JobRepository persists the durable record of a job's lifecycle
// ("DRAFT → GENERATING → (GENERATED | DRAFT)"), independent
// from the in-memory queue and the Redis status cache in pkg/cache.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository builds the repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a job in DRAFT status.
func (r *JobRepository) Create(ctx context.Context, job models.JobRow) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = models.JobDraft
	}

	const query = `
INSERT INTO jobs (id, status, run_id, solve_status, objective, error, created_at, updated_at)
VALUES (:id, :status, :run_id, :solve_status, :objective, :error, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// UpdateStatus transitions a job's status and result fields.
func (r *JobRepository) UpdateStatus(ctx context.Context, jobID string, status models.JobStatus, solveStatus string, objective *float64, jobErr *string) error {
	const query = `
UPDATE jobs SET status = $2, solve_status = $3, objective = $4, error = $5, updated_at = $6
WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, jobID, status, solveStatus, objective, jobErr, time.Now().UTC()); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// Get fetches one job by id.
func (r *JobRepository) Get(ctx context.Context, jobID string) (models.JobRow, error) {
	const query = `SELECT id, status, run_id, solve_status, objective, error, created_at, updated_at
FROM jobs WHERE id = $1`
	var job models.JobRow
	if err := r.db.GetContext(ctx, &job, query, jobID); err != nil {
		return models.JobRow{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}
