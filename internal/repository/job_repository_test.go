package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/models"
)

func TestJobRepositoryCreateDefaultsToDraft(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec("INSERT INTO jobs").
		WithArgs("job-1", models.JobDraft, "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), models.JobRow{ID: "job-1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	objective := 42.0
	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status = $2, solve_status = $3, objective = $4, error = $5, updated_at = $6")).
		WithArgs("job-1", models.JobGenerated, "OPTIMAL", &objective, (*string)(nil), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "job-1", models.JobGenerated, "OPTIMAL", &objective, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryGet(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "status", "run_id", "solve_status", "objective", "error", "created_at", "updated_at"}).
		AddRow("job-1", models.JobGenerated, "run-1", "OPTIMAL", 42.0, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, run_id, solve_status, objective, error, created_at, updated_at")).
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobGenerated, job.Status)
	assert.Equal(t, "run-1", job.RunID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
