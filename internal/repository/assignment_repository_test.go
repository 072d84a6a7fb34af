package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/models"
)

func newAssignmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositorySaveBatchUpserts(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(sqlmock.AnyArg(), "run-1", 10, 1, 5, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SaveBatch(context.Background(), nil, []models.AssignmentRow{
		{RunID: "run-1", CourseID: 10, SlotID: 1, InstructorID: 5, RoomID: 2},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositorySaveBatchEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	require.NoError(t, repo.SaveBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListByRunOrdersByCourseThenSlot(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "run_id", "course_id", "slot_id", "instructor_id", "room_id", "created_at"}).
		AddRow("a1", "run-1", 1, 2, 5, 2, now).
		AddRow("a2", "run-1", 1, 3, 5, 2, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, course_id, slot_id, instructor_id, room_id, created_at\nFROM assignments WHERE run_id = $1 ORDER BY course_id ASC, slot_id ASC")).
		WithArgs("run-1").
		WillReturnRows(rows)

	result, err := repo.ListByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 2, result[0].SlotID)
	assert.Equal(t, 3, result[1].SlotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteByRun(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE run_id = $1")).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteByRun(context.Background(), "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
