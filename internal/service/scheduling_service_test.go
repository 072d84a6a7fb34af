package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/model"
	"github.com/ashgrove/schedcore/internal/models"
)

type fakeAssignmentSaver struct {
	saved []models.AssignmentRow
	err   error
}

func (f *fakeAssignmentSaver) SaveBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.AssignmentRow) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, rows...)
	return nil
}

func newTestSchedulingService() (*SchedulingService, *fakeAssignmentSaver) {
	saver := &fakeAssignmentSaver{}
	svc := NewSchedulingService(nil, nil, saver, nil, nil, SchedulingConfig{ProposalTTL: time.Minute})
	return svc, saver
}

func TestProposalStoreSaveGetDelete(t *testing.T) {
	store := newProposalStore(time.Minute)
	store.Save(solveProposal{ProposalID: "p1", RequestedAt: time.Now().UTC()})

	got, ok := store.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "p1", got.ProposalID)

	store.Delete("p1")
	_, ok = store.Get("p1")
	assert.False(t, ok)
}

func TestProposalStoreExpiresAfterTTL(t *testing.T) {
	store := newProposalStore(time.Millisecond)
	store.Save(solveProposal{ProposalID: "p1", RequestedAt: time.Now().UTC().Add(-time.Hour)})

	_, ok := store.Get("p1")
	assert.False(t, ok)
}

func TestSchedulingServiceCommitRejectsUnknownProposal(t *testing.T) {
	svc, _ := newTestSchedulingService()
	err := svc.Commit(context.Background(), "missing", "run-1")
	require.Error(t, err)
}

func TestSchedulingServiceCommitRejectsNonCommittableStatus(t *testing.T) {
	svc, _ := newTestSchedulingService()
	svc.store.Save(solveProposal{
		ProposalID:  "p1",
		Result:      model.Result{Status: model.StatusInfeasible},
		RequestedAt: time.Now().UTC(),
	})

	err := svc.Commit(context.Background(), "p1", "run-1")
	require.Error(t, err)
}

func TestSchedulingServiceCommitPersistsAssignments(t *testing.T) {
	svc, saver := newTestSchedulingService()
	svc.store.Save(solveProposal{
		ProposalID: "p1",
		Result: model.Result{
			Status: model.StatusOptimal,
			Assignment: []model.Assignment{
				{CourseID: 1, SlotID: 2, InstructorID: 3, RoomID: 4},
			},
		},
		RequestedAt: time.Now().UTC(),
	})

	err := svc.Commit(context.Background(), "p1", "run-1")
	require.NoError(t, err)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "run-1", saver.saved[0].RunID)

	_, ok := svc.store.Get("p1")
	assert.False(t, ok, "proposal should be removed after commit")
}
