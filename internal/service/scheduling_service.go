// Package service is the job-runner-facing collaborator layer that sits
// between the HTTP surface and the optimisation core (internal/engine):
// it stages a solve result as a proposal, and only persists it on a
// separate Commit call, keeping the solve itself free of persistence
// side effects.
package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ashgrove/schedcore/internal/dto"
	"github.com/ashgrove/schedcore/internal/engine"
	"github.com/ashgrove/schedcore/internal/intake"
	"github.com/ashgrove/schedcore/internal/model"
	"github.com/ashgrove/schedcore/internal/models"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
)

type assignmentSaver interface {
	SaveBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.AssignmentRow) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SchedulingConfig governs proposal staging behaviour.
type SchedulingConfig struct {
	ProposalTTL time.Duration
}

// SchedulingService runs the optimisation core and stages/commits its
// results, keeping the core itself free of persistence concerns.
type SchedulingService struct {
	engine      *engine.Engine
	intake      *intake.Intake
	assignments assignmentSaver
	tx          txProvider
	logger      *zap.Logger
	store       *proposalStore
}

// NewSchedulingService wires a SchedulingService. A nil logger defaults to
// zap.NewNop(); a nil engine/intake build their own zero-value defaults.
func NewSchedulingService(
	eng *engine.Engine,
	in *intake.Intake,
	assignments assignmentSaver,
	tx txProvider,
	logger *zap.Logger,
	cfg SchedulingConfig,
) *SchedulingService {
	if eng == nil {
		eng = engine.New(nil)
	}
	if in == nil {
		in = intake.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &SchedulingService{
		engine:      eng,
		intake:      in,
		assignments: assignments,
		tx:          tx,
		logger:      logger,
		store:       newProposalStore(cfg.ProposalTTL),
	}
}

// solveProposal is a staged solve result awaiting commit.
type solveProposal struct {
	ProposalID  string
	Result      model.Result
	RequestedAt time.Time
}

// Optimise validates req, runs the engine, and stages the result as a
// proposal the caller can later commit.
func (s *SchedulingService) Optimise(ctx context.Context, req dto.OptimiseRequest, opts engine.Options) (string, model.Result, error) {
	pm, err := s.intake.Transform(req)
	if err != nil {
		return "", model.Result{}, err
	}

	result, err := s.engine.Optimise(ctx, pm, opts)
	if err != nil {
		return "", model.Result{}, err
	}

	proposalID := uuid.NewString()
	s.store.Save(solveProposal{
		ProposalID:  proposalID,
		Result:      result,
		RequestedAt: time.Now().UTC(),
	})
	s.logger.Info("solve staged",
		zap.String("proposal_id", proposalID),
		zap.String("status", string(result.Status)),
		zap.String("engine_used", result.EngineUsed),
	)
	return proposalID, result, nil
}

// Peek returns a staged proposal without committing it.
func (s *SchedulingService) Peek(proposalID string) (model.Result, error) {
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return model.Result{}, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return proposal.Result, nil
}

// Commit persists a staged proposal's assignments under runID and removes
// it from the proposal store.
func (s *SchedulingService) Commit(ctx context.Context, proposalID, runID string) error {
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if proposal.Result.Status != model.StatusOptimal &&
		proposal.Result.Status != model.StatusFeasible &&
		proposal.Result.Status != model.StatusSuboptimal {
		return appErrors.Clone(appErrors.ErrConflict, "proposal has no committable assignment")
	}
	if s.assignments == nil {
		return appErrors.Clone(appErrors.ErrInternal, "assignment repository unavailable")
	}

	rows := make([]models.AssignmentRow, 0, len(proposal.Result.Assignment))
	for _, a := range proposal.Result.Assignment {
		rows = append(rows, models.AssignmentRow{
			RunID:        runID,
			CourseID:     a.CourseID,
			SlotID:       a.SlotID,
			InstructorID: a.InstructorID,
			RoomID:       a.RoomID,
		})
	}

	var exec sqlx.ExtContext
	if s.tx != nil {
		tx, err := s.tx.BeginTxx(ctx, nil)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin commit transaction")
		}
		if err := s.assignments.SaveBatch(ctx, tx, rows); err != nil {
			_ = tx.Rollback()
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
		}
		if err := tx.Commit(); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit assignments")
		}
	} else if err := s.assignments.SaveBatch(ctx, exec, rows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
	}

	s.store.Delete(proposalID)
	s.logger.Info("proposal committed", zap.String("proposal_id", proposalID), zap.String("run_id", runID))
	return nil
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]solveProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{ttl: ttl, items: make(map[string]solveProposal)}
}

func (s *proposalStore) Save(p solveProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ProposalID] = p
}

func (s *proposalStore) Get(id string) (solveProposal, bool) {
	s.mu.RLock()
	p, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return solveProposal{}, false
	}
	if time.Since(p.RequestedAt) > s.ttl {
		s.Delete(id)
		return solveProposal{}, false
	}
	return p, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
