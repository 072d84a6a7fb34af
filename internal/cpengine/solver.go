package cpengine

import (
	"context"
	"sort"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"go.uber.org/zap"

	"github.com/ashgrove/schedcore/internal/model"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
)

// Solve runs the CP-SAT search over em with the given time budget and
// worker count. The READY→RUNNING→terminal state machine
// is internal; only the terminal status is observable.
func Solve(ctx context.Context, em *EncodedModel, timeBudgetSeconds float64, workers int, logger *zap.Logger) (model.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}

	proto, err := em.builder.Model()
	if err != nil {
		return model.Result{}, appErrors.Wrap(err, appErrors.ErrModelInvalid.Code, appErrors.ErrModelInvalid.Status, "failed to build CP-SAT model proto")
	}

	params := &sppb.SatParameters{
		MaxTimeInSeconds: &timeBudgetSeconds,
		NumSearchWorkers: int32Ptr(int32(workers)),
	}

	start := time.Now()
	logger.Info("cp solve starting", zap.Float64("time_budget_seconds", timeBudgetSeconds), zap.Int("workers", workers))

	respCh := make(chan solveOutcome, 1)
	go func() {
		resp, solveErr := cpmodel.SolveCpModelWithParameters(proto, params)
		respCh <- solveOutcome{resp: resp, err: solveErr}
	}()

	var outcome solveOutcome
	select {
	case outcome = <-respCh:
	case <-ctx.Done():
		// The solve call itself has no external cancel channel; we still
		// respect the caller's context by waiting for whatever incumbent
		// the solver produces once it returns.
		outcome = <-respCh
	}

	elapsed := time.Since(start).Seconds()

	if outcome.err != nil {
		return model.Result{}, appErrors.Wrap(outcome.err, appErrors.ErrModelInvalid.Code, appErrors.ErrModelInvalid.Status, "CP-SAT solve failed")
	}

	status := mapStatus(outcome.resp.GetStatus())
	logger.Info("cp solve finished", zap.String("status", string(status)), zap.Float64("elapsed_seconds", elapsed))

	result := model.Result{
		Status:           status,
		SolveTimeSeconds: elapsed,
		EngineUsed:       "cp",
		Statistics: model.Statistics{
			Variables: len(em.vars),
		},
	}

	switch status {
	case model.StatusOptimal, model.StatusFeasible:
		objective := outcome.resp.GetObjectiveValue()
		result.Objective = &objective
		result.Assignment = decodeAssignment(em, outcome.resp)
	case model.StatusInfeasible, model.StatusModelInvalid, model.StatusUnknown:
		result.Assignment = nil
	}

	return result, nil
}

type solveOutcome struct {
	resp *cmpb.CpSolverResponse
	err  error
}

func mapStatus(s cmpb.CpSolverStatus) model.Status {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return model.StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return model.StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return model.StatusInfeasible
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return model.StatusModelInvalid
	default:
		return model.StatusUnknown
	}
}

// decodeAssignment reads the support of x directly off the typed variable
// map built at encode time — never by parsing variable name strings.
func decodeAssignment(em *EncodedModel, resp *cmpb.CpSolverResponse) []model.Assignment {
	var out []model.Assignment
	for key, v := range em.vars {
		if cpmodel.SolutionBooleanValue(resp, v) {
			out = append(out, model.Assignment{
				CourseID:     key.Course,
				SlotID:       key.Slot,
				InstructorID: key.Instructor,
				RoomID:       key.Room,
			})
		}
	}
	// deterministic ordering by (course_id, slot_id).
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseID != out[j].CourseID {
			return out[i].CourseID < out[j].CourseID
		}
		return out[i].SlotID < out[j].SlotID
	})
	return out
}

func int32Ptr(v int32) *int32 { return &v }
