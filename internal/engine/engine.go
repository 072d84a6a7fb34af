// Package engine is the facade: it picks a
// solver engine per caller request, runs it, and normalises the result.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ashgrove/schedcore/internal/cpengine"
	"github.com/ashgrove/schedcore/internal/evoengine"
	"github.com/ashgrove/schedcore/internal/model"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
)

// EngineChoice selects which solver Optimise runs.
type EngineChoice string

const (
	EngineCP   EngineChoice = "cp"
	EngineEvo  EngineChoice = "evo"
	EngineAuto EngineChoice = "auto"
)

// Options mirrors the configuration options that affect engine
// selection, left to the caller after intake has already produced a
// ProblemModel (ProblemModel.Config carries the solve-shape options;
// Options carries the per-call engine directives).
type Options struct {
	Engine            EngineChoice
	TimeBudgetSeconds float64
	Workers           int
	FallbackToEvo     bool
	Evo               evoengine.Options
}

// Engine is the solver-selection facade. A nil logger defaults to
// zap.NewNop(), matching this codebase's nil-defaulting service constructors.
type Engine struct {
	logger *zap.Logger
}

// New builds an Engine.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Optimise is the core's one library entry point:
//
//	optimise(config, courses, instructors, rooms, options) → Result
//
// Here config/courses/instructors/rooms have already been folded into pm
// by internal/intake; Optimise only adds the per-call engine directives.
func (e *Engine) Optimise(ctx context.Context, pm *model.ProblemModel, opts Options) (model.Result, error) {
	choice := opts.Engine
	if choice == "" {
		choice = EngineAuto
	}

	switch choice {
	case EngineCP:
		return e.runCP(ctx, pm, opts)
	case EngineEvo:
		if err := requireEvoEligible(pm); err != nil {
			return model.Result{}, err
		}
		return e.runEvo(pm, opts)
	case EngineAuto:
		result, err := e.runCP(ctx, pm, opts)
		if err != nil {
			return model.Result{}, err
		}
		if result.Status != model.StatusUnknown || !opts.FallbackToEvo {
			return result, nil
		}
		if requireEvoEligible(pm) != nil {
			// auto mode silently refuses the
			// evo fallback for genome-incompatible inputs; it surfaces the
			// CP engine's UNKNOWN rather than a wrongly-shaped genome.
			e.logger.Warn("cp returned UNKNOWN but model is not evo-eligible; skipping fallback")
			return result, nil
		}
		evoResult, err := e.runEvo(pm, opts)
		if err != nil {
			return model.Result{}, err
		}
		evoResult.FallbackStatus = result.Status
		return evoResult, nil
	default:
		return model.Result{}, appErrors.Wrap(
			fmt.Errorf("unknown engine choice %q", choice),
			appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status,
			"engine must be one of cp, evo, auto",
		)
	}
}

func (e *Engine) runCP(ctx context.Context, pm *model.ProblemModel, opts Options) (model.Result, error) {
	timeBudget := opts.TimeBudgetSeconds
	if timeBudget <= 0 {
		timeBudget = 300
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}

	encoded, err := cpengine.Encode(pm, e.logger)
	if err != nil {
		return model.Result{}, err
	}
	return cpengine.Solve(ctx, encoded, timeBudget, workers, e.logger)
}

func (e *Engine) runEvo(pm *model.ProblemModel, opts Options) (model.Result, error) {
	solver := evoengine.New(e.logger)
	return solver.Solve(pm, opts.Evo)
}

func requireEvoEligible(pm *model.ProblemModel) error {
	for _, c := range pm.Courses {
		if c.SessionsPerWeek != 1 {
			return appErrors.Wrap(
				fmt.Errorf("course %d has sessions_per_week=%d", c.ID, c.SessionsPerWeek),
				appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status,
				"evolutionary engine only accepts sessions_per_week=1 courses",
			)
		}
	}
	return nil
}
