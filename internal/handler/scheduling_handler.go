package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashgrove/schedcore/internal/dto"
	"github.com/ashgrove/schedcore/internal/engine"
	"github.com/ashgrove/schedcore/internal/service"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
	"github.com/ashgrove/schedcore/pkg/response"
)

// SchedulingHandler wires the HTTP surface to the scheduling service.
type SchedulingHandler struct {
	scheduling *service.SchedulingService
	jobs       *service.JobRunnerService
}

// NewSchedulingHandler constructs a handler.
func NewSchedulingHandler(scheduling *service.SchedulingService, jobs *service.JobRunnerService) *SchedulingHandler {
	return &SchedulingHandler{scheduling: scheduling, jobs: jobs}
}

// optimiseRequestBody is the wire shape of POST /optimise and POST /jobs,
// bundling the intake payload with the per-call engine directives.
type optimiseRequestBody struct {
	dto.OptimiseRequest
	Options engineOptionsBody `json:"options"`
}

type engineOptionsBody struct {
	Engine            string  `json:"engine" validate:"omitempty,oneof=cp evo auto"`
	TimeBudgetSeconds float64 `json:"time_budget_seconds"`
	Workers           int     `json:"workers"`
	FallbackToEvo     bool    `json:"fallback_to_evo"`
}

func (b engineOptionsBody) toEngineOptions() engine.Options {
	return engine.Options{
		Engine:            engine.EngineChoice(b.Engine),
		TimeBudgetSeconds: b.TimeBudgetSeconds,
		Workers:           b.Workers,
		FallbackToEvo:     b.FallbackToEvo,
	}
}

// Optimise godoc
// @Summary Run a synchronous optimisation solve
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body optimiseRequestBody true "Solve request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /optimise [post]
func (h *SchedulingHandler) Optimise(c *gin.Context) {
	var body optimiseRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solve payload"))
		return
	}

	proposalID, result, err := h.scheduling.Optimise(c.Request.Context(), body.OptimiseRequest, body.Options.toEngineOptions())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"proposal_id": proposalID, "result": result}, nil)
}

// Commit godoc
// @Summary Persist a staged proposal as a run
// @Tags Scheduling
// @Produce json
// @Param proposal_id path string true "Proposal id"
// @Param run_id query string true "Run id to persist under"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /proposals/{proposal_id}/commit [post]
func (h *SchedulingHandler) Commit(c *gin.Context) {
	proposalID := c.Param("proposal_id")
	runID := c.Query("run_id")
	if runID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "run_id is required"))
		return
	}
	if err := h.scheduling.Commit(c.Request.Context(), proposalID, runID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SubmitJob godoc
// @Summary Submit an asynchronous optimisation solve
// @Tags Jobs
// @Accept json
// @Produce json
// @Param payload body optimiseRequestBody true "Solve request"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jobs [post]
func (h *SchedulingHandler) SubmitJob(c *gin.Context) {
	var body optimiseRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solve payload"))
		return
	}

	jobID, err := h.jobs.Submit(c.Request.Context(), body.OptimiseRequest, body.Options.toEngineOptions())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, gin.H{"job_id": jobID, "status": "DRAFT"}, nil)
}

// JobStatus godoc
// @Summary Fetch an asynchronous job's status
// @Tags Jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *SchedulingHandler) JobStatus(c *gin.Context) {
	jobID := c.Param("id")
	job, err := h.jobs.Status(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "job not found"))
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
