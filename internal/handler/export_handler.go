package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashgrove/schedcore/internal/model"
	"github.com/ashgrove/schedcore/internal/repository"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
	"github.com/ashgrove/schedcore/pkg/export"
	"github.com/ashgrove/schedcore/pkg/response"
)

// ExportHandler renders a committed run's assignments as CSV or PDF.
type ExportHandler struct {
	assignments *repository.AssignmentRepository
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(assignments *repository.AssignmentRepository) *ExportHandler {
	return &ExportHandler{
		assignments: assignments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
	}
}

// CSV godoc
// @Summary Export a run's assignments as CSV
// @Tags Export
// @Produce text/csv
// @Param run_id path string true "Run id"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /runs/{run_id}/export.csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	dataset, err := h.runDataset(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	body, err := h.csv.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}
	c.Data(http.StatusOK, "text/csv", body)
}

// PDF godoc
// @Summary Export a run's assignments as a printable timetable
// @Tags Export
// @Produce application/pdf
// @Param run_id path string true "Run id"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /runs/{run_id}/export.pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	dataset, err := h.runDataset(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	body, err := h.pdf.Render(dataset, fmt.Sprintf("Timetable %s", c.Param("run_id")))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
		return
	}
	c.Data(http.StatusOK, "application/pdf", body)
}

func (h *ExportHandler) runDataset(c *gin.Context) (export.Dataset, error) {
	runID := c.Param("run_id")
	rows, err := h.assignments.ListByRun(c.Request.Context(), runID)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	if len(rows) == 0 {
		return export.Dataset{}, appErrors.Clone(appErrors.ErrNotFound, "run not found or has no assignments")
	}

	assignments := make([]model.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, model.Assignment{
			CourseID:     r.CourseID,
			SlotID:       r.SlotID,
			InstructorID: r.InstructorID,
			RoomID:       r.RoomID,
		})
	}
	return export.TimetableDataset(nil, assignments), nil
}
