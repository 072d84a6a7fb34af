package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/model"
)

func TestTimetableDatasetResolvesSlotFields(t *testing.T) {
	slots := []model.Slot{
		{ID: 1, Day: model.Day("MON"), Start: "08:00", End: "09:00"},
	}
	assignments := []model.Assignment{
		{CourseID: 10, SlotID: 1, InstructorID: 5, RoomID: 2},
	}

	dataset := TimetableDataset(slots, assignments)

	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "MON", dataset.Rows[0]["day"])
	assert.Equal(t, "08:00", dataset.Rows[0]["start"])
	assert.Equal(t, "09:00", dataset.Rows[0]["end"])
	assert.Equal(t, "10", dataset.Rows[0]["course_id"])
}

func TestTimetableDatasetToleratesUnknownSlot(t *testing.T) {
	assignments := []model.Assignment{
		{CourseID: 10, SlotID: 99, InstructorID: 5, RoomID: 2},
	}

	dataset := TimetableDataset(nil, assignments)

	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "", dataset.Rows[0]["day"])
}

func TestCSVExporterRendersHeaderAndRows(t *testing.T) {
	dataset := Dataset{
		Headers: []string{"course_id", "day"},
		Rows:    []map[string]string{{"course_id": "1", "day": "MON"}},
	}
	body, err := NewCSVExporter().Render(dataset)
	require.NoError(t, err)
	assert.Contains(t, string(body), "course_id,day")
	assert.Contains(t, string(body), "1,MON")
}

func TestCSVExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	require.Error(t, err)
}

func TestPDFExporterRendersNonEmptyDocument(t *testing.T) {
	dataset := Dataset{
		Headers: []string{"course_id", "day"},
		Rows:    []map[string]string{{"course_id": "1", "day": "MON"}},
	}
	body, err := NewPDFExporter().Render(dataset, "Timetable")
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
