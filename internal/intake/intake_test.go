package intake_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/dto"
	"github.com/ashgrove/schedcore/internal/intake"
)

func baseRequest() dto.OptimiseRequest {
	return dto.OptimiseRequest{
		Config: dto.ConfigInput{
			SlotMinutes: 60,
			DayWindow:   [2]string{"08:00", "12:00"},
			Days:        []string{"MON", "TUE", "WED", "THU"},
		},
		Courses: []dto.CourseInput{
			{
				ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: "THEORY",
				Enrolled: 10, QualifiedInstructors: []int{1},
				InstructorPreference: map[int]int{1: 5},
				TotalHours:            1,
			},
		},
		Instructors: []dto.InstructorInput{{ID: 1, MaxHoursPerWeek: 20}},
		Rooms:       []dto.RoomInput{{ID: 1, Kind: "CLASSROOM", Capacity: 40}},
	}
}

func TestTransform_BuildsProblemModel(t *testing.T) {
	in := intake.New(nil)
	pm, err := in.Transform(baseRequest())
	require.NoError(t, err)
	assert.Len(t, pm.Courses, 1)
	assert.NotEmpty(t, pm.Slots)
}

func TestTransform_RejectsFractionalSessions(t *testing.T) {
	req := baseRequest()
	req.Courses[0].TotalHours = 1.5 // not a multiple of a 60-minute slot

	in := intake.New(nil)
	_, err := in.Transform(req)
	require.Error(t, err)
}

func TestTransform_RejectsSessionCountMismatch(t *testing.T) {
	req := baseRequest()
	req.Courses[0].SessionsPerWeek = 2 // total_hours still implies 1 session

	in := intake.New(nil)
	_, err := in.Transform(req)
	require.Error(t, err)
}

func TestTransform_RejectsOverVariableCeiling(t *testing.T) {
	req := baseRequest()
	req.Config.VariableCeiling = 1

	in := intake.New(nil)
	_, err := in.Transform(req)
	require.Error(t, err)
}

func TestTransform_DefaultsSoftConstraintWeights(t *testing.T) {
	in := intake.New(nil)
	pm, err := in.Transform(baseRequest())
	require.NoError(t, err)
	assert.Equal(t, 10, pm.Config.WeightPreferMorning)
	assert.Equal(t, 20, pm.Config.WeightBackToBackPracticals)
	assert.Equal(t, 50, pm.Config.WeightDayCountExcess)
}
