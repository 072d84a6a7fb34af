package evoengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/evoengine"
	"github.com/ashgrove/schedcore/internal/model"
)

func trivialModel(t *testing.T) *model.ProblemModel {
	t.Helper()
	courses := []model.Course{
		{
			ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory,
			Enrolled: 10, QualifiedInstructors: []int{1},
			InstructorPreference: map[int]int{1: 5},
		},
	}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{{ID: 1, Kind: model.Classroom, Capacity: 40}}
	slots := []model.Slot{
		{ID: 1, Day: model.Monday, Ordinal: 1, IsMorning: true, Start: "08:00", End: "09:00"},
		{ID: 2, Day: model.Tuesday, Ordinal: 1, IsMorning: true, Start: "08:00", End: "09:00"},
		{ID: 3, Day: model.Wednesday, Ordinal: 1, IsMorning: true, Start: "08:00", End: "09:00"},
		{ID: 4, Day: model.Thursday, Ordinal: 1, IsMorning: true, Start: "08:00", End: "09:00"},
	}
	pm, err := model.New(courses, instructors, rooms, slots,
		model.Config{WeightPreferenceBase: model.DefaultWeightPreferenceBase})
	require.NoError(t, err)
	return pm
}

func TestSolve_E6_FeasibleWithPerfectPreference(t *testing.T) {
	pm := trivialModel(t)
	solver := evoengine.New(nil)

	result, err := solver.Solve(pm, evoengine.Options{Population: 50, Generations: 20, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFeasible, result.Status)
	require.NotNil(t, result.Objective)
	assert.Equal(t, float64(0), *result.Objective)
	require.Len(t, result.Assignment, 1)
	assert.Equal(t, 1, result.Assignment[0].CourseID)
}

func TestSolve_Deterministic(t *testing.T) {
	pm := trivialModel(t)

	first, err := evoengine.New(nil).Solve(pm, evoengine.Options{Population: 50, Generations: 20, Seed: 42})
	require.NoError(t, err)
	second, err := evoengine.New(nil).Solve(pm, evoengine.Options{Population: 50, Generations: 20, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, first.Assignment, second.Assignment)
	assert.Equal(t, *first.Objective, *second.Objective)
}

func TestSolve_RejectsMultiSessionCourses(t *testing.T) {
	courses := []model.Course{
		{ID: 1, SessionsPerWeek: 2, DurationSlots: 1, Kind: model.Theory, Enrolled: 10, QualifiedInstructors: []int{1}},
	}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{{ID: 1, Kind: model.Classroom, Capacity: 40}}
	slots := []model.Slot{
		{ID: 1, Day: model.Monday, Ordinal: 1, Start: "08:00", End: "09:00"},
		{ID: 2, Day: model.Monday, Ordinal: 2, Start: "09:00", End: "10:00"},
	}
	pm, err := model.New(courses, instructors, rooms, slots, model.Config{})
	require.NoError(t, err)

	_, err = evoengine.New(nil).Solve(pm, evoengine.Options{})
	require.Error(t, err)
}
