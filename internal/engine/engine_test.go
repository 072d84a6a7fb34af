package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/engine"
	"github.com/ashgrove/schedcore/internal/model"
)

func multiSessionModel(t *testing.T) *model.ProblemModel {
	t.Helper()
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
	return pm
}

func TestOptimise_RejectsExplicitEvoOnMultiSessionModel(t *testing.T) {
	pm := multiSessionModel(t)
	e := engine.New(nil)

	_, err := e.Optimise(context.Background(), pm, engine.Options{Engine: engine.EngineEvo})
	require.Error(t, err)
}

func TestOptimise_RejectsUnknownEngineChoice(t *testing.T) {
	pm := multiSessionModel(t)
	e := engine.New(nil)

	_, err := e.Optimise(context.Background(), pm, engine.Options{Engine: "bogus"})
	require.Error(t, err)
}
