package cpengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/cpengine"
	"github.com/ashgrove/schedcore/internal/model"
)

func TestEncode_OnlyMaterialisesEligibleVariables(t *testing.T) {
	courses := []model.Course{
		{
			ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Practical,
			Enrolled: 10, QualifiedInstructors: []int{1},
		},
	}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}, {ID: 2, MaxHoursPerWeek: 20}}
	rooms := []model.Room{
		{ID: 1, Kind: model.Classroom, Capacity: 40},
		{ID: 2, Kind: model.Lab, Capacity: 40},
	}
	slots := []model.Slot{
		{ID: 1, Day: model.Monday, Ordinal: 1, Start: "08:00", End: "09:00"},
		{ID: 2, Day: model.Monday, Ordinal: 2, Start: "09:00", End: "10:00"},
	}

	pm, err := model.New(courses, instructors, rooms, slots, model.Config{})
	require.NoError(t, err)

	encoded, err := cpengine.Encode(pm, nil)
	require.NoError(t, err)
	require.NotNil(t, encoded)

	// Only instructor 1 is qualified and only room 2 (LAB) is eligible for
	// a PRACTICAL course; 2 slots => 1*1*2 = 2 sparse variables.
	assert.Equal(t, 2, pm.VariableCount())
}
