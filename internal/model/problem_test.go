package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/model"
)

func sampleSlots() []model.Slot {
	return []model.Slot{
		{ID: 1, Day: model.Monday, Ordinal: 1, IsMorning: true, Start: "08:00", End: "09:00"},
		{ID: 2, Day: model.Monday, Ordinal: 2, IsMorning: true, Start: "09:00", End: "10:00"},
		{ID: 3, Day: model.Tuesday, Ordinal: 1, IsMorning: false, Start: "13:00", End: "14:00"},
	}
}

func TestNew_RejectsDuplicateCourseID(t *testing.T) {
	courses := []model.Course{
		{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory, Enrolled: 10, QualifiedInstructors: []int{1}},
		{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory, Enrolled: 10, QualifiedInstructors: []int{1}},
	}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{{ID: 1, Kind: model.Classroom, Capacity: 40}}

	_, err := model.New(courses, instructors, rooms, sampleSlots(), model.Config{})
	require.Error(t, err)
}

func TestNew_RejectsEmptyQualifiedInstructors(t *testing.T) {
	courses := []model.Course{{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory, Enrolled: 10}}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{{ID: 1, Kind: model.Classroom, Capacity: 40}}

	_, err := model.New(courses, instructors, rooms, sampleSlots(), model.Config{})
	require.Error(t, err)
}

func TestNew_RejectsUnknownInstructorReference(t *testing.T) {
	courses := []model.Course{{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory, Enrolled: 10, QualifiedInstructors: []int{99}}}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{{ID: 1, Kind: model.Classroom, Capacity: 40}}

	_, err := model.New(courses, instructors, rooms, sampleSlots(), model.Config{})
	require.Error(t, err)
}

func TestNew_RejectsOrdinalGap(t *testing.T) {
	courses := []model.Course{{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory, Enrolled: 10, QualifiedInstructors: []int{1}}}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{{ID: 1, Kind: model.Classroom, Capacity: 40}}
	slots := []model.Slot{{ID: 1, Day: model.Monday, Ordinal: 1, Start: "08:00", End: "09:00"}, {ID: 2, Day: model.Monday, Ordinal: 3, Start: "10:00", End: "11:00"}}

	_, err := model.New(courses, instructors, rooms, slots, model.Config{})
	require.Error(t, err)
}

func TestEligibility_PracticalRequiresLab(t *testing.T) {
	courses := []model.Course{
		{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Practical, Enrolled: 10, QualifiedInstructors: []int{1}},
	}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{
		{ID: 1, Kind: model.Classroom, Capacity: 40},
		{ID: 2, Kind: model.Lab, Capacity: 40},
	}

	pm, err := model.New(courses, instructors, rooms, sampleSlots(), model.Config{})
	require.NoError(t, err)

	labPos, _ := pm.RoomIndex(2)
	classroomPos, _ := pm.RoomIndex(1)
	eligible := pm.EligibleRooms(1)
	assert.True(t, eligible.Has(labPos))
	assert.False(t, eligible.Has(classroomPos))
}

func TestEligibility_TheoryExcludesLab(t *testing.T) {
	courses := []model.Course{
		{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory, Enrolled: 10, QualifiedInstructors: []int{1}},
	}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{
		{ID: 1, Kind: model.Classroom, Capacity: 40},
		{ID: 2, Kind: model.Lab, Capacity: 40},
	}

	pm, err := model.New(courses, instructors, rooms, sampleSlots(), model.Config{})
	require.NoError(t, err)

	labPos, _ := pm.RoomIndex(2)
	classroomPos, _ := pm.RoomIndex(1)
	eligible := pm.EligibleRooms(1)
	assert.False(t, eligible.Has(labPos))
	assert.True(t, eligible.Has(classroomPos))
}

func TestEligibility_CapacityFilter(t *testing.T) {
	courses := []model.Course{
		{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory, Enrolled: 50, QualifiedInstructors: []int{1}},
	}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{{ID: 1, Kind: model.Classroom, Capacity: 40}}

	pm, err := model.New(courses, instructors, rooms, sampleSlots(), model.Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, pm.EligibleRooms(1).Count())
}

func TestConsecutivePairs(t *testing.T) {
	courses := []model.Course{{ID: 1, SessionsPerWeek: 1, DurationSlots: 1, Kind: model.Theory, Enrolled: 10, QualifiedInstructors: []int{1}}}
	instructors := []model.Instructor{{ID: 1, MaxHoursPerWeek: 20}}
	rooms := []model.Room{{ID: 1, Kind: model.Classroom, Capacity: 40}}

	pm, err := model.New(courses, instructors, rooms, sampleSlots(), model.Config{})
	require.NoError(t, err)

	pairs := pm.ConsecutivePairs(model.Monday)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].A.Ordinal)
	assert.Equal(t, 2, pairs[0].B.Ordinal)

	assert.Empty(t, pm.ConsecutivePairs(model.Tuesday))
}

func TestBitset(t *testing.T) {
	b := model.NewBitset(130)
	b.Set(0)
	b.Set(64)
	b.Set(129)
	assert.True(t, b.Has(0))
	assert.True(t, b.Has(64))
	assert.True(t, b.Has(129))
	assert.False(t, b.Has(1))
	assert.Equal(t, 3, b.Count())
}
