package slotgrid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/schedcore/internal/model"
	"github.com/ashgrove/schedcore/internal/slotgrid"
)

func TestBuild_MorningWindowSlotsAreMorningWithOrdinals(t *testing.T) {
	slots, err := slotgrid.Build(slotgrid.Window{
		Days:        []model.Day{model.Monday},
		DayStart:    "08:00",
		DayEnd:      "12:00",
		SlotMinutes: 60,
	})
	require.NoError(t, err)
	require.Len(t, slots, 4)
	for i, s := range slots {
		assert.Equal(t, i+1, s.Ordinal)
		assert.True(t, s.IsMorning)
	}
}

func TestBuild_BreakAdvancesCursor(t *testing.T) {
	slots, err := slotgrid.Build(slotgrid.Window{
		Days:         []model.Day{model.Monday},
		DayStart:     "08:00",
		DayEnd:       "11:00",
		SlotMinutes:  60,
		BreakMinutes: 30,
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "08:00", slots[0].Start)
	assert.Equal(t, "09:30", slots[1].Start)
}

func TestBuild_SlotStartingInLunchIsSuppressed(t *testing.T) {
	slots, err := slotgrid.Build(slotgrid.Window{
		Days:             []model.Day{model.Monday},
		DayStart:         "11:30",
		DayEnd:           "14:00",
		SlotMinutes:      60,
		LunchWindowStart: "12:00",
		LunchWindowEnd:   "13:00",
	})
	require.NoError(t, err)
	for _, s := range slots {
		assert.NotEqual(t, "12:00", s.Start)
	}
}

func TestBuild_SlotEndingAtLunchStartIsEmitted(t *testing.T) {
	slots, err := slotgrid.Build(slotgrid.Window{
		Days:             []model.Day{model.Monday},
		DayStart:         "11:00",
		DayEnd:           "14:00",
		SlotMinutes:      60,
		LunchWindowStart: "12:00",
		LunchWindowEnd:   "13:00",
	})
	require.NoError(t, err)
	var found bool
	for _, s := range slots {
		if s.Start == "11:00" && s.End == "12:00" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuild_EmptyDayWhenWindowTooShort(t *testing.T) {
	slots, err := slotgrid.Build(slotgrid.Window{
		Days:        []model.Day{model.Monday},
		DayStart:    "08:00",
		DayEnd:      "08:30",
		SlotMinutes: 60,
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBuild_RejectsInvalidWindow(t *testing.T) {
	_, err := slotgrid.Build(slotgrid.Window{
		Days:        []model.Day{model.Monday},
		DayStart:    "10:00",
		DayEnd:      "09:00",
		SlotMinutes: 60,
	})
	require.Error(t, err)
}

func TestBuild_UniqueIncreasingGlobalIDs(t *testing.T) {
	slots, err := slotgrid.Build(slotgrid.Window{
		Days:        []model.Day{model.Monday, model.Tuesday},
		DayStart:    "08:00",
		DayEnd:      "10:00",
		SlotMinutes: 60,
	})
	require.NoError(t, err)
	seen := make(map[int]bool)
	for i, s := range slots {
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
		if i > 0 {
			assert.Greater(t, s.ID, slots[i-1].ID)
		}
	}
}
