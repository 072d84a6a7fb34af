// Package slotgrid derives a weekly slot grid from a daily time window,
// slot length, break length, and a lunch window.
package slotgrid

import (
	"fmt"
	"time"

	"github.com/ashgrove/schedcore/internal/model"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
)

// Window describes the per-day cursor walk parameters.
type Window struct {
	Days             []model.Day
	DayStart         string // "HH:MM"
	DayEnd           string // "HH:MM"
	SlotMinutes      int
	BreakMinutes     int
	LunchWindowStart string
	LunchWindowEnd   string
}

// DefaultDays is the default MON..SAT working week.
var DefaultDays = []model.Day{
	model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday, model.Saturday,
}

const clockLayout = "15:04"

// Build walks each day's cursor from DayStart to DayEnd, emitting a slot
// every SlotMinutes unless it would intersect the lunch window, advancing
// the cursor by SlotMinutes+BreakMinutes after an emitted slot and by
// SlotMinutes through a lunch skip.
func Build(w Window) ([]model.Slot, error) {
	if w.SlotMinutes <= 0 {
		return nil, invalidInput("slot_minutes", "must be positive")
	}
	dayStart, err := time.Parse(clockLayout, w.DayStart)
	if err != nil {
		return nil, invalidInput("day_window.start", "not a valid HH:MM time")
	}
	dayEnd, err := time.Parse(clockLayout, w.DayEnd)
	if err != nil {
		return nil, invalidInput("day_window.end", "not a valid HH:MM time")
	}
	if !dayEnd.After(dayStart) {
		return nil, invalidInput("day_window", "end must be after start")
	}

	var lunchStart, lunchEnd time.Time
	hasLunch := w.LunchWindowStart != "" && w.LunchWindowEnd != ""
	if hasLunch {
		lunchStart, err = time.Parse(clockLayout, w.LunchWindowStart)
		if err != nil {
			return nil, invalidInput("lunch_window.start", "not a valid HH:MM time")
		}
		lunchEnd, err = time.Parse(clockLayout, w.LunchWindowEnd)
		if err != nil {
			return nil, invalidInput("lunch_window.end", "not a valid HH:MM time")
		}
	}

	days := w.Days
	if len(days) == 0 {
		days = DefaultDays
	}

	slotLen := time.Duration(w.SlotMinutes) * time.Minute
	step := slotLen + time.Duration(w.BreakMinutes)*time.Minute

	var slots []model.Slot
	nextID := 1

	for _, day := range days {
		ordinal := 1
		cursor := dayStart
		for {
			slotEnd := cursor.Add(slotLen)
			if slotEnd.After(dayEnd) {
				break
			}
			if hasLunch && intersectsLunch(cursor, slotEnd, lunchStart, lunchEnd) {
				cursor = cursor.Add(slotLen)
				continue
			}
			slots = append(slots, model.Slot{
				ID:        nextID,
				Day:       day,
				Ordinal:   ordinal,
				IsMorning: cursor.Hour() < 12,
				Start:     cursor.Format(clockLayout),
				End:       slotEnd.Format(clockLayout),
			})
			nextID++
			ordinal++
			cursor = cursor.Add(step)
		}
	}

	return slots, nil
}

// intersectsLunch suppresses a slot that *starts* inside the lunch window;
// a slot that *ends* exactly at the lunch start is emitted.
func intersectsLunch(start, end, lunchStart, lunchEnd time.Time) bool {
	if !start.Before(lunchEnd) {
		return false
	}
	if !end.After(lunchStart) {
		return false
	}
	return start.Before(lunchEnd) && end.After(lunchStart)
}

func invalidInput(field, reason string) error {
	return appErrors.Wrap(fmt.Errorf("%s: %s", field, reason), appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, reason)
}
