package export

import (
	"fmt"

	"github.com/ashgrove/schedcore/internal/model"
)

// TimetableDataset flattens a solved Assignment list into the generic
// Dataset shape the CSV/PDF exporters already render, one row per
// (course, slot) pairing with its resolved instructor and room.
func TimetableDataset(slots []model.Slot, assignments []model.Assignment) Dataset {
	slotByID := make(map[int]model.Slot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}

	headers := []string{"course_id", "day", "start", "end", "instructor_id", "room_id"}
	rows := make([]map[string]string, 0, len(assignments))
	for _, a := range assignments {
		slot := slotByID[a.SlotID]
		rows = append(rows, map[string]string{
			"course_id":     fmt.Sprintf("%d", a.CourseID),
			"day":           string(slot.Day),
			"start":         slot.Start,
			"end":           slot.End,
			"instructor_id": fmt.Sprintf("%d", a.InstructorID),
			"room_id":       fmt.Sprintf("%d", a.RoomID),
		})
	}
	return Dataset{Headers: headers, Rows: rows}
}
