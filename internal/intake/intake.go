// Package intake is the pure transform from external record shapes (dto)
// to an internal/model.ProblemModel.
package intake

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ashgrove/schedcore/internal/dto"
	"github.com/ashgrove/schedcore/internal/model"
	"github.com/ashgrove/schedcore/internal/slotgrid"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
)

// Intake transforms OptimiseRequest values into ProblemModel values. It
// holds no state between calls; New constructs one with sensible defaults,
// mirroring this codebase's nil-defaulting service constructors.
type Intake struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// New builds an Intake. A nil logger defaults to zap.NewNop().
func New(logger *zap.Logger) *Intake {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Intake{validate: validator.New(), logger: logger}
}

// Transform validates req and builds a ProblemModel, or returns a typed
// InvalidInput error.
func (in *Intake) Transform(req dto.OptimiseRequest) (*model.ProblemModel, error) {
	if err := in.validate.Struct(req); err != nil {
		in.logger.Warn("intake rejected request", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "request failed validation")
	}

	cfg, days, err := buildConfig(req.Config)
	if err != nil {
		return nil, err
	}

	slots, err := slotgrid.Build(slotgrid.Window{
		Days:             days,
		DayStart:         req.Config.DayWindow[0],
		DayEnd:           req.Config.DayWindow[1],
		SlotMinutes:      req.Config.SlotMinutes,
		BreakMinutes:     req.Config.BreakMinutes,
		LunchWindowStart: lunchBound(req.Config.LunchWindow, 0),
		LunchWindowEnd:   lunchBound(req.Config.LunchWindow, 1),
	})
	if err != nil {
		return nil, err
	}

	instructors := make([]model.Instructor, 0, len(req.Instructors))
	for _, f := range req.Instructors {
		instructors = append(instructors, model.Instructor{ID: f.ID, MaxHoursPerWeek: f.MaxHoursPerWeek})
	}

	rooms := make([]model.Room, 0, len(req.Rooms))
	for _, r := range req.Rooms {
		rooms = append(rooms, model.Room{ID: r.ID, Kind: model.RoomKind(r.Kind), Capacity: r.Capacity})
	}

	courses := make([]model.Course, 0, len(req.Courses))
	for _, c := range req.Courses {
		if err := checkSessionConsistency(c, req.Config.SlotMinutes); err != nil {
			return nil, err
		}
		courses = append(courses, model.Course{
			ID:                   c.ID,
			SessionsPerWeek:      c.SessionsPerWeek,
			DurationSlots:        c.DurationSlots,
			Kind:                 model.CourseKind(c.Kind),
			Enrolled:             c.Enrolled,
			QualifiedInstructors: append([]int(nil), c.QualifiedInstructors...),
			InstructorPreference: copyPreferences(c.InstructorPreference),
		})
	}

	pm, err := model.New(courses, instructors, rooms, slots, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.VariableCeiling > 0 && pm.VariableCount() > cfg.VariableCeiling {
		return nil, invalidInput("variable_ceiling", fmt.Sprintf("model has %d sparse variables, exceeding the ceiling of %d", pm.VariableCount(), cfg.VariableCeiling))
	}

	in.logger.Debug("intake built problem model",
		zap.Int("courses", len(courses)),
		zap.Int("instructors", len(instructors)),
		zap.Int("rooms", len(rooms)),
		zap.Int("slots", len(slots)),
		zap.Int("variables", pm.VariableCount()),
	)

	return pm, nil
}

// checkSessionConsistency resolves reject
// courses whose total_hours is not an exact multiple of slot_minutes,
// instead of silently truncating as the source did.
func checkSessionConsistency(c dto.CourseInput, slotMinutes int) error {
	if slotMinutes <= 0 {
		return nil // slot grid validation will already have failed
	}
	totalMinutes := c.TotalHours * 60
	slotsNeeded := totalMinutes / float64(slotMinutes)
	rounded := int(slotsNeeded + 0.5)
	if float64(rounded) != slotsNeeded || rounded == 0 {
		return invalidInput("sessions_per_week", fmt.Sprintf("course %d: total_hours %.2f is not an exact multiple of slot_minutes %d", c.ID, c.TotalHours, slotMinutes))
	}
	if rounded != c.SessionsPerWeek*c.DurationSlots {
		return invalidInput("sessions_per_week", fmt.Sprintf("course %d: sessions_per_week*duration_slots (%d) does not match total_hours-derived slot count (%d)", c.ID, c.SessionsPerWeek*c.DurationSlots, rounded))
	}
	return nil
}

func copyPreferences(src map[int]int) map[int]int {
	if src == nil {
		return nil
	}
	dst := make(map[int]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func lunchBound(window [2]string, i int) string {
	if window[0] == "" && window[1] == "" {
		return ""
	}
	return window[i]
}

func buildConfig(c dto.ConfigInput) (model.Config, []model.Day, error) {
	weightMorning := c.Weights.PreferMorning
	if weightMorning == 0 {
		weightMorning = model.DefaultWeightPreferMorning
	}
	weightBackToBack := c.Weights.BackToBackPracticals
	if weightBackToBack == 0 {
		weightBackToBack = model.DefaultWeightBackToBackPracticals
	}
	weightDayExcess := c.Weights.DayCountExcess
	if weightDayExcess == 0 {
		weightDayExcess = model.DefaultWeightDayCountExcess
	}

	cfg := model.Config{
		PreferMorning:              c.PreferMorning,
		AvoidBackToBackPracticals:  c.AvoidBackToBackPracticals,
		MaxPerDay:                  c.MaxPerDay,
		MinPerDay:                  c.MinPerDay,
		SlotMinutes:                c.SlotMinutes,
		BreakMinutes:               c.BreakMinutes,
		LunchWindowStart:           lunchBound(c.LunchWindow, 0),
		LunchWindowEnd:             lunchBound(c.LunchWindow, 1),
		DayWindowStart:             c.DayWindow[0],
		DayWindowEnd:               c.DayWindow[1],
		VariableCeiling:            c.VariableCeiling,
		WeightPreferMorning:        weightMorning,
		WeightPreferenceBase:       model.DefaultWeightPreferenceBase,
		WeightBackToBackPracticals: weightBackToBack,
		WeightDayCountExcess:       weightDayExcess,
	}

	var days []model.Day
	for _, d := range c.Days {
		days = append(days, model.Day(d))
	}

	return cfg, days, nil
}

func invalidInput(field, reason string) error {
	return appErrors.Wrap(fmt.Errorf("%s: %s", field, reason), appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, reason)
}
