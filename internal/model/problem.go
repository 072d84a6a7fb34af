package model

import (
	"fmt"
	"sort"

	appErrors "github.com/ashgrove/schedcore/pkg/errors"
)

// ProblemModel is the immutable, precomputed view of one solve's input.
// It is built once by New and never mutated afterward; solvers only read
// from it.
type ProblemModel struct {
	Courses     []Course
	Instructors []Instructor
	Rooms       []Room
	Slots       []Slot
	Config      Config

	courseIndex     map[int]int
	instructorIndex map[int]int
	roomIndex       map[int]int
	slotIndex       map[int]int

	eligibleRooms       map[int]Bitset // courseID -> bitset over room positions
	eligibleInstructors map[int]Bitset // courseID -> bitset over instructor positions
	consecutivePairs    map[Day][]SlotPair
	morningSlots        Bitset // bitset over slot positions
}

// New validates and builds a ProblemModel. Any invariant violation returns
// a *errors.Error wrapping ErrInvalidInput.
func New(courses []Course, instructors []Instructor, rooms []Room, slots []Slot, cfg Config) (*ProblemModel, error) {
	pm := &ProblemModel{
		Courses:     courses,
		Instructors: instructors,
		Rooms:       rooms,
		Slots:       slots,
		Config:      cfg,
	}

	if err := pm.indexEntities(); err != nil {
		return nil, err
	}
	if err := pm.validateReferences(); err != nil {
		return nil, err
	}
	if err := pm.validateSlotGrid(); err != nil {
		return nil, err
	}
	if err := pm.validateWorkload(); err != nil {
		return nil, err
	}
	pm.precompute()

	return pm, nil
}

func invalidInput(field, reason string) error {
	return appErrors.Wrap(fmt.Errorf("%s: %s", field, reason), appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, reason)
}

func (pm *ProblemModel) indexEntities() error {
	pm.courseIndex = make(map[int]int, len(pm.Courses))
	for i, c := range pm.Courses {
		if _, dup := pm.courseIndex[c.ID]; dup {
			return invalidInput("course.id", fmt.Sprintf("duplicate course id %d", c.ID))
		}
		pm.courseIndex[c.ID] = i
	}

	pm.instructorIndex = make(map[int]int, len(pm.Instructors))
	for i, f := range pm.Instructors {
		if _, dup := pm.instructorIndex[f.ID]; dup {
			return invalidInput("instructor.id", fmt.Sprintf("duplicate instructor id %d", f.ID))
		}
		pm.instructorIndex[f.ID] = i
	}

	pm.roomIndex = make(map[int]int, len(pm.Rooms))
	for i, r := range pm.Rooms {
		if _, dup := pm.roomIndex[r.ID]; dup {
			return invalidInput("room.id", fmt.Sprintf("duplicate room id %d", r.ID))
		}
		pm.roomIndex[r.ID] = i
	}

	pm.slotIndex = make(map[int]int, len(pm.Slots))
	for i, s := range pm.Slots {
		if _, dup := pm.slotIndex[s.ID]; dup {
			return invalidInput("slot.id", fmt.Sprintf("duplicate slot id %d", s.ID))
		}
		pm.slotIndex[s.ID] = i
	}

	return nil
}

func (pm *ProblemModel) validateReferences() error {
	for _, c := range pm.Courses {
		if len(c.QualifiedInstructors) == 0 {
			return invalidInput("course.qualified_instructors", fmt.Sprintf("course %d has no qualified instructors", c.ID))
		}
		for _, fid := range c.QualifiedInstructors {
			if _, ok := pm.instructorIndex[fid]; !ok {
				return invalidInput("course.qualified_instructors", fmt.Sprintf("course %d references unknown instructor %d", c.ID, fid))
			}
		}
		if c.SessionsPerWeek < 1 {
			return invalidInput("course.sessions_per_week", fmt.Sprintf("course %d must have sessions_per_week >= 1", c.ID))
		}
		if c.DurationSlots < 1 {
			return invalidInput("course.duration_slots", fmt.Sprintf("course %d must have duration_slots >= 1", c.ID))
		}
	}
	for _, f := range pm.Instructors {
		if f.MaxHoursPerWeek < 1 {
			return invalidInput("instructor.max_hours_per_week", fmt.Sprintf("instructor %d must have max_hours_per_week >= 1", f.ID))
		}
	}
	for _, r := range pm.Rooms {
		if r.Capacity < 1 {
			return invalidInput("room.capacity", fmt.Sprintf("room %d must have capacity >= 1", r.ID))
		}
	}
	return nil
}

// validateSlotGrid enforces within each day,
// ordinals form 1..k without gaps and slots never overlap.
func (pm *ProblemModel) validateSlotGrid() error {
	byDay := make(map[Day][]Slot)
	for _, s := range pm.Slots {
		byDay[s.Day] = append(byDay[s.Day], s)
	}
	for day, slots := range byDay {
		sort.Slice(slots, func(i, j int) bool { return slots[i].Ordinal < slots[j].Ordinal })
		for i, s := range slots {
			want := i + 1
			if s.Ordinal != want {
				return invalidInput("slot.ordinal", fmt.Sprintf("day %s has a gap in ordinals at position %d", day, want))
			}
			if i > 0 && slots[i-1].End > s.Start {
				return invalidInput("slot.start", fmt.Sprintf("day %s has overlapping slots at ordinal %d", day, s.Ordinal))
			}
		}
	}
	return nil
}

// validateWorkload enforces a course cannot demand
// more slots than any single instructor could possibly cover in a week.
func (pm *ProblemModel) validateWorkload() error {
	totalSlots := len(pm.Slots)
	for _, c := range pm.Courses {
		needed := c.SessionsPerWeek * c.DurationSlots
		if needed > totalSlots {
			return invalidInput("course.sessions_per_week", fmt.Sprintf("course %d needs %d slot-units but only %d slots exist", c.ID, needed, totalSlots))
		}
	}
	return nil
}

func (pm *ProblemModel) precompute() {
	pm.eligibleRooms = make(map[int]Bitset, len(pm.Courses))
	pm.eligibleInstructors = make(map[int]Bitset, len(pm.Courses))

	for _, c := range pm.Courses {
		rooms := NewBitset(len(pm.Rooms))
		for i, r := range pm.Rooms {
			if !roomEligible(c, r) {
				continue
			}
			rooms.Set(i)
		}
		pm.eligibleRooms[c.ID] = rooms

		instructors := NewBitset(len(pm.Instructors))
		for _, fid := range c.QualifiedInstructors {
			if pos, ok := pm.instructorIndex[fid]; ok {
				instructors.Set(pos)
			}
		}
		pm.eligibleInstructors[c.ID] = instructors
	}

	pm.morningSlots = NewBitset(len(pm.Slots))
	for i, s := range pm.Slots {
		if s.IsMorning {
			pm.morningSlots.Set(i)
		}
	}

	pm.consecutivePairs = make(map[Day][]SlotPair)
	byDay := make(map[Day][]Slot)
	for _, s := range pm.Slots {
		byDay[s.Day] = append(byDay[s.Day], s)
	}
	for day, slots := range byDay {
		sort.Slice(slots, func(i, j int) bool { return slots[i].Ordinal < slots[j].Ordinal })
		pairs := make([]SlotPair, 0, len(slots))
		for i := 0; i+1 < len(slots); i++ {
			if slots[i+1].Ordinal == slots[i].Ordinal+1 {
				pairs = append(pairs, SlotPair{A: slots[i], B: slots[i+1]})
			}
		}
		pm.consecutivePairs[day] = pairs
	}
}

// roomEligible implements H5/H6's static filter: PRACTICAL/HYBRID courses
// require a LAB room; THEORY may use any non-LAB teaching room; capacity
// must cover enrollment.
func roomEligible(c Course, r Room) bool {
	if r.Capacity < c.Enrolled {
		return false
	}
	switch c.Kind {
	case Practical, Hybrid:
		return r.Kind == Lab
	default:
		return r.Kind != Lab
	}
}

// CourseIndex returns the dense position of a course id in pm.Courses.
func (pm *ProblemModel) CourseIndex(id int) (int, bool) { i, ok := pm.courseIndex[id]; return i, ok }

// InstructorIndex returns the dense position of an instructor id.
func (pm *ProblemModel) InstructorIndex(id int) (int, bool) {
	i, ok := pm.instructorIndex[id]
	return i, ok
}

// RoomIndex returns the dense position of a room id.
func (pm *ProblemModel) RoomIndex(id int) (int, bool) { i, ok := pm.roomIndex[id]; return i, ok }

// SlotIndex returns the dense position of a slot id.
func (pm *ProblemModel) SlotIndex(id int) (int, bool) { i, ok := pm.slotIndex[id]; return i, ok }

// EligibleRooms returns the bitset (over room positions) of rooms a course
// may use.
func (pm *ProblemModel) EligibleRooms(courseID int) Bitset { return pm.eligibleRooms[courseID] }

// EligibleInstructors returns the bitset (over instructor positions) of
// instructors qualified to teach a course.
func (pm *ProblemModel) EligibleInstructors(courseID int) Bitset {
	return pm.eligibleInstructors[courseID]
}

// ConsecutivePairs returns the ordered same-day consecutive slot pairs.
func (pm *ProblemModel) ConsecutivePairs(day Day) []SlotPair { return pm.consecutivePairs[day] }

// MorningSlots returns the bitset (over slot positions) of morning slots.
func (pm *ProblemModel) MorningSlots() Bitset { return pm.morningSlots }

// VariableCount returns the number of sparse decision variables the CP
// encoder would materialise for this model: Σ_c |eligible_f| × |eligible_r| × |S|.
func (pm *ProblemModel) VariableCount() int {
	total := 0
	for _, c := range pm.Courses {
		total += pm.eligibleInstructors[c.ID].Count() * pm.eligibleRooms[c.ID].Count() * len(pm.Slots)
	}
	return total
}
