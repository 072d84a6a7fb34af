// Package cpengine builds and solves the exact constraint-programming
// formulation against Google OR-Tools CP-SAT.
package cpengine

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"go.uber.org/zap"

	"github.com/ashgrove/schedcore/internal/model"
)

// varKey identifies one sparse decision variable x[c,s,f,r].
type varKey struct {
	Course     int
	Slot       int
	Instructor int
	Room       int
}

// EncodedModel is a built CP-SAT builder plus the bookkeeping needed to
// decode a solver response back into an Assignment.
type EncodedModel struct {
	builder *cpmodel.Builder
	vars    map[varKey]cpmodel.BoolVar
	pm      *model.ProblemModel
}

// Encode builds the sparse decision variables and the hard/soft
// constraints of the model.
func Encode(pm *model.ProblemModel, logger *zap.Logger) (*EncodedModel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := cpmodel.NewCpModelBuilder()
	vars := make(map[varKey]cpmodel.BoolVar)

	// Decision variables: one per eligible (course, slot, instructor, room).
	for _, c := range pm.Courses {
		eligibleF := eligibleInstructorIDs(pm, c.ID)
		eligibleR := eligibleRoomIDs(pm, c.ID)
		for _, s := range pm.Slots {
			for _, f := range eligibleF {
				for _, r := range eligibleR {
					vars[varKey{c.ID, s.ID, f, r}] = b.NewBoolVar()
				}
			}
		}
	}

	em := &EncodedModel{builder: b, vars: vars, pm: pm}

	em.addHardConstraints()
	em.addSoftObjective()

	logger.Debug("cp model encoded",
		zap.Int("variables", len(vars)),
		zap.Int("courses", len(pm.Courses)),
	)

	return em, nil
}

func eligibleInstructorIDs(pm *model.ProblemModel, courseID int) []int {
	bits := pm.EligibleInstructors(courseID)
	var ids []int
	for _, f := range pm.Instructors {
		pos, _ := pm.InstructorIndex(f.ID)
		if bits.Has(pos) {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func eligibleRoomIDs(pm *model.ProblemModel, courseID int) []int {
	bits := pm.EligibleRooms(courseID)
	var ids []int
	for _, r := range pm.Rooms {
		pos, _ := pm.RoomIndex(r.ID)
		if bits.Has(pos) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// courseByID, instructorByID, roomByID are small linear-scan lookups; the
// entity lists are small enough per solve that an index map would be an
// unnecessary second data structure alongside internal/model's own.
func courseByID(pm *model.ProblemModel, id int) model.Course {
	for _, c := range pm.Courses {
		if c.ID == id {
			return c
		}
	}
	return model.Course{}
}

func (em *EncodedModel) addHardConstraints() {
	pm := em.pm

	// H1: each course scheduled exactly sessions_per_week times.
	for _, c := range pm.Courses {
		expr := cpmodel.NewLinearExpr()
		for key, v := range em.vars {
			if key.Course == c.ID {
				expr.AddTerm(v, 1)
			}
		}
		em.builder.AddEquality(expr, cpmodel.NewConstant(int64(c.SessionsPerWeek)))
	}

	// H2: each (slot, instructor) hosts at most one course.
	bySlotInstructor := make(map[[2]int][]cpmodel.BoolVar)
	for key, v := range em.vars {
		k := [2]int{key.Slot, key.Instructor}
		bySlotInstructor[k] = append(bySlotInstructor[k], v)
	}
	for _, vs := range bySlotInstructor {
		expr := cpmodel.NewLinearExpr()
		for _, v := range vs {
			expr.AddTerm(v, 1)
		}
		em.builder.AddLessOrEqual(expr, cpmodel.NewConstant(1))
	}

	// H3: each (slot, room) hosts at most one course.
	bySlotRoom := make(map[[2]int][]cpmodel.BoolVar)
	for key, v := range em.vars {
		k := [2]int{key.Slot, key.Room}
		bySlotRoom[k] = append(bySlotRoom[k], v)
	}
	for _, vs := range bySlotRoom {
		expr := cpmodel.NewLinearExpr()
		for _, v := range vs {
			expr.AddTerm(v, 1)
		}
		em.builder.AddLessOrEqual(expr, cpmodel.NewConstant(1))
	}

	// H4, H5, H6 are enforced structurally: variables for disqualified
	// instructors, undersized rooms, and non-LAB rooms for PRACTICAL/HYBRID
	// courses are simply never created, keeping the encoding sparse.

	// H7: instructor weekly workload cap.
	byInstructor := make(map[int][]varKey)
	for key := range em.vars {
		byInstructor[key.Instructor] = append(byInstructor[key.Instructor], key)
	}
	for _, f := range pm.Instructors {
		keys := byInstructor[f.ID]
		if len(keys) == 0 {
			continue
		}
		expr := cpmodel.NewLinearExpr()
		for _, key := range keys {
			c := courseByID(pm, key.Course)
			expr.AddTerm(em.vars[key], int64(c.DurationSlots))
		}
		em.builder.AddLessOrEqual(expr, cpmodel.NewConstant(int64(f.MaxHoursPerWeek)))
	}
}

// reifyAny creates a BoolVar equal to 1 iff at least one of vars is 1.
func (em *EncodedModel) reifyAny(vars []cpmodel.BoolVar) cpmodel.BoolVar {
	z := em.builder.NewBoolVar()
	if len(vars) == 0 {
		em.builder.AddEquality(cpmodel.NewLinearExpr().AddTerm(z, 1), cpmodel.NewConstant(0))
		return z
	}
	sum := cpmodel.NewLinearExpr()
	for _, v := range vars {
		sum.AddTerm(v, 1)
	}
	em.builder.AddGreaterOrEqual(sum, cpmodel.NewConstant(1)).OnlyEnforceIf(z)
	em.builder.AddEquality(sum, cpmodel.NewConstant(0)).OnlyEnforceIf(z.Not())
	return z
}

// reifyAnd creates a BoolVar equal to 1 iff both a and b are 1.
func (em *EncodedModel) reifyAnd(a, b cpmodel.BoolVar) cpmodel.BoolVar {
	z := em.builder.NewBoolVar()
	em.builder.AddLessOrEqual(cpmodel.NewLinearExpr().AddTerm(z, 1), cpmodel.NewLinearExpr().AddTerm(a, 1))
	em.builder.AddLessOrEqual(cpmodel.NewLinearExpr().AddTerm(z, 1), cpmodel.NewLinearExpr().AddTerm(b, 1))
	sum := cpmodel.NewLinearExpr().AddTerm(a, 1)
	sum.AddTerm(b, 1)
	sum.AddTerm(z, -1)
	em.builder.AddLessOrEqual(sum, cpmodel.NewConstant(1))
	return z
}

func (em *EncodedModel) addSoftObjective() {
	pm := em.pm
	objective := cpmodel.NewLinearExpr()

	// S1: THEORY course in a non-morning slot.
	if pm.Config.PreferMorning {
		for key, v := range em.vars {
			c := courseByID(pm, key.Course)
			if c.Kind != model.Theory {
				continue
			}
			pos, _ := pm.SlotIndex(key.Slot)
			if pm.MorningSlots().Has(pos) {
				continue
			}
			objective.AddTerm(v, int64(pm.Config.WeightPreferMorning))
		}
	}

	// S2 (Open Question #3 resolution): one reified penalty per
	// (course, instructor) pair, not per (slot, room) occurrence.
	byCourseInstructor := make(map[[2]int][]cpmodel.BoolVar)
	for key, v := range em.vars {
		k := [2]int{key.Course, key.Instructor}
		byCourseInstructor[k] = append(byCourseInstructor[k], v)
	}
	for _, c := range pm.Courses {
		for fID, pref := range c.InstructorPreference {
			vs, ok := byCourseInstructor[[2]int{c.ID, fID}]
			if !ok {
				continue
			}
			weight := (5 - pref) * pm.Config.WeightPreferenceBase
			if weight <= 0 {
				continue
			}
			z := em.reifyAny(vs)
			objective.AddTerm(z, int64(weight))
		}
	}

	// S3: two practicals for the same (course, instructor) in consecutive
	// slots on the same day.
	if pm.Config.AvoidBackToBackPracticals {
		for _, c := range pm.Courses {
			if c.Kind != model.Practical && c.Kind != model.Hybrid {
				continue
			}
			for _, f := range eligibleInstructorIDs(pm, c.ID) {
				for _, day := range allDays(pm) {
					for _, pair := range pm.ConsecutivePairs(day) {
						occA := em.occupancy(c.ID, pair.A.ID, f)
						occB := em.occupancy(c.ID, pair.B.ID, f)
						if occA == nil || occB == nil {
							continue
						}
						v := em.reifyAnd(*occA, *occB)
						objective.AddTerm(v, int64(pm.Config.WeightBackToBackPracticals))
					}
				}
			}
		}
	}

	// S4: day session count outside [min_per_day, max_per_day].
	if pm.Config.MaxPerDay > 0 || pm.Config.MinPerDay > 0 {
		for _, day := range allDays(pm) {
			var dayVars []cpmodel.BoolVar
			for key, v := range em.vars {
				pos, _ := pm.SlotIndex(key.Slot)
				if pm.Slots[pos].Day == day {
					dayVars = append(dayVars, v)
				}
			}
			if len(dayVars) == 0 {
				continue
			}
			sum := cpmodel.NewLinearExpr()
			for _, v := range dayVars {
				sum.AddTerm(v, 1)
			}
			if pm.Config.MaxPerDay > 0 {
				// excess >= sum - max_per_day, excess >= 0.
				excess := em.builder.NewIntVarFromDomain(cpmodel.NewDomain(0, int64(len(dayVars))))
				lhs := cpmodel.NewLinearExpr().AddTerm(excess, 1)
				for _, v := range dayVars {
					lhs.AddTerm(v, -1)
				}
				em.builder.AddGreaterOrEqual(lhs, cpmodel.NewConstant(-int64(pm.Config.MaxPerDay)))
				objective.AddTerm(excess, int64(pm.Config.WeightDayCountExcess))
			}
			if pm.Config.MinPerDay > 0 {
				// deficit >= min_per_day - sum, deficit >= 0.
				deficit := em.builder.NewIntVarFromDomain(cpmodel.NewDomain(0, int64(len(dayVars))))
				lhs := cpmodel.NewLinearExpr().AddTerm(deficit, 1)
				for _, v := range dayVars {
					lhs.AddTerm(v, 1)
				}
				em.builder.AddGreaterOrEqual(lhs, cpmodel.NewConstant(int64(pm.Config.MinPerDay)))
				objective.AddTerm(deficit, int64(pm.Config.WeightDayCountExcess))
			}
		}
	}

	em.builder.Minimize(objective)
}

// occupancy returns a reified BoolVar equal to "course c is taught by
// instructor f in slot s" (the sum over eligible rooms of x[c,s,f,r],
// which H2 guarantees is 0 or 1).
func (em *EncodedModel) occupancy(courseID, slotID, instructorID int) *cpmodel.BoolVar {
	var vs []cpmodel.BoolVar
	found := false
	for key, v := range em.vars {
		if key.Course == courseID && key.Slot == slotID && key.Instructor == instructorID {
			vs = append(vs, v)
			found = true
		}
	}
	if !found {
		return nil
	}
	z := em.reifyAny(vs)
	return &z
}

func allDays(pm *model.ProblemModel) []model.Day {
	seen := make(map[model.Day]bool)
	var days []model.Day
	for _, s := range pm.Slots {
		if !seen[s.Day] {
			seen[s.Day] = true
			days = append(days, s.Day)
		}
	}
	return days
}

