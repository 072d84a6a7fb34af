// Package evoengine is the evolutionary fallback solver: a fixed-length
// genome of one (slot, instructor, room) triple per course, evolved by
// tournament selection, two-point crossover, and gene-typed mutation.
//
// Restricted to inputs where every course has SessionsPerWeek == 1;
// see DESIGN.md for the rationale.
package evoengine

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ashgrove/schedcore/internal/model"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
)

// Default hyperparameters.
const (
	DefaultPopulation    = 300
	DefaultGenerations   = 100
	DefaultCrossoverProb = 0.7
	DefaultMutationProb  = 0.2
	tournamentSize       = 3
)

// Hard-violation penalties.
const (
	penaltyInstructorDoubleBooked = 1000
	penaltyRoomDoubleBooked       = 1000
	penaltyInstructorUnqualified  = 800
	penaltyOverCapacityPerStudent = 500
	penaltyWrongRoomKind          = 600
	penaltyOverHoursPerHour       = 300
)

// Options configures one Solve call.
type Options struct {
	Population    int
	Generations   int
	CrossoverProb float64
	MutationProb  float64
	Seed          int64
}

// Solver is the evolutionary engine. It holds no state between Solve
// calls; all per-run state (PRNG, population) is local to Solve.
type Solver struct {
	logger *zap.Logger
}

// New builds a Solver. A nil logger defaults to zap.NewNop().
func New(logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{logger: logger}
}

// genome is a flat vector of length 3*|courses|; for course index i the
// triple at (3i, 3i+1, 3i+2) is (slot_idx, instructor_idx, room_idx).
type genome []int

type individual struct {
	genes   genome
	fitness float64
}

// evalContext bundles the read-only per-solve lookup tables derived from the
// problem model, shared by every individual's fitness evaluation.
type evalContext struct {
	pm          *model.ProblemModel
	courses     []model.Course
	slots       []model.Slot
	instructors []model.Instructor
	rooms       []model.Room
}

// Solve runs the genetic algorithm over pm and returns a normalised Result.
func (s *Solver) Solve(pm *model.ProblemModel, opts Options) (model.Result, error) {
	for _, c := range pm.Courses {
		if c.SessionsPerWeek != 1 {
			return model.Result{}, appErrors.Wrap(
				fmt.Errorf("course %d has sessions_per_week=%d", c.ID, c.SessionsPerWeek),
				appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status,
				"evolutionary engine only accepts sessions_per_week=1 courses",
			)
		}
	}

	opts = withDefaults(opts)
	rng := rand.New(rand.NewSource(opts.Seed))

	ctx := &evalContext{
		pm:          pm,
		courses:     pm.Courses,
		slots:       pm.Slots,
		instructors: pm.Instructors,
		rooms:       pm.Rooms,
	}

	start := time.Now()
	s.logger.Info("evo solve starting",
		zap.Int("population", opts.Population),
		zap.Int("generations", opts.Generations),
		zap.Int64("seed", opts.Seed),
	)

	population := make([]individual, opts.Population)
	for i := range population {
		g := randomGenome(ctx, rng)
		population[i] = individual{genes: g, fitness: fitness(ctx, pm, g)}
	}

	hallOfFame := bestOf(population)

	for gen := 0; gen < opts.Generations; gen++ {
		next := make([]individual, 0, len(population))
		for len(next) < len(population) {
			parentA := tournamentSelect(population, rng)
			parentB := tournamentSelect(population, rng)

			childA, childB := parentA.genes, parentB.genes
			if rng.Float64() < opts.CrossoverProb {
				childA, childB = twoPointCrossover(parentA.genes, parentB.genes, rng)
			}
			childA = mutate(ctx, childA, opts.MutationProb, rng)
			childB = mutate(ctx, childB, opts.MutationProb, rng)

			next = append(next, individual{genes: childA, fitness: fitness(ctx, pm, childA)})
			if len(next) < len(population) {
				next = append(next, individual{genes: childB, fitness: fitness(ctx, pm, childB)})
			}
		}
		population = next

		candidate := bestOf(population)
		if candidate.fitness < hallOfFame.fitness {
			hallOfFame = candidate
		} else {
			// Elitism: keep the hall-of-fame individual in the running
			// population so crossover/mutation cannot lose it.
			population[0] = hallOfFame
		}
	}

	elapsed := time.Since(start).Seconds()

	status := model.StatusSuboptimal
	if hallOfFame.fitness < 1000 {
		status = model.StatusFeasible
	}

	objective := hallOfFame.fitness
	result := model.Result{
		Status:           status,
		Objective:        &objective,
		SolveTimeSeconds: elapsed,
		Assignment:       decodeGenome(ctx, hallOfFame.genes),
		EngineUsed:       "evo",
		Statistics: model.Statistics{
			Generations: opts.Generations,
		},
	}

	s.logger.Info("evo solve finished", zap.String("status", string(status)), zap.Float64("fitness", hallOfFame.fitness))

	return result, nil
}

func withDefaults(o Options) Options {
	if o.Population <= 0 {
		o.Population = DefaultPopulation
	}
	if o.Generations <= 0 {
		o.Generations = DefaultGenerations
	}
	if o.CrossoverProb <= 0 {
		o.CrossoverProb = DefaultCrossoverProb
	}
	if o.MutationProb <= 0 {
		o.MutationProb = DefaultMutationProb
	}
	return o
}

func randomGenome(ctx *evalContext, rng *rand.Rand) genome {
	g := make(genome, 3*len(ctx.courses))
	for i := range ctx.courses {
		g[3*i] = rng.Intn(len(ctx.slots))
		g[3*i+1] = rng.Intn(len(ctx.instructors))
		g[3*i+2] = rng.Intn(len(ctx.rooms))
	}
	return g
}

func decodeGenome(ctx *evalContext, g genome) []model.Assignment {
	out := make([]model.Assignment, len(ctx.courses))
	for i, c := range ctx.courses {
		out[i] = model.Assignment{
			CourseID:     c.ID,
			SlotID:       ctx.slots[g[3*i]].ID,
			InstructorID: ctx.instructors[g[3*i+1]].ID,
			RoomID:       ctx.rooms[g[3*i+2]].ID,
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseID != out[j].CourseID {
			return out[i].CourseID < out[j].CourseID
		}
		return out[i].SlotID < out[j].SlotID
	})
	return out
}

func bestOf(pop []individual) individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.fitness < best.fitness {
			best = ind
		}
	}
	return best
}

func tournamentSelect(pop []individual, rng *rand.Rand) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < tournamentSize; i++ {
		candidate := pop[rng.Intn(len(pop))]
		if candidate.fitness < best.fitness {
			best = candidate
		}
	}
	return best
}

// twoPointCrossover splits the flat index vector at two points; split
// points may fall mid-triple, mixing slot/instructor/room of different
// courses, which is intentional and must be preserved.
func twoPointCrossover(a, b genome, rng *rand.Rand) (genome, genome) {
	n := len(a)
	if n < 2 {
		return append(genome(nil), a...), append(genome(nil), b...)
	}
	p1 := rng.Intn(n)
	p2 := rng.Intn(n)
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	childA := append(genome(nil), a...)
	childB := append(genome(nil), b...)
	for i := p1; i < p2; i++ {
		childA[i], childB[i] = childB[i], childA[i]
	}
	return childA, childB
}

// mutate replaces each gene with a uniformly random valid index for its
// type with probability mp; type is determined by position mod 3.
func mutate(ctx *evalContext, g genome, mp float64, rng *rand.Rand) genome {
	out := append(genome(nil), g...)
	for i := range out {
		if rng.Float64() >= mp {
			continue
		}
		switch i % 3 {
		case 0:
			out[i] = rng.Intn(len(ctx.slots))
		case 1:
			out[i] = rng.Intn(len(ctx.instructors))
		case 2:
			out[i] = rng.Intn(len(ctx.rooms))
		}
	}
	return out
}

// fitness is a deterministic, lower-is-better function of the genome
//.
func fitness(ctx *evalContext, pm *model.ProblemModel, g genome) float64 {
	bySlotInstructor := make(map[[2]int][]int) // (slot, instructor) -> course indices
	bySlotRoom := make(map[[2]int][]int)        // (slot, room) -> course indices
	byInstructorHours := make(map[int]int)
	byDayInstructorPractical := make(map[[2]interface{}][]int) // (day, instructor) -> slot ordinals

	var total float64

	for i, c := range ctx.courses {
		slotIdx, instructorIdx, roomIdx := g[3*i], g[3*i+1], g[3*i+2]
		slot := ctx.slots[slotIdx]
		instructor := ctx.instructors[instructorIdx]
		room := ctx.rooms[roomIdx]

		bySlotInstructor[[2]int{slotIdx, instructorIdx}] = append(bySlotInstructor[[2]int{slotIdx, instructorIdx}], i)
		bySlotRoom[[2]int{slotIdx, roomIdx}] = append(bySlotRoom[[2]int{slotIdx, roomIdx}], i)
		byInstructorHours[instructorIdx] += c.DurationSlots

		if !qualified(c, instructor.ID) {
			total += penaltyInstructorUnqualified
		}
		if room.Capacity < c.Enrolled {
			total += penaltyOverCapacityPerStudent * float64(c.Enrolled-room.Capacity)
		}
		if (c.Kind == model.Practical || c.Kind == model.Hybrid) && room.Kind != model.Lab {
			total += penaltyWrongRoomKind
		}
		if pm.Config.PreferMorning && c.Kind == model.Theory && !slot.IsMorning {
			total += float64(pm.Config.WeightPreferMorning)
		}
		if pref, ok := c.InstructorPreference[instructor.ID]; ok {
			weight := (5 - pref) * pm.Config.WeightPreferenceBase
			if weight > 0 {
				total += float64(weight)
			}
		}

		if c.Kind == model.Practical || c.Kind == model.Hybrid {
			key := [2]interface{}{slot.Day, instructorIdx}
			byDayInstructorPractical[key] = append(byDayInstructorPractical[key], slot.Ordinal)
		}
	}

	for _, occupants := range bySlotInstructor {
		if len(occupants) > 1 {
			total += penaltyInstructorDoubleBooked * float64(len(occupants)-1)
		}
	}
	for _, occupants := range bySlotRoom {
		if len(occupants) > 1 {
			total += penaltyRoomDoubleBooked * float64(len(occupants)-1)
		}
	}
	for instructorIdx, hours := range byInstructorHours {
		maxHours := ctx.instructors[instructorIdx].MaxHoursPerWeek
		if hours > maxHours {
			total += penaltyOverHoursPerHour * float64(hours-maxHours)
		}
	}
	if pm.Config.AvoidBackToBackPracticals {
		for _, ordinals := range byDayInstructorPractical {
			sort.Ints(ordinals)
			for i := 1; i < len(ordinals); i++ {
				if ordinals[i] == ordinals[i-1]+1 {
					total += float64(pm.Config.WeightBackToBackPracticals)
				}
			}
		}
	}

	if pm.Config.MaxPerDay > 0 || pm.Config.MinPerDay > 0 {
		perDay := make(map[model.Day]int)
		for i := range ctx.courses {
			slot := ctx.slots[g[3*i]]
			perDay[slot.Day]++
		}
		for _, count := range perDay {
			if pm.Config.MaxPerDay > 0 && count > pm.Config.MaxPerDay {
				total += float64(pm.Config.WeightDayCountExcess * (count - pm.Config.MaxPerDay))
			}
			if pm.Config.MinPerDay > 0 && count < pm.Config.MinPerDay {
				total += float64(pm.Config.WeightDayCountExcess * (pm.Config.MinPerDay - count))
			}
		}
	}

	return total
}

func qualified(c model.Course, instructorID int) bool {
	for _, id := range c.QualifiedInstructors {
		if id == instructorID {
			return true
		}
	}
	return false
}
