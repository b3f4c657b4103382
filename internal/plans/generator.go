package plans

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/2beens/fitplan/internal/catalog"
	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/goals"
)

const (
	exercisesPerDay = 2
	mealsPerDay     = 3
	maxWeeklyUsage  = 3
	defaultCalories = 2000
	restDay         = "rest"
	fallbackBucket  = "misc"
)

var defaultMacros = goals.Macros{Protein: 100, Carbs: 200, Fats: 70}

var weeklySplit = [DaysPerWeek]string{"chest", "back", "legs", "cardio", "fullbody", "shoulders", restDay}

// an exercise lands in every bucket whose pattern matches its name
var bucketPatterns = map[string]*regexp.Regexp{
	"chest":     regexp.MustCompile(`(?i)bench|push`),
	"back":      regexp.MustCompile(`(?i)deadlift|row`),
	"legs":      regexp.MustCompile(`(?i)squat|leg`),
	"cardio":    regexp.MustCompile(`(?i)jog|cycle|jump|hiit`),
	"fullbody":  regexp.MustCompile(`(?i)plank|yoga`),
	"shoulders": regexp.MustCompile(`(?i)shoulder|press`),
}

// Generator assembles weekly plans from the catalog.
// It is safe for concurrent use.
type Generator struct {
	catalog *catalog.Catalog
	newID   func() (uuid.UUID, error)

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a generator drawing from src. A nil newID falls back to random UUIDs.
func NewGenerator(c *catalog.Catalog, src rand.Source, newID func() (uuid.UUID, error)) *Generator {
	if newID == nil {
		newID = uuid.NewV4
	}
	return &Generator{
		catalog: c,
		newID:   newID,
		rnd:     rand.New(src),
	}
}

// NewSource returns a PCG source for seed, or an entropy seeded one for seed 0.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(seed, seed)
}

func groupExercises(pool []catalog.ExerciseEntry) map[string][]catalog.ExerciseEntry {
	buckets := make(map[string][]catalog.ExerciseEntry, len(bucketPatterns)+1)
	for _, e := range pool {
		for name, pattern := range bucketPatterns {
			if pattern.MatchString(e.Name) {
				buckets[name] = append(buckets[name], e)
			}
		}
	}
	buckets[fallbackBucket] = pool
	return buckets
}

// Generate builds a 7 day plan for goal. It fails with errs.ErrNoEligibleContent
// when no exercise in the catalog is tagged with the goal type or pace.
func (g *Generator) Generate(goal goals.Goal, weekNumber int, startDate time.Time) (*Plan, error) {
	tags := []string{string(goal.Type), string(goal.Pace)}
	exercises := g.catalog.Exercises(tags...)
	if len(exercises) == 0 {
		return nil, fmt.Errorf("%w: no exercises available for goal type %s and pace %s",
			errs.ErrNoEligibleContent, goal.Type, goal.Pace)
	}
	meals := g.catalog.Meals(tags...)
	buckets := groupExercises(exercises)

	calories, macros := defaultCalories, defaultMacros
	if goal.DailyCalories != nil {
		calories = *goal.DailyCalories
	}
	if goal.Macros != nil {
		macros = *goal.Macros
	}

	planID, err := g.newID()
	if err != nil {
		return nil, fmt.Errorf("new plan id: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	usage := make(map[string]int)
	dailyPlans := make([]DailyPlan, 0, DaysPerWeek)
	for day := 1; day <= DaysPerWeek; day++ {
		daily := DailyPlan{
			Day:       day,
			Calories:  calories,
			Macros:    macros,
			Exercises: []PlanExercise{},
			Meals:     []PlanMeal{},
		}

		dayType := weeklySplit[(day-1)%DaysPerWeek]
		if dayType != restDay {
			pool := buckets[dayType]
			if len(pool) == 0 {
				pool = buckets[fallbackBucket]
			}
			for _, e := range g.pickExercises(pool, usage) {
				id, err := g.newID()
				if err != nil {
					return nil, fmt.Errorf("new exercise id: %w", err)
				}
				daily.Exercises = append(daily.Exercises, PlanExercise{
					ID:              id,
					Name:            e.Name,
					Sets:            e.Sets,
					Reps:            e.Reps,
					DurationMinutes: e.DurationMinutes,
					Image:           e.Image,
				})
			}
		}

		for _, m := range g.pickMeals(meals) {
			id, err := g.newID()
			if err != nil {
				return nil, fmt.Errorf("new meal id: %w", err)
			}
			daily.Meals = append(daily.Meals, PlanMeal{
				ID:       id,
				Name:     m.Name,
				Calories: m.Calories,
				Protein:  m.Protein,
				Carbs:    m.Carbs,
				Fats:     m.Fats,
				Image:    m.Image,
			})
		}

		daily.IsRestDay = len(daily.Exercises) == 0
		dailyPlans = append(dailyPlans, daily)
	}

	return &Plan{
		ID:         planID,
		UserID:     goal.UserID,
		GoalID:     goal.ID,
		WeekNumber: weekNumber,
		StartDate:  startDate,
		Version:    1,
		DailyPlans: dailyPlans,
	}, nil
}

// pickExercises prefers exercises used less than maxWeeklyUsage times this week.
// When fewer than exercisesPerDay of those remain, it samples the whole pool,
// repeating entries if the pool itself is too small.
func (g *Generator) pickExercises(pool []catalog.ExerciseEntry, usage map[string]int) []catalog.ExerciseEntry {
	available := make([]catalog.ExerciseEntry, 0, len(pool))
	for _, e := range pool {
		if usage[e.Name] < maxWeeklyUsage {
			available = append(available, e)
		}
	}
	if len(available) < exercisesPerDay {
		available = pool
	}

	picked := make([]catalog.ExerciseEntry, 0, exercisesPerDay)
	for _, i := range g.rnd.Perm(len(available)) {
		if len(picked) == exercisesPerDay {
			break
		}
		picked = append(picked, available[i])
	}
	for len(picked) < exercisesPerDay {
		picked = append(picked, available[g.rnd.IntN(len(available))])
	}

	for _, e := range picked {
		usage[e.Name]++
	}
	return picked
}

func (g *Generator) pickMeals(meals []catalog.MealEntry) []catalog.MealEntry {
	perm := g.rnd.Perm(len(meals))
	picked := make([]catalog.MealEntry, 0, mealsPerDay)
	for _, i := range perm[:min(mealsPerDay, len(perm))] {
		picked = append(picked, meals[i])
	}
	return picked
}
