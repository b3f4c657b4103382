// Package plans generates weekly exercise and meal plans for goals and tracks their completion.
package plans

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/goals"
)

const DaysPerWeek = 7

type Kind string

const (
	KindExercise Kind = "exercise"
	KindMeal     Kind = "meal"
)

func (k Kind) Valid() bool {
	return k == KindExercise || k == KindMeal
}

type PlanExercise struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Sets            int       `json:"sets"`
	Reps            int       `json:"reps"`
	DurationMinutes int       `json:"durationMinutes"`
	Image           string    `json:"image"`
	Done            bool      `json:"done"`
}

type PlanMeal struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Calories int       `json:"calories"`
	Protein  int       `json:"protein"`
	Carbs    int       `json:"carbs"`
	Fats     int       `json:"fats"`
	Image    string    `json:"image"`
	Taken    bool      `json:"taken"`
}

type DailyPlan struct {
	Day       int            `json:"day"`
	Calories  int            `json:"calories"`
	Macros    goals.Macros   `json:"macros"`
	Exercises []PlanExercise `json:"exercises"`
	Meals     []PlanMeal     `json:"meals"`
	IsRestDay bool           `json:"isRestDay"`
}

// Completion counts the finished items of the day.
func (d DailyPlan) Completion() (exercisesDone, mealsTaken int) {
	for _, e := range d.Exercises {
		if e.Done {
			exercisesDone++
		}
	}
	for _, m := range d.Meals {
		if m.Taken {
			mealsTaken++
		}
	}
	return exercisesDone, mealsTaken
}

type Plan struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"userId"`
	GoalID     uuid.UUID   `json:"goalId"`
	WeekNumber int         `json:"weekNumber"`
	StartDate  time.Time   `json:"startDate"`
	Version    int64       `json:"version"`
	CreatedAt  time.Time   `json:"createdAt"`
	DailyPlans []DailyPlan `json:"dailyPlans"`
}

// DayDate is the calendar date the given plan day falls on.
func (p *Plan) DayDate(day int) time.Time {
	return p.StartDate.AddDate(0, 0, day-1)
}

// NewPlan is the plan creation request. WeekNumber defaults to 1 and a
// missing or unparsable StartDate to today.
type NewPlan struct {
	GoalID     uuid.UUID `json:"goalId"`
	WeekNumber *int      `json:"weekNumber"`
	StartDate  string    `json:"startDate"`
}

type MarkDoneResponse struct {
	Message string `json:"message"`
	Plan    *Plan  `json:"plan"`
}

// TruncateToDate drops the time of day, in UTC.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseStartDate accepts a plain date or an RFC 3339 timestamp.
func ParseStartDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return TruncateToDate(t), true
	}
	return time.Time{}, false
}

func validateItemAddress(day int, kind Kind) error {
	if day < 1 || day > DaysPerWeek {
		return fmt.Errorf("%w: day must be between 1 and %d", errs.ErrValidation, DaysPerWeek)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: invalid item type %q", errs.ErrValidation, kind)
	}
	return nil
}
