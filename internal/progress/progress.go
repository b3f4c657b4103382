// Package progress projects plans onto calendar days and derives streaks and the yearly calendar.
package progress

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/2beens/fitplan/internal/plans"
)

// Date is a UTC calendar day, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: plans.TruncateToDate(t)}
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

func (d Date) next() Date {
	return Date{Time: d.AddDate(0, 0, 1)}
}

type Day struct {
	Date               Date `json:"date"`
	Completed          bool `json:"completed"`
	ExercisesCompleted int  `json:"exercisesCompleted"`
	ExercisesTotal     int  `json:"exercisesTotal"`
	MealsCompleted     int  `json:"mealsCompleted"`
	MealsTotal         int  `json:"mealsTotal"`
}

type Streaks struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

type CalendarDay struct {
	Date      Date `json:"date"`
	Completed bool `json:"completed"`
}

// ComputeProgress projects every daily plan onto its date, keeping the order of plans and days.
// A day without any items counts as completed.
func ComputeProgress(userPlans []plans.Plan) []Day {
	days := make([]Day, 0, len(userPlans)*plans.DaysPerWeek)
	for i := range userPlans {
		p := &userPlans[i]
		for _, d := range p.DailyPlans {
			exercisesDone, mealsTaken := d.Completion()
			days = append(days, Day{
				Date:               NewDate(p.DayDate(d.Day)),
				Completed:          exercisesDone == len(d.Exercises) && mealsTaken == len(d.Meals),
				ExercisesCompleted: exercisesDone,
				ExercisesTotal:     len(d.Exercises),
				MealsCompleted:     mealsTaken,
				MealsTotal:         len(d.Meals),
			})
		}
	}
	return days
}

// MergeDays sorts days by date and folds entries sharing a date (overlapping plans) into one.
// A merged day is completed only when all of its entries are.
func MergeDays(days []Day) []Day {
	sorted := make([]Day, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	merged := make([]Day, 0, len(sorted))
	for _, d := range sorted {
		if n := len(merged); n > 0 && merged[n-1].Date.Equal(d.Date.Time) {
			last := &merged[n-1]
			last.Completed = last.Completed && d.Completed
			last.ExercisesCompleted += d.ExercisesCompleted
			last.ExercisesTotal += d.ExercisesTotal
			last.MealsCompleted += d.MealsCompleted
			last.MealsTotal += d.MealsTotal
			continue
		}
		merged = append(merged, d)
	}
	return merged
}

// ComputeStreaks finds the longest run of consecutive completed days, and the
// run ending at the most recent completed day that is not after today.
func ComputeStreaks(days []Day, today time.Time) Streaks {
	merged := MergeDays(days)
	if len(merged) == 0 {
		return Streaks{}
	}

	var streaks Streaks
	running := 0
	for i, d := range merged {
		if !d.Completed {
			running = 0
			continue
		}
		if running > 0 && merged[i-1].Date.next().Equal(d.Date.Time) {
			running++
		} else {
			running = 1
		}
		streaks.LongestStreak = max(streaks.LongestStreak, running)
	}

	todayDate := NewDate(today)
	var previous Date
	for i := len(merged) - 1; i >= 0; i-- {
		d := merged[i]
		if streaks.CurrentStreak == 0 {
			if d.Date.After(todayDate.Time) || !d.Completed {
				continue
			}
			streaks.CurrentStreak = 1
			previous = d.Date
			continue
		}
		if !d.Completed || !d.Date.next().Equal(previous.Time) {
			break
		}
		streaks.CurrentStreak++
		previous = d.Date
	}

	return streaks
}

// ComputeYearCalendar returns one entry for every day of reference's year, not completed
// unless days says otherwise.
func ComputeYearCalendar(days []Day, reference time.Time) []CalendarDay {
	completed := make(map[string]bool, len(days))
	for _, d := range MergeDays(days) {
		completed[d.Date.String()] = d.Completed
	}

	year := reference.UTC().Year()
	start := NewDate(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	end := NewDate(time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC))

	calendar := make([]CalendarDay, 0, 366)
	for d := start; d.Before(end.Time); d = d.next() {
		calendar = append(calendar, CalendarDay{Date: d, Completed: completed[d.String()]})
	}
	return calendar
}
