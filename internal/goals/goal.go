package goals

import (
	"fmt"
	"math"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/2beens/fitplan/internal/errs"
)

type Type string

const (
	TypeLoseWeight  Type = "lose_weight"
	TypeGainWeight  Type = "gain_weight"
	TypeMaintain    Type = "maintain"
	TypeBuildMuscle Type = "build_muscle"
	TypeEndurance   Type = "endurance"
)

type macroRatio struct {
	protein, carbs, fats float64
}

var macroRatios = map[Type]macroRatio{
	TypeLoseWeight:  {protein: 0.3, carbs: 0.4, fats: 0.3},
	TypeGainWeight:  {protein: 0.25, carbs: 0.5, fats: 0.25},
	TypeMaintain:    {protein: 0.25, carbs: 0.5, fats: 0.25},
	TypeBuildMuscle: {protein: 0.35, carbs: 0.4, fats: 0.25},
	TypeEndurance:   {protein: 0.2, carbs: 0.6, fats: 0.2},
}

func (t Type) Valid() bool {
	_, ok := macroRatios[t]
	return ok
}

type Pace string

const (
	PaceFast   Pace = "fast"
	PaceNormal Pace = "normal"
	PaceSlow   Pace = "slow"
)

// kg per week
var paceRates = map[Pace]float64{
	PaceFast:   1,
	PaceNormal: 0.5,
	PaceSlow:   0.25,
}

func (p Pace) Valid() bool {
	_, ok := paceRates[p]
	return ok
}

// Rate is the weekly weight change in kg, normal for unknown paces.
func (p Pace) Rate() float64 {
	if r, ok := paceRates[p]; ok {
		return r
	}
	return paceRates[PaceNormal]
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusPaused:
		return true
	}
	return false
}

type Macros struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fats    int `json:"fats"`
}

type Goal struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	Type          Type      `json:"type"`
	TargetWeight  float64   `json:"targetWeight"`
	DailyCalories *int      `json:"dailyCalories,omitempty"`
	Macros        *Macros   `json:"macros,omitempty"`
	Pace          Pace      `json:"pace"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DurationWeeks is how long reaching target takes from current at the given pace.
func DurationWeeks(current, target float64, pace Pace) int {
	return int(math.Ceil(math.Abs(target-current) / pace.Rate()))
}

// View is the serialized goal. DurationWeeks is derived from the owner's weight
// at read time and is null while that weight is unknown.
type View struct {
	Goal
	DurationWeeks *int `json:"durationWeeks"`
}

func NewView(g Goal, currentWeight *float64) View {
	v := View{Goal: g}
	if currentWeight != nil {
		weeks := DurationWeeks(*currentWeight, g.TargetWeight, g.Pace)
		v.DurationWeeks = &weeks
	}
	return v
}

// Targets derives daily calories and macros from the owner's TDEE.
func Targets(goalType Type, tdee int) (int, Macros) {
	calories := tdee
	switch goalType {
	case TypeLoseWeight:
		calories -= 500
	case TypeGainWeight:
		calories += 500
	}

	ratio := macroRatios[goalType]
	c := float64(calories)
	return calories, Macros{
		Protein: int(math.Round(c * ratio.protein / 4)),
		Carbs:   int(math.Round(c * ratio.carbs / 4)),
		Fats:    int(math.Round(c * ratio.fats / 9)),
	}
}

type NewGoal struct {
	Type          Type    `json:"type"`
	TargetWeight  float64 `json:"targetWeight"`
	DailyCalories *int    `json:"dailyCalories"`
	Macros        *Macros `json:"macros"`
	Pace          Pace    `json:"pace"`
	// AutoTargets fills calories and macros from the owner's TDEE.
	AutoTargets bool `json:"autoTargets"`
}

type Update struct {
	Type          *Type    `json:"type"`
	TargetWeight  *float64 `json:"targetWeight"`
	DailyCalories *int     `json:"dailyCalories"`
	Macros        *Macros  `json:"macros"`
	Pace          *Pace    `json:"pace"`
	Status        *Status  `json:"status"`
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, fmt.Sprintf(format, args...))
}

func validateNumbers(targetWeight *float64, dailyCalories *int, macros *Macros) error {
	if targetWeight != nil && *targetWeight <= 0 {
		return validationErr("target weight must be positive")
	}
	if dailyCalories != nil && *dailyCalories <= 0 {
		return validationErr("daily calories must be positive")
	}
	if macros != nil && (macros.Protein < 0 || macros.Carbs < 0 || macros.Fats < 0) {
		return validationErr("macros cannot be negative")
	}
	return nil
}

func (n *NewGoal) Validate() error {
	if n.Pace == "" {
		n.Pace = PaceNormal
	}
	if !n.Type.Valid() {
		return validationErr("invalid goal type %q", n.Type)
	}
	if !n.Pace.Valid() {
		return validationErr("invalid pace %q", n.Pace)
	}
	return validateNumbers(&n.TargetWeight, n.DailyCalories, n.Macros)
}

func (u *Update) Validate() error {
	if u.Type != nil && !u.Type.Valid() {
		return validationErr("invalid goal type %q", *u.Type)
	}
	if u.Pace != nil && !u.Pace.Valid() {
		return validationErr("invalid pace %q", *u.Pace)
	}
	if u.Status != nil && !u.Status.Valid() {
		return validationErr("invalid status %q", *u.Status)
	}
	return validateNumbers(u.TargetWeight, u.DailyCalories, u.Macros)
}

func (u *Update) apply(g *Goal) {
	if u.Type != nil {
		g.Type = *u.Type
	}
	if u.TargetWeight != nil {
		g.TargetWeight = *u.TargetWeight
	}
	if u.DailyCalories != nil {
		g.DailyCalories = u.DailyCalories
	}
	if u.Macros != nil {
		g.Macros = u.Macros
	}
	if u.Pace != nil {
		g.Pace = *u.Pace
	}
	if u.Status != nil {
		g.Status = *u.Status
	}
}
