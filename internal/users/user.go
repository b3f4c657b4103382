package users

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/2beens/fitplan/internal/errs"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

func (a ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[a]
	return ok
}

// Multiplier returns the TDEE activity factor, moderate for unknown levels.
func (a ActivityLevel) Multiplier() float64 {
	if m, ok := activityMultipliers[a]; ok {
		return m
	}
	return activityMultipliers[ActivityModerate]
}

const (
	minPasswordLength = 6
	minAge            = 10
	maxAge            = 100
)

type User struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	PasswordHash  string        `json:"-"`
	Age           *int          `json:"age,omitempty"`
	Gender        *Gender       `json:"gender,omitempty"`
	HeightCm      *float64      `json:"heightCm,omitempty"`
	CurrentWeight *float64      `json:"currentWeight,omitempty"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// BMI is weight / height(m)^2, rounded to 2 decimals. Nil without height or weight.
func (u *User) BMI() *float64 {
	if u.HeightCm == nil || u.CurrentWeight == nil || *u.HeightCm <= 0 || *u.CurrentWeight <= 0 {
		return nil
	}
	heightM := *u.HeightCm / 100
	bmi := math.Round(*u.CurrentWeight/(heightM*heightM)*100) / 100
	return &bmi
}

func (u *User) BMICategory() *string {
	bmi := u.BMI()
	if bmi == nil {
		return nil
	}
	var category string
	switch {
	case *bmi < 18.5:
		category = "Underweight"
	case *bmi < 24.9:
		category = "Normal weight"
	case *bmi < 29.9:
		category = "Overweight"
	default:
		category = "Obese"
	}
	return &category
}

// TDEE is the Mifflin-St Jeor BMR scaled by the activity level.
// Nil unless height, weight, age and gender are all known.
func (u *User) TDEE() *int {
	if u.HeightCm == nil || u.CurrentWeight == nil || u.Age == nil || u.Gender == nil {
		return nil
	}
	bmr := 10*(*u.CurrentWeight) + 6.25*(*u.HeightCm) - 5*float64(*u.Age)
	if *u.Gender == GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	tdee := int(math.Round(bmr * u.ActivityLevel.Multiplier()))
	return &tdee
}

// View is the serialized user, with the derived fields computed at the time of the call.
type View struct {
	User
	BMI         *float64 `json:"bmi"`
	BMICategory *string  `json:"bmiCategory"`
	TDEE        *int     `json:"tdee"`
}

func (u *User) View() View {
	return View{
		User:        *u,
		BMI:         u.BMI(),
		BMICategory: u.BMICategory(),
		TDEE:        u.TDEE(),
	}
}

type NewUser struct {
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Password      string        `json:"password"`
	Age           *int          `json:"age"`
	Gender        *Gender       `json:"gender"`
	HeightCm      *float64      `json:"heightCm"`
	CurrentWeight *float64      `json:"currentWeight"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

type ProfileUpdate struct {
	Name          *string        `json:"name"`
	Password      *string        `json:"password"`
	Age           *int           `json:"age"`
	Gender        *Gender        `json:"gender"`
	HeightCm      *float64       `json:"heightCm"`
	CurrentWeight *float64       `json:"currentWeight"`
	ActivityLevel *ActivityLevel `json:"activityLevel"`
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, fmt.Sprintf(format, args...))
}

func validateProfile(age *int, gender *Gender, heightCm, weight *float64, activity *ActivityLevel) error {
	if age != nil && (*age < minAge || *age > maxAge) {
		return validationErr("age must be between %d and %d", minAge, maxAge)
	}
	if gender != nil && !gender.Valid() {
		return validationErr("invalid gender %q", *gender)
	}
	if heightCm != nil && *heightCm <= 0 {
		return validationErr("height must be positive")
	}
	if weight != nil && *weight <= 0 {
		return validationErr("current weight must be positive")
	}
	if activity != nil && !activity.Valid() {
		return validationErr("invalid activity level %q", *activity)
	}
	return nil
}

func (n *NewUser) normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	if n.ActivityLevel == "" {
		n.ActivityLevel = ActivityModerate
	}
}

func (n *NewUser) Validate() error {
	if n.Name == "" {
		return validationErr("name is required")
	}
	if _, err := mail.ParseAddress(n.Email); err != nil {
		return validationErr("invalid email %q", n.Email)
	}
	if len(n.Password) < minPasswordLength {
		return validationErr("password must have at least %d characters", minPasswordLength)
	}
	return validateProfile(n.Age, n.Gender, n.HeightCm, n.CurrentWeight, &n.ActivityLevel)
}

func (p *ProfileUpdate) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return validationErr("name cannot be empty")
	}
	if p.Password != nil && len(*p.Password) < minPasswordLength {
		return validationErr("password must have at least %d characters", minPasswordLength)
	}
	return validateProfile(p.Age, p.Gender, p.HeightCm, p.CurrentWeight, p.ActivityLevel)
}

// apply copies the set fields onto u. The password is handled by the caller.
func (p *ProfileUpdate) apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.Gender != nil {
		u.Gender = p.Gender
	}
	if p.HeightCm != nil {
		u.HeightCm = p.HeightCm
	}
	if p.CurrentWeight != nil {
		u.CurrentWeight = p.CurrentWeight
	}
	if p.ActivityLevel != nil {
		u.ActivityLevel = *p.ActivityLevel
	}
}
