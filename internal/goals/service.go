package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/internal/users"
)

//go:generate mockgen -source=service.go -destination=service_mocks_test.go -package=goals

type goalsRepo interface {
	Add(ctx context.Context, g Goal) error
	Get(ctx context.Context, id uuid.UUID) (*Goal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Goal, error)
	Update(ctx context.Context, g Goal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ownerLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*users.User, error)
}

type cacheInvalidator interface {
	Invalidate(userID uuid.UUID)
}

type Service struct {
	repo          goalsRepo
	owners        ownerLookup
	progressCache cacheInvalidator

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

func NewService(repo goalsRepo, owners ownerLookup, progressCache cacheInvalidator) *Service {
	return &Service{
		repo:          repo,
		owners:        owners,
		progressCache: progressCache,
		now:           time.Now,
		newID:         uuid.NewV4,
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, newGoal NewGoal) (_ *View, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := newGoal.Validate(); err != nil {
		return nil, err
	}

	owner, err := s.owners.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if newGoal.AutoTargets {
		tdee := owner.TDEE()
		if tdee == nil {
			return nil, validationErr("auto targets need age, gender, height and weight in the profile")
		}
		calories, macros := Targets(newGoal.Type, *tdee)
		newGoal.DailyCalories = &calories
		newGoal.Macros = &macros
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("new goal id: %w", err)
	}

	now := s.now().UTC()
	goal := Goal{
		ID:            id,
		UserID:        userID,
		Type:          newGoal.Type,
		TargetWeight:  newGoal.TargetWeight,
		DailyCalories: newGoal.DailyCalories,
		Macros:        newGoal.Macros,
		Pace:          newGoal.Pace,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Add(ctx, goal); err != nil {
		return nil, err
	}

	log.Debugf("goal %s created for user %s", goal.ID, userID)
	view := NewView(goal, owner.CurrentWeight)
	return &view, nil
}

// GetOwned loads the goal and makes sure userID owns it.
func (s *Service) GetOwned(ctx context.Context, userID, goalID uuid.UUID) (*Goal, error) {
	goal, err := s.repo.Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal %s: %w", goalID, errs.ErrNotAuthorized)
	}
	return goal, nil
}

func (s *Service) currentWeight(ctx context.Context, userID uuid.UUID) (*float64, error) {
	owner, err := s.owners.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return owner.CurrentWeight, nil
}

func (s *Service) Get(ctx context.Context, userID, goalID uuid.UUID) (_ *View, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goal, err := s.GetOwned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	weight, err := s.currentWeight(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := NewView(*goal, weight)
	return &view, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) (_ []View, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goals, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	weight, err := s.currentWeight(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(goals))
	for _, g := range goals {
		views = append(views, NewView(g, weight))
	}
	return views, nil
}

func (s *Service) Update(ctx context.Context, userID, goalID uuid.UUID, update Update) (_ *View, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goal, err := s.GetOwned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	update.apply(goal)
	goal.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, *goal); err != nil {
		return nil, err
	}

	weight, err := s.currentWeight(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := NewView(*goal, weight)
	return &view, nil
}

// Delete removes the goal together with all of its plans.
func (s *Service) Delete(ctx context.Context, userID, goalID uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.GetOwned(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, goalID); err != nil {
		return err
	}

	s.progressCache.Invalidate(userID)
	log.Debugf("goal %s deleted for user %s", goalID, userID)
	return nil
}
