package plans

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/goals"
	"github.com/2beens/fitplan/internal/telemetry/metrics"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
)

//go:generate mockgen -source=service.go -destination=service_mocks_test.go -package=plans

type plansRepo interface {
	Create(ctx context.Context, p Plan) error
	Get(ctx context.Context, id uuid.UUID) (*Plan, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkItemDone(ctx context.Context, planID uuid.UUID, day int, kind Kind, itemID uuid.UUID) error
}

type goalLookup interface {
	GetOwned(ctx context.Context, userID, goalID uuid.UUID) (*goals.Goal, error)
}

type planGenerator interface {
	Generate(goal goals.Goal, weekNumber int, startDate time.Time) (*Plan, error)
}

type cacheInvalidator interface {
	Invalidate(userID uuid.UUID)
}

type Service struct {
	repo           plansRepo
	goals          goalLookup
	generator      planGenerator
	progressCache  cacheInvalidator
	metricsManager *metrics.Manager

	now func() time.Time
}

func NewService(
	repo plansRepo,
	goals goalLookup,
	generator planGenerator,
	progressCache cacheInvalidator,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:           repo,
		goals:          goals,
		generator:      generator,
		progressCache:  progressCache,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, newPlan NewPlan) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plans.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	weekNumber := 1
	if newPlan.WeekNumber != nil && *newPlan.WeekNumber != 0 {
		weekNumber = *newPlan.WeekNumber
	}
	if weekNumber < 1 {
		return nil, fmt.Errorf("%w: week number must be positive", errs.ErrValidation)
	}

	now := s.now().UTC()
	startDate, ok := ParseStartDate(newPlan.StartDate)
	if !ok {
		if newPlan.StartDate != "" {
			log.Debugf("plan start date %q not recognized, using today", newPlan.StartDate)
		}
		startDate = TruncateToDate(now)
	}

	goal, err := s.goals.GetOwned(ctx, userID, newPlan.GoalID)
	if err != nil {
		return nil, err
	}

	generateStart := s.now()
	plan, err := s.generator.Generate(*goal, weekNumber, startDate)
	if err != nil {
		return nil, err
	}
	if s.metricsManager != nil {
		s.metricsManager.HistogramPlanGeneration.Observe(s.now().Sub(generateStart).Seconds())
	}
	plan.CreatedAt = now

	if err := s.repo.Create(ctx, *plan); err != nil {
		return nil, err
	}

	s.progressCache.Invalidate(userID)
	if s.metricsManager != nil {
		s.metricsManager.CounterPlansGenerated.Inc()
	}
	log.Debugf("plan %s generated for goal %s", plan.ID, goal.ID)

	return plan, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) (_ []Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plans.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) getOwned(ctx context.Context, userID, planID uuid.UUID) (*Plan, error) {
	plan, err := s.repo.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, fmt.Errorf("plan %s: %w", planID, errs.ErrNotAuthorized)
	}
	return plan, nil
}

func (s *Service) Get(ctx context.Context, userID, planID uuid.UUID) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plans.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.getOwned(ctx, userID, planID)
}

func (s *Service) Delete(ctx context.Context, userID, planID uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plans.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.getOwned(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, planID); err != nil {
		return err
	}

	s.progressCache.Invalidate(userID)
	return nil
}

// MarkDone flags one exercise as done or one meal as taken and returns the updated plan.
// Nothing is written when userID does not own the plan.
func (s *Service) MarkDone(ctx context.Context, userID, planID uuid.UUID, day int, kind Kind, itemID uuid.UUID) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plans.mark-done")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := validateItemAddress(day, kind); err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, userID, planID); err != nil {
		return nil, err
	}

	if err := s.repo.MarkItemDone(ctx, planID, day, kind, itemID); err != nil {
		return nil, err
	}
	s.progressCache.Invalidate(userID)
	if s.metricsManager != nil {
		s.metricsManager.CounterItemsCompleted.WithLabelValues(string(kind)).Inc()
	}

	return s.repo.Get(ctx, planID)
}
