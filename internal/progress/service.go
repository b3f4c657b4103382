package progress

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/2beens/fitplan/internal/plans"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
)

//go:generate mockgen -source=service.go -destination=service_mocks_test.go -package=progress

type plansLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]plans.Plan, error)
}

type CalendarResponse struct {
	Calendar []CalendarDay `json:"calendar"`
	Streaks
}

type Service struct {
	plans plansLister
	cache *Cache

	now func() time.Time
}

// NewService creates the progress service. The cache is optional.
func NewService(plans plansLister, cache *Cache) *Service {
	return &Service{
		plans: plans,
		cache: cache,
		now:   time.Now,
	}
}

func (s *Service) Progress(ctx context.Context, userID uuid.UUID) (_ []Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.days")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var generation uint64
	if s.cache != nil {
		if days, found := s.cache.Get(userID); found {
			return days, nil
		}
		generation = s.cache.Generation(userID)
	}

	userPlans, err := s.plans.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	days := ComputeProgress(userPlans)
	if s.cache != nil {
		s.cache.Set(userID, generation, days)
	}
	return days, nil
}

func (s *Service) Streak(ctx context.Context, userID uuid.UUID) (Streaks, error) {
	days, err := s.Progress(ctx, userID)
	if err != nil {
		return Streaks{}, err
	}
	return ComputeStreaks(days, s.now()), nil
}

// Calendar covers the given year, the current one when year is 0. Streaks are always as of today.
func (s *Service) Calendar(ctx context.Context, userID uuid.UUID, year int) (*CalendarResponse, error) {
	days, err := s.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	reference := now
	if year != 0 {
		reference = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	return &CalendarResponse{
		Calendar: ComputeYearCalendar(days, reference),
		Streaks:  ComputeStreaks(days, now),
	}, nil
}
