//go:build integration_test || all_tests

package test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitplan/internal/goals"
	"github.com/2beens/fitplan/internal/plans"
	"github.com/2beens/fitplan/internal/progress"
)

func (s *IntegrationTestSuite) createGoal(ctx context.Context, token string, newGoal goals.NewGoal) goals.View {
	t := s.T()
	status, body := s.doRequest(ctx, http.MethodPost, "/goals", token, newGoal)
	require.Equal(t, http.StatusCreated, status, string(body))
	return decodeJSON[goals.View](t, body)
}

func (s *IntegrationTestSuite) createPlan(ctx context.Context, token string, newPlan plans.NewPlan) plans.Plan {
	t := s.T()
	status, body := s.doRequest(ctx, http.MethodPost, "/plan", token, newPlan)
	require.Equal(t, http.StatusCreated, status, string(body))
	return decodeJSON[plans.Plan](t, body)
}

func (s *IntegrationTestSuite) TestGoalLifecycle() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, user := s.registerUser(ctx)

	goal := s.createGoal(ctx, token, goals.NewGoal{
		Type:         goals.TypeLoseWeight,
		TargetWeight: *user.CurrentWeight - 10,
		Pace:         goals.PaceNormal,
		AutoTargets:  true,
	})
	require.NotNil(t, goal.DailyCalories)
	assert.Equal(t, *user.TDEE-500, *goal.DailyCalories)
	require.NotNil(t, goal.DurationWeeks)
	assert.Equal(t, 20, *goal.DurationWeeks)

	status, body := s.doRequest(ctx, http.MethodGet, "/goals", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeJSON[[]goals.View](t, body), 1)

	// another user cannot see it
	otherToken, _ := s.registerUser(ctx)
	status, _ = s.doRequest(ctx, http.MethodGet, "/goals/"+goal.ID.String(), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	paceFast := goals.PaceFast
	status, body = s.doRequest(ctx, http.MethodPut, "/goals/"+goal.ID.String(), token, goals.Update{
		Pace: &paceFast,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, goals.PaceFast, decodeJSON[goals.View](t, body).Pace)

	s.createPlan(ctx, token, plans.NewPlan{GoalID: goal.ID})
	assert.Equal(t, 1, s.countRows("plan", "goal_id = $1", goal.ID.String()))

	status, body = s.doRequest(ctx, http.MethodDelete, "/goals/"+goal.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	deleted := decodeJSON[goals.DeleteGoalResponse](t, body)
	assert.Equal(t, goal.ID, deleted.DeletedID)

	// plans of the goal go with it
	assert.Equal(t, 0, s.countRows("plan", "goal_id = $1", goal.ID.String()))
	status, _ = s.doRequest(ctx, http.MethodGet, "/goals/"+goal.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestPlanGenerateAndComplete() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, user := s.registerUser(ctx)
	goal := s.createGoal(ctx, token, goals.NewGoal{
		Type:         goals.TypeBuildMuscle,
		TargetWeight: *user.CurrentWeight + 4,
		Pace:         goals.PaceNormal,
	})

	today := time.Now().UTC().Format(time.DateOnly)
	plan := s.createPlan(ctx, token, plans.NewPlan{
		GoalID:    goal.ID,
		StartDate: today,
	})
	require.Len(t, plan.DailyPlans, plans.DaysPerWeek)
	assert.Equal(t, 1, plan.WeekNumber)
	assert.Equal(t, int64(1), plan.Version)
	assert.True(t, plan.DailyPlans[6].IsRestDay)
	assert.Empty(t, plan.DailyPlans[6].Exercises)
	assert.Equal(t, plans.DaysPerWeek, s.countRows("plan_day", "plan_id = $1", plan.ID.String()))

	firstDay := plan.DailyPlans[0]
	require.NotEmpty(t, firstDay.Exercises)

	// another user can neither complete items nor change the plan
	require.NotEmpty(t, firstDay.Meals)
	status, body := s.doRequest(ctx, http.MethodGet, "/plan/"+plan.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	planBefore := decodeJSON[plans.Plan](t, body)

	otherToken, _ := s.registerUser(ctx)
	otherPath := fmt.Sprintf("/plan/%s/daily/1/type/meal/id/%s", plan.ID, firstDay.Meals[0].ID)
	status, _ = s.doRequest(ctx, http.MethodPatch, otherPath, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.doRequest(ctx, http.MethodGet, "/plan/"+plan.ID.String(), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.doRequest(ctx, http.MethodGet, "/plan/"+plan.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	planAfter := decodeJSON[plans.Plan](t, body)
	assert.Equal(t, planBefore, planAfter)
	assert.Equal(t, int64(1), planAfter.Version)
	assert.False(t, planAfter.DailyPlans[0].Meals[0].Taken)

	// nothing done yet
	status, body = s.doRequest(ctx, http.MethodGet, "/progress/streak", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, progress.Streaks{}, decodeJSON[progress.Streaks](t, body))

	var lastResp plans.MarkDoneResponse
	for _, e := range firstDay.Exercises {
		lastResp = s.markDone(ctx, token, plan.ID.String(), 1, plans.KindExercise, e.ID.String())
		assert.Equal(t, "exercise marked as done/taken", lastResp.Message)
	}
	for _, m := range firstDay.Meals {
		lastResp = s.markDone(ctx, token, plan.ID.String(), 1, plans.KindMeal, m.ID.String())
	}
	require.NotNil(t, lastResp.Plan)
	assert.Equal(t, int64(1+len(firstDay.Exercises)+len(firstDay.Meals)), lastResp.Plan.Version)

	exercisesDone, mealsTaken := lastResp.Plan.DailyPlans[0].Completion()
	assert.Equal(t, len(firstDay.Exercises), exercisesDone)
	assert.Equal(t, len(firstDay.Meals), mealsTaken)

	// marking again keeps it done
	again := s.markDone(ctx, token, plan.ID.String(), 1, plans.KindExercise, firstDay.Exercises[0].ID.String())
	assert.True(t, again.Plan.DailyPlans[0].Exercises[0].Done)

	status, body = s.doRequest(ctx, http.MethodGet, "/progress/streak", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, progress.Streaks{CurrentStreak: 1, LongestStreak: 1}, decodeJSON[progress.Streaks](t, body))

	status, body = s.doRequest(ctx, http.MethodGet, "/progress", token, nil)
	require.Equal(t, http.StatusOK, status)
	days := decodeJSON[[]progress.Day](t, body)
	require.Len(t, days, plans.DaysPerWeek)
	assert.Equal(t, today, days[0].Date.String())
	assert.True(t, days[0].Completed)

	status, body = s.doRequest(ctx, http.MethodGet, "/progress/calendar", token, nil)
	require.Equal(t, http.StatusOK, status)
	calendar := decodeJSON[progress.CalendarResponse](t, body)
	assert.GreaterOrEqual(t, len(calendar.Calendar), 365)
	assert.Equal(t, 1, calendar.CurrentStreak)

	// item of a different day
	path := fmt.Sprintf("/plan/%s/daily/2/type/exercise/id/%s", plan.ID, firstDay.Exercises[0].ID)
	status, _ = s.doRequest(ctx, http.MethodPatch, path, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.doRequest(ctx, http.MethodDelete, "/plan/"+plan.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, s.countRows("plan_item", "plan_id = $1", plan.ID.String()))

	status, body = s.doRequest(ctx, http.MethodGet, "/progress/streak", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, progress.Streaks{}, decodeJSON[progress.Streaks](t, body))
}

func (s *IntegrationTestSuite) markDone(ctx context.Context, token, planID string, day int, kind plans.Kind, itemID string) plans.MarkDoneResponse {
	t := s.T()
	path := fmt.Sprintf("/plan/%s/daily/%d/type/%s/id/%s", planID, day, kind, itemID)
	status, body := s.doRequest(ctx, http.MethodPatch, path, token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	return decodeJSON[plans.MarkDoneResponse](t, body)
}
