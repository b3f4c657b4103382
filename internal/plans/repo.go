package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/2beens/fitplan/internal/db"
	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/pkg"
)

const planColumns = `id, user_id, goal_id, week_number, start_date, version, created_at`

var (
	dayColumns  = []string{"plan_id", "day", "calories", "protein", "carbs", "fats", "is_rest_day"}
	itemColumns = []string{
		"id", "plan_id", "day", "kind", "position", "name", "sets", "reps", "duration_minutes",
		"calories", "protein", "carbs", "fats", "image", "completed",
	}
)

type Repo struct {
	pool db.Pool
}

func NewRepo(pool db.Pool) *Repo {
	return &Repo{
		pool: pool,
	}
}

// Create stores the plan with its days and items in one transaction.
func (r *Repo) Create(ctx context.Context, p Plan) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dayRows := make([][]any, 0, len(p.DailyPlans))
	var itemRows [][]any
	for _, d := range p.DailyPlans {
		dayRows = append(dayRows, []any{
			p.ID, d.Day, d.Calories, d.Macros.Protein, d.Macros.Carbs, d.Macros.Fats, d.IsRestDay,
		})
		for i, e := range d.Exercises {
			itemRows = append(itemRows, []any{
				e.ID, p.ID, d.Day, KindExercise, i, e.Name, e.Sets, e.Reps, e.DurationMinutes,
				0, 0, 0, 0, e.Image, e.Done,
			})
		}
		for i, m := range d.Meals {
			itemRows = append(itemRows, []any{
				m.ID, p.ID, d.Day, KindMeal, i, m.Name, 0, 0, 0,
				m.Calories, m.Protein, m.Carbs, m.Fats, m.Image, m.Taken,
			})
		}
	}

	err = db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO plan (`+planColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, p.UserID, p.GoalID, p.WeekNumber, p.StartDate, p.Version, p.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"plan_day"}, dayColumns, pgx.CopyFromRows(dayRows)); err != nil {
			return fmt.Errorf("copy plan days: %w", err)
		}
		if len(itemRows) == 0 {
			return nil
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"plan_item"}, itemColumns, pgx.CopyFromRows(itemRows)); err != nil {
			return fmt.Errorf("copy plan items: %w", err)
		}
		return nil
	})
	if pkg.IsForeignKeyViolationError(err) {
		// goal (or its owner) removed while the plan was being generated
		return fmt.Errorf("create plan: %w: goal no longer exists", errs.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("create plan: %w: %w", errs.ErrPersistence, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var p Plan
	if err := r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM plan WHERE id = $1`, id).Scan(
		&p.ID, &p.UserID, &p.GoalID, &p.WeekNumber, &p.StartDate, &p.Version, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get plan: %w: %w", errs.ErrPersistence, err)
	}

	plans := []Plan{p}
	if err := r.loadDays(ctx, plans); err != nil {
		return nil, err
	}
	return &plans[0], nil
}

// ListByUser returns the user's plans, oldest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) (_ []Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.list-by-user")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM plan WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w: %w", errs.ErrPersistence, err)
	}
	defer rows.Close()

	plans := []Plan{}
	for rows.Next() {
		var p Plan
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.GoalID, &p.WeekNumber, &p.StartDate, &p.Version, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan plan: %w: %w", errs.ErrPersistence, err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: %w: %w", errs.ErrPersistence, err)
	}

	if len(plans) == 0 {
		return plans, nil
	}
	if err := r.loadDays(ctx, plans); err != nil {
		return nil, err
	}
	return plans, nil
}

type dayKey struct {
	planID uuid.UUID
	day    int
}

// loadDays fills in the daily plans and their items, two queries for all plans.
func (r *Repo) loadDays(ctx context.Context, plans []Plan) error {
	ids := make([]uuid.UUID, 0, len(plans))
	byID := make(map[uuid.UUID]*Plan, len(plans))
	for i := range plans {
		ids = append(ids, plans[i].ID)
		byID[plans[i].ID] = &plans[i]
		plans[i].DailyPlans = make([]DailyPlan, 0, DaysPerWeek)
	}

	dayRows, err := r.pool.Query(
		ctx,
		`SELECT plan_id, day, calories, protein, carbs, fats, is_rest_day FROM plan_day WHERE plan_id = ANY($1) ORDER BY plan_id, day`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("load plan days: %w: %w", errs.ErrPersistence, err)
	}
	for dayRows.Next() {
		var planID uuid.UUID
		d := DailyPlan{Exercises: []PlanExercise{}, Meals: []PlanMeal{}}
		if err := dayRows.Scan(
			&planID, &d.Day, &d.Calories, &d.Macros.Protein, &d.Macros.Carbs, &d.Macros.Fats, &d.IsRestDay,
		); err != nil {
			dayRows.Close()
			return fmt.Errorf("scan plan day: %w: %w", errs.ErrPersistence, err)
		}
		if p, ok := byID[planID]; ok {
			p.DailyPlans = append(p.DailyPlans, d)
		}
	}
	dayRows.Close()
	if err := dayRows.Err(); err != nil {
		return fmt.Errorf("load plan days: %w: %w", errs.ErrPersistence, err)
	}

	// all days are in place, pointers into DailyPlans stay valid from here on
	days := make(map[dayKey]*DailyPlan, len(plans)*DaysPerWeek)
	for _, p := range byID {
		for i := range p.DailyPlans {
			days[dayKey{planID: p.ID, day: p.DailyPlans[i].Day}] = &p.DailyPlans[i]
		}
	}

	itemRows, err := r.pool.Query(
		ctx,
		`SELECT `+joinColumns(itemColumns)+` FROM plan_item WHERE plan_id = ANY($1) ORDER BY plan_id, day, kind, position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("load plan items: %w: %w", errs.ErrPersistence, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			id, planID                     uuid.UUID
			day, position                  int
			kind                           Kind
			name, image                    string
			sets, reps, duration           int
			calories, protein, carbs, fats int
			completed                      bool
		)
		if err := itemRows.Scan(
			&id, &planID, &day, &kind, &position, &name, &sets, &reps, &duration,
			&calories, &protein, &carbs, &fats, &image, &completed,
		); err != nil {
			return fmt.Errorf("scan plan item: %w: %w", errs.ErrPersistence, err)
		}

		d, ok := days[dayKey{planID: planID, day: day}]
		if !ok {
			continue
		}
		switch kind {
		case KindExercise:
			d.Exercises = append(d.Exercises, PlanExercise{
				ID: id, Name: name, Sets: sets, Reps: reps, DurationMinutes: duration, Image: image, Done: completed,
			})
		case KindMeal:
			d.Meals = append(d.Meals, PlanMeal{
				ID: id, Name: name, Calories: calories, Protein: protein, Carbs: carbs, Fats: fats, Image: image, Taken: completed,
			})
		}
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("load plan items: %w: %w", errs.ErrPersistence, err)
	}

	return nil
}

// Delete removes the plan. Days and items go with it through the foreign keys.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.pool.Exec(ctx, `DELETE FROM plan WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w: %w", errs.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// MarkItemDone flags a single exercise or meal and bumps the plan version.
// Marking an already completed item succeeds.
func (r *Repo) MarkItemDone(ctx context.Context, planID uuid.UUID, day int, kind Kind, itemID uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.mark-item-done")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var notFound bool
	err = db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(
			ctx,
			`UPDATE plan_item SET completed = TRUE WHERE id = $1 AND plan_id = $2 AND day = $3 AND kind = $4`,
			itemID, planID, day, kind,
		)
		if err != nil {
			return fmt.Errorf("update plan item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			notFound = true
			return errs.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `UPDATE plan SET version = version + 1 WHERE id = $1`, planID); err != nil {
			return fmt.Errorf("bump plan version: %w", err)
		}
		return nil
	})
	if notFound {
		return fmt.Errorf("%s %s on day %d of plan %s: %w", kind, itemID, day, planID, errs.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("mark item done: %w: %w", errs.ErrPersistence, err)
	}
	return nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
