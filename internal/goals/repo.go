package goals

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/2beens/fitplan/internal/db"
	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
)

const goalColumns = `id, user_id, type, target_weight, daily_calories, protein, carbs, fats, pace, status, created_at, updated_at`

type Repo struct {
	pool db.Pool
}

func NewRepo(pool db.Pool) *Repo {
	return &Repo{
		pool: pool,
	}
}

func macroColumns(m *Macros) (protein, carbs, fats *int) {
	if m == nil {
		return nil, nil, nil
	}
	return &m.Protein, &m.Carbs, &m.Fats
}

func scanGoal(row pgx.Row) (*Goal, error) {
	var (
		g                    Goal
		protein, carbs, fats *int
	)
	if err := row.Scan(
		&g.ID, &g.UserID, &g.Type, &g.TargetWeight, &g.DailyCalories, &protein, &carbs, &fats,
		&g.Pace, &g.Status, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if protein != nil && carbs != nil && fats != nil {
		g.Macros = &Macros{Protein: *protein, Carbs: *carbs, Fats: *fats}
	}
	return &g, nil
}

func (r *Repo) Add(ctx context.Context, g Goal) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	protein, carbs, fats := macroColumns(g.Macros)
	if _, err := r.pool.Exec(
		ctx,
		`INSERT INTO goal (`+goalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		g.ID, g.UserID, g.Type, g.TargetWeight, g.DailyCalories, protein, carbs, fats,
		g.Pace, g.Status, g.CreatedAt, g.UpdatedAt,
	); err != nil {
		return fmt.Errorf("add goal: %w: %w", errs.ErrPersistence, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	g, err := scanGoal(r.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM goal WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w: %w", errs.ErrPersistence, err)
	}
	return g, nil
}

// ListByUser returns the user's goals, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+goalColumns+` FROM goal WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w: %w", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w: %w", errs.ErrPersistence, err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list goals: %w: %w", errs.ErrPersistence, err)
	}
	return goals, nil
}

func (r *Repo) Update(ctx context.Context, g Goal) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	protein, carbs, fats := macroColumns(g.Macros)
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE goal
		SET type = $2, target_weight = $3, daily_calories = $4, protein = $5, carbs = $6, fats = $7,
			pace = $8, status = $9, updated_at = $10
		WHERE id = $1`,
		g.ID, g.Type, g.TargetWeight, g.DailyCalories, protein, carbs, fats, g.Pace, g.Status, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w: %w", errs.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("goal %s: %w", g.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete removes the goal; its plans go with it through the plan.goal_id cascade.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.pool.Exec(ctx, `DELETE FROM goal WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w: %w", errs.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("goal %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
