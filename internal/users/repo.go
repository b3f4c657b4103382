package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/2beens/fitplan/internal/db"
	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/pkg"
)

const userColumns = `id, name, email, password_hash, age, gender, height_cm, current_weight, activity_level, created_at, updated_at`

type Repo struct {
	pool db.Pool
}

func NewRepo(pool db.Pool) *Repo {
	return &Repo{
		pool: pool,
	}
}

func (r *Repo) Add(ctx context.Context, u User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO app_user (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Age, u.Gender, u.HeightCm, u.CurrentWeight,
		u.ActivityLevel, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return fmt.Errorf("%w: user already exists", errs.ErrAlreadyExists)
		}
		return fmt.Errorf("add user: %w: %w", errs.ErrPersistence, err)
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Age, &u.Gender, &u.HeightCm,
		&u.CurrentWeight, &u.ActivityLevel, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w: %w", errs.ErrPersistence, err)
	}
	return &u, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get-by-email")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE email = $1`, email))
}

func (r *Repo) Update(ctx context.Context, u User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE app_user
		SET name = $2, password_hash = $3, age = $4, gender = $5, height_cm = $6,
			current_weight = $7, activity_level = $8, updated_at = $9
		WHERE id = $1`,
		u.ID, u.Name, u.PasswordHash, u.Age, u.Gender, u.HeightCm, u.CurrentWeight, u.ActivityLevel, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w: %w", errs.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", errs.ErrNotFound)
	}
	return nil
}
