package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/metrics"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/pkg"
)

//go:generate mockgen -source=service.go -destination=service_mocks_test.go -package=users

type usersRepo interface {
	Add(ctx context.Context, u User) error
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u User) error
}

type sessionManager interface {
	Login(ctx context.Context, userID string, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type Service struct {
	repo           usersRepo
	sessions       sessionManager
	metricsManager *metrics.Manager

	now           func() time.Time
	newID         func() (uuid.UUID, error)
	hashPassword  func(password string) (string, error)
	checkPassword func(password, hash string) bool
}

func NewService(repo usersRepo, sessions sessionManager, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		sessions:       sessions,
		metricsManager: metricsManager,
		now:            time.Now,
		newID:          uuid.NewV4,
		hashPassword:   pkg.HashPassword,
		checkPassword:  pkg.CheckPasswordHash,
	}
}

func (s *Service) countLogin(outcome string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterLogins.WithLabelValues(outcome).Inc()
	}
}

// Register creates the account and logs the new user in.
func (s *Service) Register(ctx context.Context, newUser NewUser) (_ string, _ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	newUser.normalize()
	if err := newUser.Validate(); err != nil {
		return "", nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, newUser.Email); err == nil {
		return "", nil, fmt.Errorf("%w: user already exists", errs.ErrAlreadyExists)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return "", nil, err
	}

	passwordHash, err := s.hashPassword(newUser.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		return "", nil, fmt.Errorf("new user id: %w", err)
	}

	now := s.now().UTC()
	user := User{
		ID:            id,
		Name:          newUser.Name,
		Email:         newUser.Email,
		PasswordHash:  passwordHash,
		Age:           newUser.Age,
		Gender:        newUser.Gender,
		HeightCm:      newUser.HeightCm,
		CurrentWeight: newUser.CurrentWeight,
		ActivityLevel: newUser.ActivityLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Add(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.sessions.Login(ctx, user.ID.String(), now)
	if err != nil {
		return "", nil, fmt.Errorf("login after register: %w", err)
	}

	log.Debugf("user registered: %s", user.ID)
	return token, &user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (_ string, _ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		s.countLogin("invalid")
		return "", nil, fmt.Errorf("%w: invalid credentials", errs.ErrInvalidCredentials)
	}
	if err != nil {
		s.countLogin("error")
		return "", nil, err
	}

	if !s.checkPassword(password, user.PasswordHash) {
		s.countLogin("invalid")
		return "", nil, fmt.Errorf("%w: invalid credentials", errs.ErrInvalidCredentials)
	}

	token, err := s.sessions.Login(ctx, user.ID.String(), s.now())
	if err != nil {
		s.countLogin("error")
		return "", nil, fmt.Errorf("login: %w", err)
	}

	s.countLogin("ok")
	return token, user, nil
}

func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	return s.sessions.Logout(ctx, token)
}

// Get returns the user behind id; it backs both the profile endpoint and
// the goal derivations that need the owner's weight.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.update-profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := update.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	update.apply(user)
	if update.Password != nil {
		passwordHash, err := s.hashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = passwordHash
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}
