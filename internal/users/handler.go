package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid/v5"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/internal/auth"
	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/pkg"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=users_test

type usersService interface {
	Register(ctx context.Context, newUser NewUser) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	Logout(ctx context.Context, token string) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*User, error)
}

type AuthResponse struct {
	Token string `json:"token"`
	User  View   `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Handler struct {
	service usersService
}

func NewHandler(service usersService) *Handler {
	return &Handler{
		service: service,
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Tracef("decode request body: %s", err)
		return fmt.Errorf("%w: malformed request body", errs.ErrValidation)
	}
	return nil
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var newUser NewUser
	if err := decodeBody(r, &newUser); err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	token, user, err := handler.service.Register(ctx, newUser)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, AuthResponse{Token: token, User: user.View()}, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	token, user, err := handler.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, AuthResponse{Token: token, User: user.View()}, http.StatusOK)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	loggedOut, err := handler.service.Logout(ctx, auth.TokenFromRequest(r))
	if err != nil {
		log.Errorf("logout: %s", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		log.Debugln("logout: session already gone")
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.profile")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	user, err := handler.service.Get(ctx, userID)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, user.View(), http.StatusOK)
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.update-profile")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	var update ProfileUpdate
	if err := decodeBody(r, &update); err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	user, err := handler.service.UpdateProfile(ctx, userID, update)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, user.View(), http.StatusOK)
}
