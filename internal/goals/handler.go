package goals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/internal/auth"
	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/pkg"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=goals_test

type goalsService interface {
	Create(ctx context.Context, userID uuid.UUID, newGoal NewGoal) (*View, error)
	Get(ctx context.Context, userID, goalID uuid.UUID) (*View, error)
	List(ctx context.Context, userID uuid.UUID) ([]View, error)
	Update(ctx context.Context, userID, goalID uuid.UUID, update Update) (*View, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
}

type DeleteGoalResponse struct {
	Message   string    `json:"message"`
	DeletedID uuid.UUID `json:"deletedId"`
}

type Handler struct {
	service goalsService
}

func NewHandler(service goalsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/goals", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-goal")
	r.HandleFunc("/goals", handler.HandleList).Methods("GET", "OPTIONS").Name("list-goals")
	r.HandleFunc("/goals/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-goal")
	r.HandleFunc("/goals/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-goal")
	r.HandleFunc("/goals/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-goal")
}

func userAndGoalID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, ok := auth.UserUUIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, uuid.Nil, errs.ErrNotAuthorized
	}
	goalID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid goal id", errs.ErrValidation)
	}
	return userID, goalID, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Tracef("decode goal request: %s", err)
		return fmt.Errorf("%w: malformed request body", errs.ErrValidation)
	}
	return nil
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.create")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	var newGoal NewGoal
	if err := decodeBody(r, &newGoal); err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	goal, err := handler.service.Create(ctx, userID, newGoal)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, goal, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	goals, err := handler.service.List(ctx, userID)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, goals, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.get")
	defer span.End()

	userID, goalID, err := userAndGoalID(r)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	goal, err := handler.service.Get(ctx, userID, goalID)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, goal, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update")
	defer span.End()

	userID, goalID, err := userAndGoalID(r)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	var update Update
	if err := decodeBody(r, &update); err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	goal, err := handler.service.Update(ctx, userID, goalID, update)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, goal, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.delete")
	defer span.End()

	userID, goalID, err := userAndGoalID(r)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	if err := handler.service.Delete(ctx, userID, goalID); err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, DeleteGoalResponse{
		Message:   "Goal and related plans deleted",
		DeletedID: goalID,
	}, http.StatusOK)
}
