package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/internal/auth"
	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/pkg"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=plans_test

type plansService interface {
	Create(ctx context.Context, userID uuid.UUID, newPlan NewPlan) (*Plan, error)
	List(ctx context.Context, userID uuid.UUID) ([]Plan, error)
	Get(ctx context.Context, userID, planID uuid.UUID) (*Plan, error)
	Delete(ctx context.Context, userID, planID uuid.UUID) error
	MarkDone(ctx context.Context, userID, planID uuid.UUID, day int, kind Kind, itemID uuid.UUID) (*Plan, error)
}

type Handler struct {
	service plansService
}

func NewHandler(service plansService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/plan", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-plan")
	r.HandleFunc("/plan", handler.HandleList).Methods("GET", "OPTIONS").Name("list-plans")
	r.HandleFunc("/plan/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-plan")
	r.HandleFunc("/plan/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-plan")
	r.HandleFunc("/plan/{planId}/daily/{day}/type/{kind}/id/{itemId}", handler.HandleMarkDone).
		Methods("PATCH", "OPTIONS").Name("mark-plan-item-done")
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", errs.ErrValidation, name)
	}
	return id, nil
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.create")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	var newPlan NewPlan
	if err := json.NewDecoder(r.Body).Decode(&newPlan); err != nil {
		log.Tracef("decode plan request: %s", err)
		errs.WriteHTTP(w, fmt.Errorf("%w: malformed request body", errs.ErrValidation))
		return
	}
	if newPlan.GoalID == uuid.Nil {
		errs.WriteHTTP(w, fmt.Errorf("%w: goalId is required", errs.ErrValidation))
		return
	}

	plan, err := handler.service.Create(ctx, userID, newPlan)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, plan, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.list")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	plans, err := handler.service.List(ctx, userID)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, plans, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.get")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}
	planID, err := pathUUID(r, "id")
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	plan, err := handler.service.Get(ctx, userID, planID)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.delete")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}
	planID, err := pathUUID(r, "id")
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	if err := handler.service.Delete(ctx, userID, planID); err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]string{"message": "Plan deleted"}, http.StatusOK)
}

func (handler *Handler) HandleMarkDone(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.mark-done")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	vars := mux.Vars(r)
	planID, err := pathUUID(r, "planId")
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}
	itemID, err := pathUUID(r, "itemId")
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}
	day, err := strconv.Atoi(vars["day"])
	if err != nil {
		errs.WriteHTTP(w, fmt.Errorf("%w: invalid day", errs.ErrValidation))
		return
	}
	kind := Kind(vars["kind"])

	plan, err := handler.service.MarkDone(ctx, userID, planID, day, kind, itemID)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, MarkDoneResponse{
		Message: fmt.Sprintf("%s marked as done/taken", kind),
		Plan:    plan,
	}, http.StatusOK)
}
