package progress

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"

	"github.com/2beens/fitplan/internal/auth"
	"github.com/2beens/fitplan/internal/errs"
	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/pkg"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=progress_test

type progressService interface {
	Progress(ctx context.Context, userID uuid.UUID) ([]Day, error)
	Streak(ctx context.Context, userID uuid.UUID) (Streaks, error)
	Calendar(ctx context.Context, userID uuid.UUID, year int) (*CalendarResponse, error)
}

type Handler struct {
	service progressService
}

func NewHandler(service progressService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/progress", handler.HandleProgress).Methods("GET", "OPTIONS").Name("progress")
	r.HandleFunc("/progress/calendar", handler.HandleCalendar).Methods("GET", "OPTIONS").Name("progress-calendar")
	r.HandleFunc("/progress/streak", handler.HandleStreak).Methods("GET", "OPTIONS").Name("progress-streak")
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.days")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	days, err := handler.service.Progress(ctx, userID)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, days, http.StatusOK)
}

func (handler *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.calendar")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	year := 0
	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil || parsed < 1970 || parsed > 9999 {
			errs.WriteHTTP(w, fmt.Errorf("%w: invalid year %q", errs.ErrValidation, rawYear))
			return
		}
		year = parsed
	}

	calendar, err := handler.service.Calendar(ctx, userID, year)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, calendar, http.StatusOK)
}

func (handler *Handler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.streak")
	defer span.End()

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		errs.WriteHTTP(w, errs.ErrNotAuthorized)
		return
	}

	streaks, err := handler.service.Streak(ctx, userID)
	if err != nil {
		errs.WriteHTTP(w, err)
		return
	}

	pkg.WriteJSON(w, streaks, http.StatusOK)
}
