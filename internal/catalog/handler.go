package catalog

import (
	"net/http"

	"github.com/2beens/fitplan/internal/telemetry/tracing"
	"github.com/2beens/fitplan/pkg"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

func tagsFromQuery(r *http.Request) []string {
	var tags []string
	for _, t := range r.URL.Query()["tag"] {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (handler *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.exercises")
	defer span.End()

	pkg.WriteJSON(w, handler.catalog.Exercises(tagsFromQuery(r)...), http.StatusOK)
}

func (handler *Handler) HandleMeals(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.meals")
	defer span.End()

	pkg.WriteJSON(w, handler.catalog.Meals(tagsFromQuery(r)...), http.StatusOK)
}
