// Package errs holds the sentinel errors shared by services and repositories,
// and their mapping onto HTTP responses.
package errs

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/pkg"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrValidation         = errors.New("validation")
	ErrNoEligibleContent  = errors.New("no eligible content")
	ErrPersistence        = errors.New("persistence")
	ErrVersionConflict    = errors.New("version conflict")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type kindStatus struct {
	err    error
	kind   string
	status int
}

// order matters: a persistence error wrapping a not-found one is reported as not found
var kinds = []kindStatus{
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrNotAuthorized, "not_authorized", http.StatusForbidden},
	{ErrValidation, "validation", http.StatusBadRequest},
	{ErrNoEligibleContent, "no_eligible_content", http.StatusBadRequest},
	{ErrAlreadyExists, "already_exists", http.StatusBadRequest},
	{ErrInvalidCredentials, "invalid_credentials", http.StatusBadRequest},
	{ErrVersionConflict, "version_conflict", http.StatusConflict},
	{ErrPersistence, "persistence", http.StatusInternalServerError},
}

func lookup(err error) kindStatus {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k
		}
	}
	return kindStatus{kind: "internal", status: http.StatusInternalServerError}
}

// Kind returns a stable, machine readable name for the error.
func Kind(err error) string {
	return lookup(err).kind
}

// HTTPStatus maps the error onto a response status code.
func HTTPStatus(err error) int {
	return lookup(err).status
}

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// WriteHTTP writes err as a JSON error response. Internal failures are logged
// and replaced with a generic message.
func WriteHTTP(w http.ResponseWriter, err error) {
	k := lookup(err)
	message := err.Error()
	if k.status >= http.StatusInternalServerError {
		log.Errorf("internal error: %s", err)
		message = "internal error"
	}
	pkg.WriteJSON(w, ErrorResponse{Kind: k.kind, Message: message}, k.status)
}
