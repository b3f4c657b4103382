package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofrs/uuid/v5"
)

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok && userID != ""
}

// UserUUIDFromContext is UserIDFromContext, parsed.
func UserUUIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.FromString(userID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// TokenFromRequest extracts the token from an "Authorization: Bearer <token>" header.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
