package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ZAKARYA123J/teamhub/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

var ErrNoIdentity = errors.New("no authenticated identity in context")

// Identity is the caller as resolved from the store, not from token claims.
type Identity struct {
	AccountID int
	Email     string
	Role      models.Role
	Account   *models.Account
	View      models.AccountView
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return 0, ErrNoIdentity
	}
	return id.AccountID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.Role, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", ErrNoIdentity
	}
	return id.Role, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeError(w, http.StatusUnauthorized, "unauthenticated")
}

func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "forbidden")
}
