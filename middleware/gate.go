package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ZAKARYA123J/teamhub/models"
)

// Decision is the outcome of an allow-list check.
type Decision int

const (
	Deny Decision = iota
	Proceed
)

func (d Decision) String() string {
	if d == Proceed {
		return "proceed"
	}
	return "deny"
}

// Decide grants access only when role is listed in allowed. There is no role
// hierarchy and an empty list denies everyone.
func Decide(role models.Role, allowed []models.Role) Decision {
	for _, r := range allowed {
		if r == role {
			return Proceed
		}
	}
	return Deny
}

// Authorize guards a route with an allow-list. It must run after
// Authenticate; a request without an identity is treated as unauthenticated.
func Authorize(logger *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := append([]models.Role(nil), roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}
			if Decide(id.Role, allowed) != Proceed {
				logger.InfoContext(r.Context(), "access denied",
					slog.Int("account_id", id.AccountID),
					slog.String("role", id.Role.String()),
					slog.String("path", r.URL.Path),
				)
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
