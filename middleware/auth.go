package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ZAKARYA123J/teamhub/identity"
	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/services"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*services.AccountClaims, error)
}

// AccountLoader loads and resolves the account a token points at.
type AccountLoader interface {
	Me(ctx context.Context, accountID int) (*models.Account, error)
}

type Authenticator struct {
	tokens   TokenVerifier
	accounts AccountLoader
	logger   *slog.Logger
}

func NewAuthenticator(tokens TokenVerifier, accounts AccountLoader, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{tokens: tokens, accounts: accounts, logger: logger}
}

// Authenticate reads the token from the Authorization header.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return a.middleware(false)(next)
}

// AuthenticateWebSocket also accepts ?token=, since browsers cannot set
// headers on a websocket handshake.
func (a *Authenticator) AuthenticateWebSocket(next http.Handler) http.Handler {
	return a.middleware(true)(next)
}

func (a *Authenticator) middleware(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r, allowQuery)
			if !ok {
				a.logger.DebugContext(r.Context(), "missing or malformed authorization header")
				unauthenticated(w)
				return
			}

			id, err := a.identify(r.Context(), token)
			if err != nil {
				a.logFailure(r, err)
				unauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func (a *Authenticator) identify(ctx context.Context, token string) (Identity, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}

	// Роль берём из БД, а не из токена.
	account, err := a.accounts.Me(ctx, claims.UserID)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Account:   account,
		View:      identity.FormatCredentialSafeView(account),
	}, nil
}

func (a *Authenticator) logFailure(r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, identity.ErrProfileMissing):
		a.logger.ErrorContext(ctx, "authenticated account has no usable profile",
			slog.Bool("alert", true),
			slog.Any("error", err),
		)
	case errors.Is(err, services.ErrInvalidToken):
		a.logger.DebugContext(ctx, "token rejected", slog.Any("error", err))
	case errors.Is(err, services.ErrAccountNotFound):
		a.logger.WarnContext(ctx, "token refers to a missing account", slog.Any("error", err))
	default:
		a.logger.ErrorContext(ctx, "authentication failed", slog.Any("error", err))
	}
}

func tokenFromRequest(r *http.Request, allowQuery bool) (string, bool) {
	header := r.Header.Get("Authorization")
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
	if allowQuery {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, true
		}
	}
	return "", false
}
