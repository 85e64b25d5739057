package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ZAKARYA123J/teamhub/identity"
	"github.com/ZAKARYA123J/teamhub/middleware"
	"github.com/ZAKARYA123J/teamhub/services"
)

type AuthHandler struct {
	authService services.AuthService
	responder
}

func NewAuthHandler(authService services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, responder: newResponder(logger)}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		h.badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	result, err := h.authService.Register(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, jsonResponse{
		"user":  identity.FormatCredentialSafeView(result.Account),
		"token": result.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		h.badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, jsonResponse{
		"user":  identity.FormatCredentialSafeView(result.Account),
		"token": result.Token,
	})
}

// Me отдаёт аккаунт, уже разрешённый middleware аутентификации.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.message(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"user": id.View})
}
