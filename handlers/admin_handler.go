package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ZAKARYA123J/teamhub/middleware"
	"github.com/ZAKARYA123J/teamhub/services"
)

type AdminHandler struct {
	adminService services.AdminService
	responder
}

func NewAdminHandler(adminService services.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, responder: newResponder(logger)}
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.adminService.ListAccounts(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"users": accounts})
}

func (h *AdminHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	account, err := h.adminService.GetAccount(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"user": account})
}

func (h *AdminHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateAccountInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	account, err := h.adminService.UpdateAccount(r.Context(), id, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"user": account})
}

func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.message(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	if err := h.adminService.DeleteAccount(r.Context(), actorID, id); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.adminService.ListStaff(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"staff": staff})
}

func (h *AdminHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.adminService.ListCoaches(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"coaches": coaches})
}
