package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ZAKARYA123J/teamhub/middleware"
	"github.com/ZAKARYA123J/teamhub/services"
)

// CoachHandler serves the read-only views for coaches and staff.
type CoachHandler struct {
	groupService services.GroupService
	responder
}

func NewCoachHandler(groupService services.GroupService, logger *slog.Logger) *CoachHandler {
	return &CoachHandler{groupService: groupService, responder: newResponder(logger)}
}

func (h *CoachHandler) MyGroups(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.message(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	groups, err := h.groupService.ListCoachGroups(r.Context(), accountID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"groups": groups})
}

func (h *CoachHandler) Roster(w http.ResponseWriter, r *http.Request) {
	players, err := h.groupService.ListRoster(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"players": players})
}
