package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ZAKARYA123J/teamhub/services"
)

type GroupHandler struct {
	groupService services.GroupService
	responder
}

func NewGroupHandler(groupService services.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, responder: newResponder(logger)}
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var input services.GroupInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, jsonResponse{"group": group})
}

func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.ListGroups(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"groups": groups})
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.GetGroup(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"group": group})
}

func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateGroupInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.UpdateGroup(r.Context(), id, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"group": group})
}

func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.groupService.DeleteGroup(r.Context(), id); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) ListGroupPlayers(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	players, err := h.groupService.ListGroupPlayers(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"players": players})
}

func (h *GroupHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	groupID, playerID, ok := h.groupAndPlayer(w, r)
	if !ok {
		return
	}

	player, err := h.groupService.AddPlayer(r.Context(), groupID, playerID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, jsonResponse{"player": player})
}

func (h *GroupHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	groupID, playerID, ok := h.groupAndPlayer(w, r)
	if !ok {
		return
	}

	if err := h.groupService.RemovePlayer(r.Context(), groupID, playerID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) groupAndPlayer(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	groupID, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return 0, 0, false
	}
	playerID, err := getIDFromURL(r, "playerId")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return groupID, playerID, true
}
