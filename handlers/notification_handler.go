package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ZAKARYA123J/teamhub/middleware"
	"github.com/ZAKARYA123J/teamhub/notifications"
	"github.com/ZAKARYA123J/teamhub/services"
	"github.com/gorilla/websocket"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *notifications.Hub
	upgrader      websocket.Upgrader
	responder
}

// NewNotificationHandler builds the broadcast and websocket endpoints.
// checkOrigin may be nil to accept any origin.
func NewNotificationHandler(
	notificationService *services.NotificationService,
	hub *notifications.Hub,
	checkOrigin func(r *http.Request) bool,
	logger *slog.Logger,
) *NotificationHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &NotificationHandler{
		notifications: notificationService,
		hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		responder: newResponder(logger),
	}
}

func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var input services.BroadcastInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	notification, err := h.notifications.Broadcast(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusAccepted, jsonResponse{"notification": notification})
}

// ServeWs подключает клиента к комнатам его аккаунта и роли.
func (h *NotificationHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.message(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.Int("account_id", id.AccountID),
			slog.Any("error", err),
		)
		return
	}

	h.hub.Serve(conn, notifications.AccountRoom(id.AccountID), notifications.RoleRoom(id.Role))
	h.logger.InfoContext(r.Context(), "websocket client connected",
		slog.Int("account_id", id.AccountID),
		slog.String("role", id.Role.String()),
	)
}
