package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/notifications"
	"github.com/google/uuid"
)

// Publisher delivers a message to every client subscribed to room.
type Publisher interface {
	Publish(room string, message interface{})
}

type BroadcastInput struct {
	Role      string `json:"role"`
	AccountID *int   `json:"account_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// Disconnector is implemented by publishers that can drop live subscribers.
type Disconnector interface {
	Disconnect(room string) int
}

// NotificationService builds notifications and hands them to the hub. A nil
// publisher turns every call into a no-op.
type NotificationService struct {
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewNotificationService(publisher Publisher, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{publisher: publisher, logger: logger, now: time.Now}
}

func (s *NotificationService) build(kind, message string, payload interface{}) models.Notification {
	return models.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}
}

func (s *NotificationService) publish(room string, n models.Notification) {
	if s == nil || s.publisher == nil {
		return
	}
	s.publisher.Publish(room, n)
	s.logger.Debug("notification sent", slog.String("room", room), slog.String("type", n.Type), slog.String("id", n.ID))
}

func (s *NotificationService) NotifyAccount(accountID int, kind, message string, payload interface{}) {
	if s == nil {
		return
	}
	s.publish(notifications.AccountRoom(accountID), s.build(kind, message, payload))
}

func (s *NotificationService) NotifyRole(role models.Role, kind, message string, payload interface{}) {
	if s == nil {
		return
	}
	s.publish(notifications.RoleRoom(role), s.build(kind, message, payload))
}

// DisconnectAccount closes the live connections of accountID, which also
// removes them from their role rooms.
func (s *NotificationService) DisconnectAccount(accountID int) {
	if s == nil || s.publisher == nil {
		return
	}
	d, ok := s.publisher.(Disconnector)
	if !ok {
		return
	}
	if n := d.Disconnect(notifications.AccountRoom(accountID)); n > 0 {
		s.logger.Info("account connections closed", slog.Int("account_id", accountID), slog.Int("connections", n))
	}
}

// Broadcast sends an admin message to one account, one role, or, when
// neither is given, every role room.
func (s *NotificationService) Broadcast(ctx context.Context, input BroadcastInput) (*models.Notification, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidationFailed)
	}
	if input.AccountID != nil && input.Role != "" {
		return nil, fmt.Errorf("%w: role and account_id are mutually exclusive", ErrValidationFailed)
	}

	kind := strings.TrimSpace(input.Type)
	if kind == "" {
		kind = models.NotificationAdminBroadcast
	}
	n := s.build(kind, message, nil)

	switch {
	case input.AccountID != nil:
		if *input.AccountID <= 0 {
			return nil, fmt.Errorf("%w: account_id must be positive", ErrValidationFailed)
		}
		s.publish(notifications.AccountRoom(*input.AccountID), n)
	case input.Role != "":
		role, err := models.ParseRole(input.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		s.publish(notifications.RoleRoom(role), n)
	default:
		for _, role := range models.AllRoles {
			s.publish(notifications.RoleRoom(role), n)
		}
	}

	s.logger.InfoContext(ctx, "admin broadcast sent", slog.String("type", kind), slog.String("id", n.ID))
	return &n, nil
}
