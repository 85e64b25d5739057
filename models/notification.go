package models

import "time"

const (
	NotificationGroupAssigned  = "GROUP_ASSIGNED"
	NotificationGroupUpdated   = "GROUP_UPDATED"
	NotificationGroupDeleted   = "GROUP_DELETED"
	NotificationPlayerJoined   = "PLAYER_JOINED_GROUP"
	NotificationPlayerLeft     = "PLAYER_LEFT_GROUP"
	NotificationAccountUpdated = "ACCOUNT_UPDATED"
	NotificationAdminBroadcast = "ADMIN_BROADCAST"
)

type Notification struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Message   string      `json:"message,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
