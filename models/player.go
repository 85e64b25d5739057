package models

import "time"

type Player struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Nationality string    `json:"nationality,omitempty"`
	Age         int       `json:"age"`
	ContactInfo string    `json:"contact_info,omitempty"`
	Position    string    `json:"position,omitempty"`
	GroupID     *int      `json:"group_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	PhotoKey *string `json:"-"`
	PhotoURL *string `json:"photo_url,omitempty"`
}
