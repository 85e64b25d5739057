package models

import "time"

type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CoachID   int       `json:"coach_id"`
	MinAge    int       `json:"min_age"`
	MaxAge    int       `json:"max_age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Coach   *CoachProfile `json:"coach,omitempty"`
	Players []Player      `json:"players,omitempty"`
}

// AcceptsAge reports whether age falls within the group's bounds.
func (g *Group) AcceptsAge(age int) bool {
	return age >= g.MinAge && age <= g.MaxAge
}
