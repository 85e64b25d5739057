package models

import "time"

// Profile is the role-specific part of an account. Exactly one concrete type
// exists per role that needs a profile; USER accounts carry no profile.
type Profile interface {
	Role() Role
	DisplayName() string
	profile()
}

type CoachProfile struct {
	ID             int    `json:"id"`
	AccountID      int    `json:"account_id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Experience     string `json:"experience,omitempty"`
	Availability   *bool  `json:"availability,omitempty"`
	ContactInfo    string `json:"contact_info,omitempty"`
}

type StaffProfile struct {
	ID           int    `json:"id"`
	AccountID    int    `json:"account_id"`
	Name         string `json:"name"`
	Availability *bool  `json:"availability"`
	Nationality  string `json:"nationality,omitempty"`
	Age          *int   `json:"age,omitempty"`
	ContactInfo  string `json:"contact_info,omitempty"`
}

type AdminProfile struct {
	ID        int    `json:"id"`
	AccountID int    `json:"account_id"`
	Name      string `json:"name"`
}

func (*CoachProfile) Role() Role { return RoleCoach }
func (*StaffProfile) Role() Role { return RoleStaff }
func (*AdminProfile) Role() Role { return RoleAdmin }

func (p *CoachProfile) DisplayName() string { return p.Name }
func (p *StaffProfile) DisplayName() string { return p.Name }
func (p *AdminProfile) DisplayName() string { return p.Name }

func (*CoachProfile) profile() {}
func (*StaffProfile) profile() {}
func (*AdminProfile) profile() {}

// Account is the resolved identity: Profile is nil iff Role is RoleUser.
type Account struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountRecord is an account row as loaded from the store, with every
// optional profile association left nullable. Only the identity package
// turns it into an Account.
type AccountRecord struct {
	ID           int
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Coach *CoachProfile
	Staff *StaffProfile
	Admin *AdminProfile
}

// AccountView is the merged, credential-free account representation.
type AccountView struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProfileID      int    `json:"profile_id,omitempty"`
	Name           string `json:"name,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Experience     string `json:"experience,omitempty"`
	Availability   *bool  `json:"availability,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	Age            *int   `json:"age,omitempty"`
	ContactInfo    string `json:"contact_info,omitempty"`

	GroupCount *int `json:"group_count,omitempty"`
}
