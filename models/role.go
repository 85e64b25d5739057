package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleCoach Role = "COACH"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// AllRoles is ordered by enumeration rank.
var AllRoles = []Role{RoleUser, RoleCoach, RoleStaff, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCoach, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// RequiresProfile reports whether accounts with this role must own a profile row.
func (r Role) RequiresProfile() bool {
	switch r {
	case RoleCoach, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts the wire value case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
