package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZAKARYA123J/teamhub/models"
)

var (
	// ErrProfileMissing is a data-integrity fault: the account's role tag has
	// no matching profile row. It must be alerted on, never shown to callers.
	ErrProfileMissing = errors.New("account profile missing")

	// ErrInvalidRoleFields means a payload lacks, or carries, fields that do
	// not fit the chosen role.
	ErrInvalidRoleFields = errors.New("invalid fields for role")
)

// RoleFieldsError lists what is wrong with a role-specific payload.
type RoleFieldsError struct {
	Role        models.Role
	Missing     []string
	Unsupported []string
	Invalid     []string
}

func (e *RoleFieldsError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unsupported) > 0 {
		parts = append(parts, "unsupported "+strings.Join(e.Unsupported, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("invalid fields for role %s: %s", e.Role, strings.Join(parts, "; "))
}

func (e *RoleFieldsError) Is(target error) bool {
	return target == ErrInvalidRoleFields
}

// Fields returns the offending field names keyed by problem, for 400 bodies.
func (e *RoleFieldsError) Fields() map[string]string {
	out := make(map[string]string, len(e.Missing)+len(e.Unsupported)+len(e.Invalid))
	for _, f := range e.Missing {
		out[f] = fmt.Sprintf("required for role %s", e.Role)
	}
	for _, f := range e.Unsupported {
		out[f] = fmt.Sprintf("not supported for role %s", e.Role)
	}
	for _, f := range e.Invalid {
		out[f] = "invalid value"
	}
	return out
}

func (e *RoleFieldsError) empty() bool {
	return len(e.Missing) == 0 && len(e.Unsupported) == 0 && len(e.Invalid) == 0
}
