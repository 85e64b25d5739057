package identity

import (
	"fmt"
	"strings"

	"github.com/ZAKARYA123J/teamhub/models"
)

// RegistrationFields is the role-specific part of a registration payload.
type RegistrationFields struct {
	Name           string
	Specialization string
	Experience     string
	Availability   *bool
	Nationality    string
	Age            *int
	ContactInfo    string
}

// BuildProfileForRegistration validates fields for role and returns the
// profile to create with the account. USER takes no profile fields and
// yields a nil profile.
func BuildProfileForRegistration(role models.Role, in RegistrationFields) (models.Profile, error) {
	fe := &RoleFieldsError{Role: role}
	name := strings.TrimSpace(in.Name)

	var profile models.Profile
	switch role {
	case models.RoleCoach:
		spec := strings.TrimSpace(in.Specialization)
		if name == "" {
			fe.Missing = append(fe.Missing, "name")
		}
		if spec == "" {
			fe.Missing = append(fe.Missing, "specialization")
		}
		if in.Nationality != "" {
			fe.Unsupported = append(fe.Unsupported, "nationality")
		}
		if in.Age != nil {
			fe.Unsupported = append(fe.Unsupported, "age")
		}
		profile = &models.CoachProfile{
			Name:           name,
			Specialization: spec,
			Experience:     strings.TrimSpace(in.Experience),
			Availability:   in.Availability,
			ContactInfo:    strings.TrimSpace(in.ContactInfo),
		}

	case models.RoleStaff:
		if name == "" {
			fe.Missing = append(fe.Missing, "name")
		}
		if in.Availability == nil {
			fe.Missing = append(fe.Missing, "availability")
		}
		if in.Specialization != "" {
			fe.Unsupported = append(fe.Unsupported, "specialization")
		}
		if in.Experience != "" {
			fe.Unsupported = append(fe.Unsupported, "experience")
		}
		if in.Age != nil && *in.Age < 0 {
			fe.Invalid = append(fe.Invalid, "age")
		}
		profile = &models.StaffProfile{
			Name:         name,
			Availability: in.Availability,
			Nationality:  strings.TrimSpace(in.Nationality),
			Age:          in.Age,
			ContactInfo:  strings.TrimSpace(in.ContactInfo),
		}

	case models.RoleAdmin:
		if name == "" {
			fe.Missing = append(fe.Missing, "name")
		}
		fe.Unsupported = append(fe.Unsupported, unsupportedForAdmin(in)...)
		profile = &models.AdminProfile{Name: name}

	case models.RoleUser:
		if in != (RegistrationFields{}) {
			fe.Unsupported = append(fe.Unsupported, "profile fields")
		}

	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRoleFields, role)
	}

	if !fe.empty() {
		return nil, fe
	}
	return profile, nil
}

func unsupportedForAdmin(in RegistrationFields) []string {
	var out []string
	if in.Specialization != "" {
		out = append(out, "specialization")
	}
	if in.Experience != "" {
		out = append(out, "experience")
	}
	if in.Availability != nil {
		out = append(out, "availability")
	}
	if in.Nationality != "" {
		out = append(out, "nationality")
	}
	if in.Age != nil {
		out = append(out, "age")
	}
	if in.ContactInfo != "" {
		out = append(out, "contact_info")
	}
	return out
}

// ProfileUpdate carries optional profile changes; nil means unchanged.
type ProfileUpdate struct {
	Name           *string
	Specialization *string
	Experience     *string
	Availability   *bool
	Nationality    *string
	Age            *int
	ContactInfo    *string
}

// Empty reports whether no field is set.
func (u ProfileUpdate) Empty() bool {
	return u == ProfileUpdate{}
}

// ApplyProfileUpdate returns a copy of p with the fields of in applied.
// Fields that do not belong to p's role are rejected. p must be the profile
// of role (nil for USER); any other pair is ErrProfileMissing.
func ApplyProfileUpdate(role models.Role, p models.Profile, in ProfileUpdate) (models.Profile, error) {
	if p == nil && role.RequiresProfile() {
		return nil, fmt.Errorf("%w: role %s has no profile to update", ErrProfileMissing, role)
	}
	if p != nil && p.Role() != role {
		return nil, fmt.Errorf("%w: role %s does not own a %s profile", ErrProfileMissing, role, p.Role())
	}

	fe := &RoleFieldsError{Role: role}

	switch cur := p.(type) {
	case *models.CoachProfile:
		next := *cur
		if in.Name != nil {
			next.Name = requireNonEmpty(fe, "name", *in.Name)
		}
		if in.Specialization != nil {
			next.Specialization = requireNonEmpty(fe, "specialization", *in.Specialization)
		}
		if in.Experience != nil {
			next.Experience = strings.TrimSpace(*in.Experience)
		}
		if in.Availability != nil {
			next.Availability = in.Availability
		}
		if in.ContactInfo != nil {
			next.ContactInfo = strings.TrimSpace(*in.ContactInfo)
		}
		if in.Nationality != nil {
			fe.Unsupported = append(fe.Unsupported, "nationality")
		}
		if in.Age != nil {
			fe.Unsupported = append(fe.Unsupported, "age")
		}
		if !fe.empty() {
			return nil, fe
		}
		return &next, nil

	case *models.StaffProfile:
		next := *cur
		if in.Name != nil {
			next.Name = requireNonEmpty(fe, "name", *in.Name)
		}
		if in.Availability != nil {
			next.Availability = in.Availability
		}
		if in.Nationality != nil {
			next.Nationality = strings.TrimSpace(*in.Nationality)
		}
		if in.Age != nil {
			if *in.Age < 0 {
				fe.Invalid = append(fe.Invalid, "age")
			}
			next.Age = in.Age
		}
		if in.ContactInfo != nil {
			next.ContactInfo = strings.TrimSpace(*in.ContactInfo)
		}
		if in.Specialization != nil {
			fe.Unsupported = append(fe.Unsupported, "specialization")
		}
		if in.Experience != nil {
			fe.Unsupported = append(fe.Unsupported, "experience")
		}
		if !fe.empty() {
			return nil, fe
		}
		return &next, nil

	case *models.AdminProfile:
		next := *cur
		if in.Name != nil {
			next.Name = requireNonEmpty(fe, "name", *in.Name)
		}
		rest := in
		rest.Name = nil
		if !rest.Empty() {
			fe.Unsupported = append(fe.Unsupported, "profile fields other than name")
		}
		if !fe.empty() {
			return nil, fe
		}
		return &next, nil

	case nil:
		if !in.Empty() {
			fe.Unsupported = append(fe.Unsupported, "profile fields")
			return nil, fe
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unknown profile type %T", ErrInvalidRoleFields, p)
	}
}

func requireNonEmpty(fe *RoleFieldsError, field, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		fe.Invalid = append(fe.Invalid, field)
	}
	return v
}
