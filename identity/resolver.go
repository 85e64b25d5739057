// Package identity turns stored account rows into role-resolved accounts and
// back. It is the only code that knows which profile belongs to which role.
package identity

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ZAKARYA123J/teamhub/models"
)

// profilePriority orders profiles when a record carries more than one:
// COACH beats STAFF beats ADMIN (enumeration rank).
var profilePriority = []models.Role{models.RoleCoach, models.RoleStaff, models.RoleAdmin}

// Resolve picks the single authoritative profile of rec and returns the
// resolved account. A role tag without its profile, or a profile that does
// not agree with the tag, is reported as ErrProfileMissing.
func Resolve(rec *models.AccountRecord, logger *slog.Logger) (*models.Account, error) {
	if rec == nil {
		return nil, errors.New("identity: nil account record")
	}
	if logger == nil {
		logger = slog.Default()
	}

	account := &models.Account{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		Role:         rec.Role,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}

	populated := populatedProfiles(rec)
	if len(populated) > 1 {
		roles := make([]string, len(populated))
		for i, p := range populated {
			roles[i] = p.Role().String()
		}
		logger.Error("inconsistent account profiles",
			slog.Int("account_id", rec.ID),
			slog.String("role_tag", rec.Role.String()),
			slog.Any("populated", roles),
			slog.String("picked", populated[0].Role().String()),
		)
	}

	if len(populated) == 0 {
		if rec.Role == models.RoleUser {
			return account, nil
		}
		return nil, fmt.Errorf("%w: account %d has role %s but no profile", ErrProfileMissing, rec.ID, rec.Role)
	}

	picked := populated[0]
	if picked.Role() != rec.Role {
		return nil, fmt.Errorf("%w: account %d has role %s but resolves to a %s profile",
			ErrProfileMissing, rec.ID, rec.Role, picked.Role())
	}

	account.Profile = picked
	return account, nil
}

func populatedProfiles(rec *models.AccountRecord) []models.Profile {
	out := make([]models.Profile, 0, 1)
	for _, role := range profilePriority {
		switch role {
		case models.RoleCoach:
			if rec.Coach != nil {
				out = append(out, rec.Coach)
			}
		case models.RoleStaff:
			if rec.Staff != nil {
				out = append(out, rec.Staff)
			}
		case models.RoleAdmin:
			if rec.Admin != nil {
				out = append(out, rec.Admin)
			}
		}
	}
	return out
}

// ToRecord is the inverse of Resolve, used when writing an account back.
func ToRecord(a *models.Account) *models.AccountRecord {
	rec := &models.AccountRecord{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	switch p := a.Profile.(type) {
	case *models.CoachProfile:
		rec.Coach = p
	case *models.StaffProfile:
		rec.Staff = p
	case *models.AdminProfile:
		rec.Admin = p
	}
	return rec
}

// FormatCredentialSafeView flattens an account and its profile into the
// outward representation. Every response that returns an account goes
// through here; AccountView has no credential field.
func FormatCredentialSafeView(a *models.Account) models.AccountView {
	view := models.AccountView{
		ID:        a.ID,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}

	switch p := a.Profile.(type) {
	case *models.CoachProfile:
		view.ProfileID = p.ID
		view.Name = p.Name
		view.Specialization = p.Specialization
		view.Experience = p.Experience
		view.Availability = p.Availability
		view.ContactInfo = p.ContactInfo
	case *models.StaffProfile:
		view.ProfileID = p.ID
		view.Name = p.Name
		view.Availability = p.Availability
		view.Nationality = p.Nationality
		view.Age = p.Age
		view.ContactInfo = p.ContactInfo
	case *models.AdminProfile:
		view.ProfileID = p.ID
		view.Name = p.Name
	}

	return view
}

// FormatCredentialSafeViews applies FormatCredentialSafeView to a slice.
func FormatCredentialSafeViews(accounts []*models.Account) []models.AccountView {
	views := make([]models.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, FormatCredentialSafeView(a))
	}
	return views
}
