package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ZAKARYA123J/teamhub/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func baseRecord(role models.Role) *models.AccountRecord {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.AccountRecord{
		ID:           7,
		Email:        "ana@example.com",
		PasswordHash: "$2a$10$secret-hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestResolveEachRole(t *testing.T) {
	coach := baseRecord(models.RoleCoach)
	coach.Coach = &models.CoachProfile{ID: 1, AccountID: 7, Name: "Ana", Specialization: "fitness"}
	staff := baseRecord(models.RoleStaff)
	staff.Staff = &models.StaffProfile{ID: 2, AccountID: 7, Name: "Bo", Availability: boolPtr(true), Age: intPtr(31)}
	admin := baseRecord(models.RoleAdmin)
	admin.Admin = &models.AdminProfile{ID: 3, AccountID: 7, Name: "Cy"}
	user := baseRecord(models.RoleUser)

	tests := []struct {
		name     string
		rec      *models.AccountRecord
		wantRole models.Role
		wantName string
	}{
		{"coach", coach, models.RoleCoach, "Ana"},
		{"staff", staff, models.RoleStaff, "Bo"},
		{"admin", admin, models.RoleAdmin, "Cy"},
		{"user", user, models.RoleUser, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := Resolve(tt.rec, discardLogger())
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if acc.Role != tt.wantRole {
				t.Fatalf("role = %s, want %s", acc.Role, tt.wantRole)
			}
			view := FormatCredentialSafeView(acc)
			if view.Name != tt.wantName {
				t.Fatalf("name = %q, want %q", view.Name, tt.wantName)
			}
			if tt.wantRole == models.RoleUser && acc.Profile != nil {
				t.Fatalf("user account must not carry a profile")
			}
			if tt.wantRole != models.RoleUser && acc.Profile.Role() != tt.wantRole {
				t.Fatalf("profile role = %s, want %s", acc.Profile.Role(), tt.wantRole)
			}
		})
	}
}

func TestResolveProfileMissing(t *testing.T) {
	for _, role := range []models.Role{models.RoleCoach, models.RoleStaff, models.RoleAdmin, models.Role("GHOST")} {
		t.Run(role.String(), func(t *testing.T) {
			acc, err := Resolve(baseRecord(role), discardLogger())
			if !errors.Is(err, ErrProfileMissing) {
				t.Fatalf("expected ErrProfileMissing, got %v", err)
			}
			if acc != nil {
				t.Fatalf("expected no partial account, got %+v", acc)
			}
		})
	}
}

func TestResolveMultipleProfilesUsesPriorityAndLogs(t *testing.T) {
	rec := baseRecord(models.RoleCoach)
	rec.Coach = &models.CoachProfile{ID: 1, Name: "Ana", Specialization: "fitness"}
	rec.Staff = &models.StaffProfile{ID: 2, Name: "Ana", Availability: boolPtr(false)}
	rec.Admin = &models.AdminProfile{ID: 3, Name: "Ana"}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	acc, err := Resolve(rec, logger)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := acc.Profile.(*models.CoachProfile); !ok {
		t.Fatalf("expected coach profile to win, got %T", acc.Profile)
	}
	if !strings.Contains(buf.String(), "inconsistent account profiles") {
		t.Fatalf("expected inconsistency to be logged, got %q", buf.String())
	}
}

func TestResolveTagDisagreeingWithPickedProfileFailsClosed(t *testing.T) {
	// A USER row that somehow gained an admin profile must not become ADMIN.
	rec := baseRecord(models.RoleUser)
	rec.Admin = &models.AdminProfile{ID: 3, Name: "Mallory"}
	if _, err := Resolve(rec, discardLogger()); !errors.Is(err, ErrProfileMissing) {
		t.Fatalf("expected ErrProfileMissing, got %v", err)
	}

	// STAFF tag with coach+staff rows: coach wins the tie-break and disagrees with the tag.
	rec = baseRecord(models.RoleStaff)
	rec.Coach = &models.CoachProfile{ID: 1, Name: "X", Specialization: "y"}
	rec.Staff = &models.StaffProfile{ID: 2, Name: "X", Availability: boolPtr(true)}
	if _, err := Resolve(rec, discardLogger()); !errors.Is(err, ErrProfileMissing) {
		t.Fatalf("expected ErrProfileMissing, got %v", err)
	}
}

func TestResolveNilRecord(t *testing.T) {
	if _, err := Resolve(nil, nil); err == nil {
		t.Fatal("expected error for nil record")
	}
}

func TestViewNeverCarriesCredential(t *testing.T) {
	rec := baseRecord(models.RoleCoach)
	rec.Coach = &models.CoachProfile{ID: 1, Name: "Ana", Specialization: "fitness"}
	acc, err := Resolve(rec, discardLogger())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	raw, err := json.Marshal(FormatCredentialSafeView(acc))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if strings.Contains(strings.ToLower(body), "password") || strings.Contains(body, rec.PasswordHash) {
		t.Fatalf("view leaks credential: %s", body)
	}

	// The account itself hides the hash too.
	raw, _ = json.Marshal(acc)
	if strings.Contains(string(raw), rec.PasswordHash) {
		t.Fatalf("account JSON leaks credential: %s", raw)
	}
}

func TestViewMergesOnlyOneProfile(t *testing.T) {
	rec := baseRecord(models.RoleStaff)
	rec.Staff = &models.StaffProfile{ID: 9, Name: "Bo", Availability: boolPtr(true), Nationality: "PT", Age: intPtr(40)}
	acc, err := Resolve(rec, discardLogger())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	view := FormatCredentialSafeView(acc)
	if view.Specialization != "" || view.Experience != "" {
		t.Fatalf("staff view carries coach fields: %+v", view)
	}
	if view.ProfileID != 9 || view.Nationality != "PT" || view.Age == nil || *view.Age != 40 {
		t.Fatalf("unexpected staff view: %+v", view)
	}
}

func TestToRecordInvertsResolve(t *testing.T) {
	rec := baseRecord(models.RoleAdmin)
	rec.Admin = &models.AdminProfile{ID: 3, Name: "Cy"}
	acc, err := Resolve(rec, discardLogger())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	back := ToRecord(acc)
	if back.Admin == nil || back.Coach != nil || back.Staff != nil {
		t.Fatalf("unexpected record: %+v", back)
	}
	if back.PasswordHash != rec.PasswordHash {
		t.Fatal("ToRecord must keep the hash for storage")
	}
}
