package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZAKARYA123J/teamhub/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name    string
		role    models.Role
		allowed []models.Role
		want    Decision
	}{
		{"listed", models.RoleAdmin, []models.Role{models.RoleAdmin}, Proceed},
		{"one of many", models.RoleStaff, []models.Role{models.RoleCoach, models.RoleStaff}, Proceed},
		{"base against admin list", models.RoleUser, []models.Role{models.RoleAdmin}, Deny},
		{"no hierarchy", models.RoleAdmin, []models.Role{models.RoleCoach}, Deny},
		{"empty list", models.RoleAdmin, nil, Deny},
		{"unknown role", models.Role("ROOT"), []models.Role{models.RoleAdmin}, Deny},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decide(tc.role, tc.allowed); got != tc.want {
				t.Fatalf("Decide(%s, %v) = %s, want %s", tc.role, tc.allowed, got, tc.want)
			}
		})
	}
}

func TestDecideEveryRoleAgainstEveryList(t *testing.T) {
	for _, role := range models.AllRoles {
		for _, other := range models.AllRoles {
			got := Decide(role, []models.Role{other})
			if (role == other) != (got == Proceed) {
				t.Fatalf("Decide(%s, [%s]) = %s", role, other, got)
			}
		}
		if Decide(role, []models.Role{}) != Deny {
			t.Fatalf("empty allow-list must deny %s", role)
		}
	}
}

func serveAuthorize(id *Identity, roles ...models.Role) *httptest.ResponseRecorder {
	reached := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	if id != nil {
		req = req.WithContext(WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	Authorize(quietLogger(), roles...)(reached).ServeHTTP(rec, req)
	return rec
}

func TestAuthorize(t *testing.T) {
	admin := &Identity{AccountID: 1, Role: models.RoleAdmin}
	user := &Identity{AccountID: 2, Role: models.RoleUser}

	if rec := serveAuthorize(admin, models.RoleAdmin); rec.Code != http.StatusNoContent {
		t.Fatalf("admin should pass, got %d", rec.Code)
	}

	rec := serveAuthorize(user, models.RoleAdmin)
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), `"forbidden"`) {
		t.Fatalf("expected 403 forbidden, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := serveAuthorize(admin); rec.Code != http.StatusForbidden {
		t.Fatalf("empty allow-list must forbid, got %d", rec.Code)
	}

	rec = serveAuthorize(nil, models.RoleAdmin)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"unauthenticated"`) {
		t.Fatalf("missing identity must be 401, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestContextHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := GetUserIDFromContext(req.Context()); err != ErrNoIdentity {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
	ctx := WithIdentity(req.Context(), Identity{AccountID: 9, Role: models.RoleCoach})
	if id, err := GetUserIDFromContext(ctx); err != nil || id != 9 {
		t.Fatalf("GetUserIDFromContext = %d, %v", id, err)
	}
	if role, err := GetUserRoleFromContext(ctx); err != nil || role != models.RoleCoach {
		t.Fatalf("GetUserRoleFromContext = %s, %v", role, err)
	}
}
