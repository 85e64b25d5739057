package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/notifications"
)

func TestBroadcastTargets(t *testing.T) {
	cases := []struct {
		name  string
		input BroadcastInput
		rooms []string
	}{
		{"account", BroadcastInput{AccountID: intPtr(4), Message: "hi"}, []string{notifications.AccountRoom(4)}},
		{"role", BroadcastInput{Role: "coach", Message: "hi"}, []string{notifications.RoleRoom(models.RoleCoach)}},
		{"everyone", BroadcastInput{Message: "hi"}, []string{"role:USER", "role:COACH", "role:STAFF", "role:ADMIN"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc := NewNotificationService(pub, discardLogger())
			n, err := svc.Broadcast(context.Background(), tc.input)
			if err != nil {
				t.Fatalf("Broadcast: %v", err)
			}
			if n.Type != models.NotificationAdminBroadcast || n.ID == "" {
				t.Fatalf("unexpected notification %+v", n)
			}
			got := pub.rooms()
			if len(got) != len(tc.rooms) {
				t.Fatalf("expected rooms %v, got %v", tc.rooms, got)
			}
			for i := range got {
				if got[i] != tc.rooms[i] {
					t.Fatalf("expected rooms %v, got %v", tc.rooms, got)
				}
			}
		})
	}
}

func TestBroadcastValidation(t *testing.T) {
	svc := NewNotificationService(&recordingPublisher{}, discardLogger())
	bad := []BroadcastInput{
		{Message: "  "},
		{Role: "OWNER", Message: "hi"},
		{Role: "STAFF", AccountID: intPtr(1), Message: "hi"},
		{AccountID: intPtr(0), Message: "hi"},
	}
	for _, in := range bad {
		if _, err := svc.Broadcast(context.Background(), in); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed for %+v, got %v", in, err)
		}
	}
}

func TestNilNotificationServiceIsNoop(t *testing.T) {
	var svc *NotificationService
	svc.NotifyAccount(1, models.NotificationGroupAssigned, "x", nil)
	svc.NotifyRole(models.RoleCoach, models.NotificationGroupAssigned, "x", nil)
}
