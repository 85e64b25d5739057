package notifications

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func dialHub(t *testing.T, hub *Hub, rooms ...string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Serve(conn, rooms...)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("room %s: expected %d clients, got %d", room, want, hub.ClientCount(room))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRoomNames(t *testing.T) {
	if got := AccountRoom(42); got != "account:42" {
		t.Fatalf("unexpected account room %q", got)
	}
	if got := RoleRoom(models.RoleStaff); got != "role:STAFF" {
		t.Fatalf("unexpected role room %q", got)
	}
}

func TestPublishReachesRoomMembers(t *testing.T) {
	hub := newTestHub(t)
	conn := dialHub(t, hub, AccountRoom(7), RoleRoom(models.RoleCoach))
	waitForClients(t, hub, AccountRoom(7), 1)
	waitForClients(t, hub, RoleRoom(models.RoleCoach), 1)

	hub.Publish(RoleRoom(models.RoleCoach), models.Notification{ID: "n1", Type: models.NotificationGroupAssigned})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got models.Notification
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "n1" || got.Type != models.NotificationGroupAssigned {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestPublishSkipsOtherRooms(t *testing.T) {
	hub := newTestHub(t)
	conn := dialHub(t, hub, AccountRoom(1))
	waitForClients(t, hub, AccountRoom(1), 1)

	hub.Publish(AccountRoom(2), models.Notification{ID: "other"})
	hub.Publish(AccountRoom(1), models.Notification{ID: "mine"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"mine"`) {
		t.Fatalf("expected only own notification first, got %s", data)
	}
}

func TestDisconnectLeavesRooms(t *testing.T) {
	hub := newTestHub(t)
	conn := dialHub(t, hub, AccountRoom(3))
	waitForClients(t, hub, AccountRoom(3), 1)

	conn.Close()
	waitForClients(t, hub, AccountRoom(3), 0)
}

func TestDisconnectEvictsAccountFromEveryRoom(t *testing.T) {
	hub := newTestHub(t)
	gone := dialHub(t, hub, AccountRoom(8), RoleRoom(models.RoleStaff))
	stays := dialHub(t, hub, AccountRoom(9), RoleRoom(models.RoleStaff))
	waitForClients(t, hub, RoleRoom(models.RoleStaff), 2)

	if n := hub.Disconnect(AccountRoom(8)); n != 1 {
		t.Fatalf("expected 1 client disconnected, got %d", n)
	}
	if hub.ClientCount(AccountRoom(8)) != 0 || hub.ClientCount(RoleRoom(models.RoleStaff)) != 1 {
		t.Fatalf("evicted client must leave its role room too")
	}

	gone.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := gone.ReadMessage(); err == nil {
		t.Fatal("expected evicted connection to close")
	}

	hub.Publish(RoleRoom(models.RoleStaff), models.Notification{ID: "after"})
	stays.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, data, err := stays.ReadMessage(); err != nil || !strings.Contains(string(data), `"after"`) {
		t.Fatalf("remaining client must still get role broadcasts: %s, %v", data, err)
	}

	if n := hub.Disconnect(AccountRoom(404)); n != 0 {
		t.Fatalf("empty room must disconnect nobody, got %d", n)
	}
}

func TestStopClosesClients(t *testing.T) {
	hub := newTestHub(t)
	conn := dialHub(t, hub, AccountRoom(5))
	waitForClients(t, hub, AccountRoom(5), 1)

	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to close after Stop")
	}
	if hub.ClientCount(AccountRoom(5)) != 0 {
		t.Fatal("rooms must be empty after Stop")
	}
}
