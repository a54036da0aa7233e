package stream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"warmap-server/internal/building"
	"warmap-server/internal/shared/store"
)

func newTestHub(t *testing.T) (*Hub, *building.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := building.NewRepository(store.NewMemoryStore(), logger)
	svc := building.NewService(repo, time.Now, rand.New(rand.NewSource(1)), logger)
	if err := svc.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	return NewHub(svc, 20*time.Millisecond, time.Now), svc
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHubBroadcastsSnapshots(t *testing.T) {
	hub, _ := newTestHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.Handler))
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var updates []StatusUpdate
	if err := json.Unmarshal(msg, &updates); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(updates) == 0 {
		t.Fatal("empty snapshot")
	}

	sawSunCity := false
	var station *StatusUpdate
	for i, u := range updates {
		if u.BuildingID == "SC01" {
			sawSunCity = true
		}
		if station == nil && (u.Status == building.StatusProtected || u.Status == building.StatusContested) {
			station = &updates[i]
		}
	}
	if !sawSunCity {
		t.Error("sun city missing from snapshot")
	}
	if station == nil {
		t.Fatal("no engineering station in snapshot")
	}
	if station.RemainingSeconds <= 0 || station.EndTime <= 0 {
		t.Errorf("station update = %+v, want positive remaining and end time", station)
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, _ := newTestHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.Handler))
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()

	// Wait for at least one tick so the client is fully registered.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway) && !strings.Contains(err.Error(), "close") {
				t.Errorf("unexpected read error: %v", err)
			}
			return
		}
	}
}
