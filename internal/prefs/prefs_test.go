package prefs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"warmap-server/internal/shared/store"
)

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store.NewMemoryStore(), logger)
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	s := newTestService()

	p, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.PanelZoom != 1.0 || !p.AutoSort || p.Language != "en" {
		t.Errorf("defaults = %+v", p)
	}
	if p.Collapsed == nil {
		t.Error("collapsed map is nil")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	in := Prefs{
		PanelZoom: 1.4,
		AutoSort:  false,
		Collapsed: map[string]bool{"fortress": true},
		Language:  "zh",
	}
	if err := s.Put(ctx, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	out, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.PanelZoom != 1.4 || out.AutoSort || out.Language != "zh" {
		t.Errorf("round trip = %+v", out)
	}
	if !out.Collapsed["fortress"] {
		t.Error("collapse state lost")
	}
}
