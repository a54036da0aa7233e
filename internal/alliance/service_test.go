package alliance

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"warmap-server/internal/shared/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewRepository(store.NewMemoryStore(), logger)
	clock := func() time.Time { return time.Unix(1700000000, 0) }
	return NewService(repo, clock, logger)
}

func TestGetConfigDefaultsWhenEmpty(t *testing.T) {
	s := newTestService(t)

	config, err := s.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if len(config) != 5 {
		t.Fatalf("expected 5 default alliances, got %d", len(config))
	}
	if config["allianceA"].Color != "#ef4444" {
		t.Errorf("allianceA color = %q, want #ef4444", config["allianceA"].Color)
	}
}

func TestUpdatePreservesUnsetFields(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	before, err := s.Get(ctx, "allianceB")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	info, err := s.Update(ctx, "allianceB", Info{Name: "Renamed"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if info.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", info.Name)
	}
	if info.Abbr != before.Abbr || info.Color != before.Color {
		t.Errorf("unset fields changed: abbr %q color %q", info.Abbr, info.Color)
	}
}

func TestUpdateUnknownAlliance(t *testing.T) {
	s := newTestService(t)

	if _, err := s.Update(context.Background(), "nope", Info{Name: "x"}); err == nil {
		t.Fatal("expected error for unknown alliance")
	}
}

func TestAddGeneratesTimestampID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	info, err := s.Add(ctx)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if info.ID != "alliance_1700000000000" {
		t.Errorf("id = %q, want alliance_1700000000000", info.ID)
	}

	config, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if _, ok := config[info.ID]; !ok {
		t.Error("added alliance not persisted")
	}
}

func TestDeleteRejectsUnassigned(t *testing.T) {
	s := newTestService(t)

	if err := s.Delete(context.Background(), Unassigned); err == nil {
		t.Fatal("expected error deleting the unassigned pseudo-alliance")
	}
}

func TestDeleteRemovesAlliance(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if err := s.Delete(ctx, "allianceC"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "allianceC"); err == nil {
		t.Fatal("expected not found after delete")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.Update(ctx, "allianceA", Info{Name: "Mutated"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Delete(ctx, "allianceE"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	config, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}

	want := DefaultConfig()
	if len(config) != len(want) {
		t.Fatalf("reset returned %d alliances, want %d", len(config), len(want))
	}
	for id, info := range want {
		if config[id] != info {
			t.Errorf("reset[%s] = %+v, want %+v", id, config[id], info)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.Update(ctx, "allianceD", Info{Notes: "border watch"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	data, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	other := newTestService(t)
	imported, err := other.Import(ctx, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	original, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if len(imported) != len(original) {
		t.Fatalf("imported %d alliances, want %d", len(imported), len(original))
	}
	if imported["allianceD"].Notes != "border watch" {
		t.Errorf("notes = %q, want border watch", imported["allianceD"].Notes)
	}
}

func TestImportRejectsMalformedConfig(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	payloads := [][]byte{
		[]byte(`not json`),
		[]byte(`[]`),
		[]byte(`{"allianceA": {"id": 42}}`),
	}
	for _, payload := range payloads {
		if _, err := s.Import(ctx, payload); err == nil {
			t.Errorf("Import(%s) succeeded, want error", payload)
		}
	}

	config, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if len(config) != 5 {
		t.Errorf("config mutated by rejected import: %d entries", len(config))
	}
}

func TestImportRaw(t *testing.T) {
	s := newTestService(t)

	raw := map[string]Info{
		"alliance_x": {ID: "alliance_x", Name: "Xenia", Abbr: "XEN", Color: "#123456"},
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	config, err := s.Import(context.Background(), payload)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(config) != 1 {
		t.Fatalf("expected wholesale replace, got %d entries", len(config))
	}
	if config["alliance_x"].Abbr != "XEN" {
		t.Errorf("abbr = %q, want XEN", config["alliance_x"].Abbr)
	}
}
