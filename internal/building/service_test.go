package building

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"warmap-server/internal/facility"
	"warmap-server/internal/shared/store"
)

func newSeededService(t *testing.T, clock Clock) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewRepository(store.NewMemoryStore(), logger)
	s := NewService(repo, clock, rand.New(rand.NewSource(7)), logger)
	if err := s.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	return s
}

func anyStation(t *testing.T, s *Service) Building {
	t.Helper()
	buildings, err := s.List(context.Background(), Filter{Types: []Type{TypeEngineeringStation}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(buildings) == 0 {
		t.Fatal("no engineering stations in roster")
	}
	return buildings[0]
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	s := newSeededService(t, time.Now)
	ctx := context.Background()

	before, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	// A second pass must not regenerate over the existing roster.
	if _, err := s.SetNotes(ctx, before[0].ID, "keep me"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	if err := s.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}

	b, err := s.Get(ctx, before[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Notes != "keep me" {
		t.Error("reseeding clobbered the persisted roster")
	}
}

func TestSetProtectionFromInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSeededService(t, func() time.Time { return now })
	ctx := context.Background()

	station := anyStation(t, s)

	b, err := s.SetProtectionFromInput(ctx, station.ID, "2d:15:30:00")
	if err != nil {
		t.Fatalf("SetProtectionFromInput: %v", err)
	}

	want := now.Unix() + 2*86400 + 15*3600 + 30*60
	if b.ProtectionEndTime != want {
		t.Errorf("protectionEndTime = %d, want %d", b.ProtectionEndTime, want)
	}
	if b.OpenTime != want {
		t.Errorf("openTime = %d, want %d", b.OpenTime, want)
	}
	if b.Status != StatusProtected {
		t.Errorf("status = %s, want protected", b.Status)
	}
}

func TestSetProtectionRejectsBadInput(t *testing.T) {
	s := newSeededService(t, time.Now)
	station := anyStation(t, s)

	for _, input := range []string{"", "12:34", "2d15:30:00:00:00", "aa:bb:cc"} {
		if _, err := s.SetProtectionFromInput(context.Background(), station.ID, input); err == nil {
			t.Errorf("accepted malformed input %q", input)
		}
	}
}

func TestSetProtectionEndOnlyForStations(t *testing.T) {
	s := newSeededService(t, time.Now)

	if _, err := s.SetProtectionEnd(context.Background(), "F01", time.Now().Unix()+100); err == nil {
		t.Fatal("expected error setting protection on a fortress")
	}
	if _, err := s.SetFixedOpenTime(context.Background(), anyStation(t, s).ID, time.Now().Unix()); err == nil {
		t.Fatal("expected error setting fixed schedule on a station")
	}
}

func TestRefreshPersistsLapsedRollover(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	current := base
	s := newSeededService(t, func() time.Time { return current })
	ctx := context.Background()

	station := anyStation(t, s)
	if _, err := s.SetProtectionEnd(ctx, station.ID, base.Unix()+3600); err != nil {
		t.Fatalf("SetProtectionEnd: %v", err)
	}

	// Jump past the full protect+contest cycle; the roster self-heals by
	// restarting protection from "now".
	current = base.Add(10 * 24 * time.Hour)
	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	b, err := s.Get(ctx, station.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := current.Unix() + facility.ProtectionSeconds
	if b.ProtectionEndTime != want {
		t.Errorf("rolled-over end = %d, want %d (now + 3d)", b.ProtectionEndTime, want)
	}
	if b.Status != StatusProtected {
		t.Errorf("status after rollover = %s, want protected", b.Status)
	}
}

func TestListFilters(t *testing.T) {
	s := newSeededService(t, time.Now)
	ctx := context.Background()

	fortresses, err := s.List(ctx, Filter{Types: []Type{TypeFortress}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(fortresses) != 12 {
		t.Errorf("fortresses = %d, want 12", len(fortresses))
	}

	byID, err := s.List(ctx, Filter{Search: "f01"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, b := range byID {
		if b.ID == "F01" {
			found = true
		}
	}
	if !found {
		t.Error("case-insensitive id search missed F01")
	}

	if _, err := s.SetAlliance(ctx, "F01", "allianceA", "A"); err != nil {
		t.Fatalf("SetAlliance: %v", err)
	}
	owned, err := s.List(ctx, Filter{Alliances: []string{"allianceA"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != "F01" {
		t.Errorf("alliance filter = %v", owned)
	}
}

func TestClearThenResetRegenerates(t *testing.T) {
	s := newSeededService(t, time.Now)
	ctx := context.Background()

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	empty, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("roster has %d buildings after clear", len(empty))
	}

	// Cleared is a valid persisted state; seeding must not resurrect it.
	if err := s.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	empty, err = s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(empty) != 0 {
		t.Error("EnsureSeeded regenerated a cleared roster")
	}

	reset, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(reset) != 91 {
		t.Errorf("reset roster = %d buildings, want 91", len(reset))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newSeededService(t, time.Now)
	ctx := context.Background()

	if _, err := s.SetNotes(ctx, "S01", "garrison here"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}

	export, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.Version != 1 {
		t.Errorf("export version = %d", export.Version)
	}

	raw, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	other := newSeededService(t, time.Now)
	count, err := other.Import(ctx, raw)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if count != len(export.Buildings) {
		t.Errorf("imported %d buildings, want %d", count, len(export.Buildings))
	}

	b, err := other.Get(ctx, "S01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Notes != "garrison here" {
		t.Errorf("notes = %q after round trip", b.Notes)
	}
}

func TestImportRejectsMalformedRoster(t *testing.T) {
	s := newSeededService(t, time.Now)
	ctx := context.Background()

	payloads := [][]byte{
		[]byte(`{"buildings": "nope"}`),
		[]byte(`[{"id": 42}]`),
		[]byte(`not json`),
	}
	for _, payload := range payloads {
		if _, err := s.Import(ctx, payload); err == nil {
			t.Errorf("Import(%s) succeeded, want error", payload)
		}
	}

	buildings, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(buildings) != 91 {
		t.Errorf("roster mutated by rejected import: %d buildings", len(buildings))
	}
}
