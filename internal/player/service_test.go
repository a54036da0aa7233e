package player

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"warmap-server/internal/shared/store"
)

// newLookupServer serves player records for even-length fids and a not-found
// code for the rest, so import tests can mix successes and failures.
func newLookupServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		fid := r.PostFormValue("fid")
		if len(fid)%2 != 0 {
			fmt.Fprint(w, `{"code":40004,"msg":"role not exists","data":null}`)
			return
		}
		fmt.Fprintf(w, `{"code":0,"msg":"success","data":{"fid":"%s","nickname":"Player %s","kid":245,"stove_lv":28,"avatar_image":""}}`, fid, fid)
	}))
}

func newTestPlayerService(t *testing.T, srvURL string) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewRepository(store.NewMemoryStore(), logger)
	lookup := NewLookupClient(srvURL, testSalt, time.Second, fixedClock)
	return NewService(repo, lookup, nil, time.Minute, 1000, 1000, logger)
}

func TestImportCollectsFailuresPerFID(t *testing.T) {
	srv := newLookupServer(t, nil)
	defer srv.Close()
	s := newTestPlayerService(t, srv.URL)

	result, err := s.Import(context.Background(), "12, 345,6789\n901")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if result.Status.Total != 4 {
		t.Errorf("total = %d, want 4", result.Status.Total)
	}
	if result.Status.Success != 2 || result.Status.Failed != 2 {
		t.Errorf("success/failed = %d/%d, want 2/2", result.Status.Success, result.Status.Failed)
	}
	if !reflect.DeepEqual(result.Status.FailedIDs, []string{"345", "901"}) {
		t.Errorf("failedIds = %v", result.Status.FailedIDs)
	}
	if len(result.Players) != 2 {
		t.Errorf("players = %d, want 2", len(result.Players))
	}
}

func TestImportDeduplicatesAndPersistsRawList(t *testing.T) {
	srv := newLookupServer(t, nil)
	defer srv.Close()
	s := newTestPlayerService(t, srv.URL)
	ctx := context.Background()

	raw := "12,12;34\t12"
	result, err := s.Import(ctx, raw)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Status.Total != 2 {
		t.Errorf("total = %d, want 2 after dedup", result.Status.Total)
	}

	last, err := s.LastImport(ctx)
	if err != nil {
		t.Fatalf("LastImport: %v", err)
	}
	if last != raw {
		t.Errorf("last import = %q, want %q", last, raw)
	}
}

func TestImportRejectsEmptyList(t *testing.T) {
	srv := newLookupServer(t, nil)
	defer srv.Close()
	s := newTestPlayerService(t, srv.URL)

	if _, err := s.Import(context.Background(), " ,\n"); err == nil {
		t.Fatal("expected error for empty fid list")
	}
}

func TestLookupMergesIntoCachedPlayers(t *testing.T) {
	srv := newLookupServer(t, nil)
	defer srv.Close()
	s := newTestPlayerService(t, srv.URL)
	ctx := context.Background()

	if _, err := s.Lookup(ctx, "42"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if _, err := s.Lookup(ctx, "42"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	players, err := s.CachedPlayers(ctx)
	if err != nil {
		t.Fatalf("CachedPlayers: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("cached %d players, want 1 after upsert", len(players))
	}
	if players[0].Nickname != "Player 42" {
		t.Errorf("nickname = %q", players[0].Nickname)
	}
}

func TestGroupLifecycle(t *testing.T) {
	srv := newLookupServer(t, nil)
	defer srv.Close()
	s := newTestPlayerService(t, srv.URL)
	ctx := context.Background()

	if _, err := s.Lookup(ctx, "42"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	group, err := s.CreateGroup(ctx, "Bear Trap A")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	column, err := s.AddColumn(ctx, group.ID, "March Size", ColumnNumber)
	if err != nil {
		t.Fatalf("AddColumn: %v", err)
	}

	if err := s.AddPlayerToGroup(ctx, group.ID, "42"); err != nil {
		t.Fatalf("AddPlayerToGroup: %v", err)
	}
	if err := s.AddPlayerToGroup(ctx, group.ID, "42"); err == nil {
		t.Fatal("expected conflict adding the same player twice")
	}
	if err := s.AddPlayerToGroup(ctx, group.ID, "77"); err == nil {
		t.Fatal("expected error for never-imported fid")
	}

	if err := s.SetCustomData(ctx, group.ID, "42", column.ID, "180k"); err != nil {
		t.Fatalf("SetCustomData: %v", err)
	}
	if err := s.SetCustomData(ctx, group.ID, "42", "bogus-column", "x"); err == nil {
		t.Fatal("expected error for unknown column")
	}

	groups, err := s.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].Players[0].CustomData[column.ID] != "180k" {
		t.Errorf("customData = %v", groups[0].Players[0].CustomData)
	}

	if err := s.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	groups, err = s.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("groups = %d after delete, want 0", len(groups))
	}
}

func TestMovePlayerClearsCustomData(t *testing.T) {
	srv := newLookupServer(t, nil)
	defer srv.Close()
	s := newTestPlayerService(t, srv.URL)
	ctx := context.Background()

	if _, err := s.Lookup(ctx, "42"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	from, err := s.CreateGroup(ctx, "Trap A")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	to, err := s.CreateGroup(ctx, "Trap B")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	column, err := s.AddColumn(ctx, from.ID, "Role", ColumnText)
	if err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := s.AddPlayerToGroup(ctx, from.ID, "42"); err != nil {
		t.Fatalf("AddPlayerToGroup: %v", err)
	}
	if err := s.SetCustomData(ctx, from.ID, "42", column.ID, "captain"); err != nil {
		t.Fatalf("SetCustomData: %v", err)
	}

	if err := s.MovePlayer(ctx, from.ID, to.ID, "42"); err != nil {
		t.Fatalf("MovePlayer: %v", err)
	}

	groups, err := s.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	for _, g := range groups {
		switch g.ID {
		case from.ID:
			if len(g.Players) != 0 {
				t.Errorf("source still has %d players", len(g.Players))
			}
		case to.ID:
			if len(g.Players) != 1 {
				t.Fatalf("destination has %d players", len(g.Players))
			}
			if len(g.Players[0].CustomData) != 0 {
				t.Errorf("custom data carried across groups: %v", g.Players[0].CustomData)
			}
		}
	}
}

func TestRankAssignmentMovesBetweenBuckets(t *testing.T) {
	srv := newLookupServer(t, nil)
	defer srv.Close()
	s := newTestPlayerService(t, srv.URL)
	ctx := context.Background()

	if _, err := s.Lookup(ctx, "42"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if err := s.AssignRank(ctx, "42", RankR3); err != nil {
		t.Fatalf("AssignRank: %v", err)
	}
	if err := s.AssignRank(ctx, "42", RankR4); err != nil {
		t.Fatalf("AssignRank: %v", err)
	}

	ranks, err := s.Ranks(ctx)
	if err != nil {
		t.Fatalf("Ranks: %v", err)
	}
	for _, rank := range ranks {
		switch rank.ID {
		case RankR4:
			if len(rank.Players) != 1 {
				t.Errorf("R4 has %d players, want 1", len(rank.Players))
			}
		default:
			if len(rank.Players) != 0 {
				t.Errorf("%s has %d players, want 0", rank.ID, len(rank.Players))
			}
		}
	}

	if err := s.RemoveRank(ctx, "42"); err != nil {
		t.Fatalf("RemoveRank: %v", err)
	}
	if err := s.RemoveRank(ctx, "42"); err == nil {
		t.Fatal("expected error removing a rank twice")
	}
}

func TestAssignRankRespectsCapacity(t *testing.T) {
	srv := newLookupServer(t, nil)
	defer srv.Close()
	s := newTestPlayerService(t, srv.URL)
	ctx := context.Background()

	// R4 is capped at 10; fill it and make sure the next assignment bounces.
	for i := 0; i < 10; i++ {
		fid := fmt.Sprintf("%04d", i)
		if _, err := s.Lookup(ctx, fid); err != nil {
			t.Fatalf("Lookup %s: %v", fid, err)
		}
		if err := s.AssignRank(ctx, fid, RankR4); err != nil {
			t.Fatalf("AssignRank %s: %v", fid, err)
		}
	}

	if _, err := s.Lookup(ctx, "9998"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if err := s.AssignRank(ctx, "9998", RankR4); err == nil {
		t.Fatal("expected conflict for full R4 bucket")
	}
}

func TestSplitIDs(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"1,2,3", []string{"1", "2", "3"}},
		{"1\n2\r\n3", []string{"1", "2", "3"}},
		{"1; 2\t3", []string{"1", "2", "3"}},
		{"1,,1, 1", []string{"1"}},
		{"  ", nil},
	}
	for _, tc := range cases {
		got := splitIDs(tc.raw)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitIDs(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
