package player

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/redis"
)

const cacheKeyPrefix = "player:fid:"

type Service struct {
	repo     *Repository
	lookup   *LookupClient
	cache    *redis.Client
	cacheTTL time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger
}

func NewService(repo *Repository, lookup *LookupClient, cache *redis.Client, cacheTTL time.Duration, importsPerSec float64, importBurst int, logger *slog.Logger) *Service {
	logger.Debug("Initializing player service",
		"cache_enabled", cache != nil,
		"imports_per_sec", importsPerSec,
	)

	return &Service{
		repo:     repo,
		lookup:   lookup,
		cache:    cache,
		cacheTTL: cacheTTL,
		limiter:  rate.NewLimiter(rate.Limit(importsPerSec), importBurst),
		logger:   logger,
	}
}

// Lookup fetches one player, serving from the short-lived cache when
// possible. Fresh results are also merged into the durable cached-player
// list.
func (s *Service) Lookup(ctx context.Context, fid string) (*Player, error) {
	fid = strings.TrimSpace(fid)
	if fid == "" {
		return nil, errors.Validation("fid is required")
	}

	if cached := s.cacheGet(ctx, fid); cached != nil {
		return cached, nil
	}

	p, err := s.lookup.Fetch(ctx, fid)
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, p)
	if err := s.mergeCachedPlayer(ctx, *p); err != nil {
		s.logger.Warn("Failed to persist looked-up player", "fid", fid, "error", err)
	}
	return p, nil
}

func (s *Service) cacheGet(ctx context.Context, fid string) *Player {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, cacheKeyPrefix+fid).Bytes()
	if err != nil {
		return nil
	}

	var p Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return &p
}

func (s *Service) cachePut(ctx context.Context, p *Player) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+p.FID, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("Failed to cache player", "fid", p.FID, "error", err)
	}
}

// mergeCachedPlayer upserts one record into the durable cached-player list.
func (s *Service) mergeCachedPlayer(ctx context.Context, p Player) error {
	players, err := s.repo.LoadCachedPlayers(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range players {
		if players[i].FID == p.FID {
			players[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		players = append(players, p)
	}

	return s.repo.SaveCachedPlayers(ctx, players)
}

func (s *Service) CachedPlayers(ctx context.Context) ([]Player, error) {
	return s.repo.LoadCachedPlayers(ctx)
}

// ImportResult pairs the fetched records with the per-fid outcome summary.
type ImportResult struct {
	Players []Player     `json:"players"`
	Status  ImportStatus `json:"status"`
}

// Import fetches many fids sequentially, paced by the shared limiter so the
// upstream API is not hammered. Failures are collected per fid rather than
// aborting the batch; a failed fid is never retried automatically.
func (s *Service) Import(ctx context.Context, rawIDs string) (*ImportResult, error) {
	fids := splitIDs(rawIDs)
	if len(fids) == 0 {
		return nil, errors.Validation("no player IDs supplied")
	}

	if err := s.repo.SaveLastImport(ctx, rawIDs); err != nil {
		s.logger.Warn("Failed to persist import id list", "error", err)
	}

	result := &ImportResult{
		Players: make([]Player, 0, len(fids)),
		Status: ImportStatus{
			Total:     len(fids),
			FailedIDs: []string{},
		},
	}

	for _, fid := range fids {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, errors.WrapInternal("import cancelled", err)
		}

		p, err := s.Lookup(ctx, fid)
		if err != nil {
			s.logger.Warn("Player import failed", "fid", fid, "error", err)
			result.Status.Failed++
			result.Status.FailedIDs = append(result.Status.FailedIDs, fid)
			continue
		}

		result.Players = append(result.Players, *p)
		result.Status.Success++
	}

	s.logger.Info("Player import finished",
		"total", result.Status.Total,
		"success", result.Status.Success,
		"failed", result.Status.Failed,
	)
	return result, nil
}

// splitIDs accepts comma, whitespace or newline separated fid lists.
func splitIDs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
	})

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func (s *Service) LastImport(ctx context.Context) (string, error) {
	return s.repo.LoadLastImport(ctx)
}

func (s *Service) ListGroups(ctx context.Context) ([]Group, error) {
	return s.repo.LoadGroups(ctx)
}

func (s *Service) CreateGroup(ctx context.Context, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("group name is required")
	}

	groups, err := s.repo.LoadGroups(ctx)
	if err != nil {
		return nil, err
	}

	group := Group{
		ID:      uuid.New().String(),
		Name:    name,
		Columns: []Column{},
		Players: []GroupPlayer{},
	}
	groups = append(groups, group)

	if err := s.repo.SaveGroups(ctx, groups); err != nil {
		return nil, err
	}

	s.logger.Info("Player group created", "group_id", group.ID, "name", name)
	return &group, nil
}

func (s *Service) RenameGroup(ctx context.Context, id, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("group name is required")
	}

	var renamed *Group
	err := s.updateGroups(ctx, func(groups []Group) ([]Group, error) {
		for i := range groups {
			if groups[i].ID == id {
				groups[i].Name = name
				renamed = &groups[i]
				return groups, nil
			}
		}
		return nil, errors.NotFoundf("group %q not found", id)
	})
	return renamed, err
}

func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	return s.updateGroups(ctx, func(groups []Group) ([]Group, error) {
		for i := range groups {
			if groups[i].ID == id {
				return append(groups[:i], groups[i+1:]...), nil
			}
		}
		return nil, errors.NotFoundf("group %q not found", id)
	})
}

// AddColumn appends a custom column to a group.
func (s *Service) AddColumn(ctx context.Context, groupID, name string, colType ColumnType) (*Column, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("column name is required")
	}
	switch colType {
	case ColumnText, ColumnNumber, ColumnSelect:
	default:
		return nil, errors.Validationf("unknown column type %q", colType)
	}

	column := Column{ID: uuid.New().String(), Name: name, Type: colType}
	err := s.updateGroups(ctx, func(groups []Group) ([]Group, error) {
		for i := range groups {
			if groups[i].ID == groupID {
				groups[i].Columns = append(groups[i].Columns, column)
				return groups, nil
			}
		}
		return nil, errors.NotFoundf("group %q not found", groupID)
	})
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (s *Service) RemoveColumn(ctx context.Context, groupID, columnID string) error {
	return s.updateGroups(ctx, func(groups []Group) ([]Group, error) {
		for i := range groups {
			if groups[i].ID != groupID {
				continue
			}
			for j := range groups[i].Columns {
				if groups[i].Columns[j].ID == columnID {
					groups[i].Columns = append(groups[i].Columns[:j], groups[i].Columns[j+1:]...)
					for k := range groups[i].Players {
						delete(groups[i].Players[k].CustomData, columnID)
					}
					return groups, nil
				}
			}
			return nil, errors.NotFoundf("column %q not found in group %q", columnID, groupID)
		}
		return nil, errors.NotFoundf("group %q not found", groupID)
	})
}

// AddPlayerToGroup places a known player into a group. The record comes from
// the durable cached-player list; a fid never looked up must be imported
// first.
func (s *Service) AddPlayerToGroup(ctx context.Context, groupID, fid string) error {
	players, err := s.repo.LoadCachedPlayers(ctx)
	if err != nil {
		return err
	}

	var record *Player
	for i := range players {
		if players[i].FID == fid {
			record = &players[i]
			break
		}
	}
	if record == nil {
		return errors.NotFoundf("player %q has not been imported", fid)
	}

	return s.updateGroups(ctx, func(groups []Group) ([]Group, error) {
		for i := range groups {
			if groups[i].ID != groupID {
				continue
			}
			for _, gp := range groups[i].Players {
				if gp.FID == fid {
					return nil, errors.Conflictf("player %q is already in group %q", fid, groupID)
				}
			}
			groups[i].Players = append(groups[i].Players, GroupPlayer{
				Player:     *record,
				CustomData: map[string]string{},
			})
			return groups, nil
		}
		return nil, errors.NotFoundf("group %q not found", groupID)
	})
}

func (s *Service) RemovePlayerFromGroup(ctx context.Context, groupID, fid string) error {
	return s.updateGroups(ctx, func(groups []Group) ([]Group, error) {
		for i := range groups {
			if groups[i].ID != groupID {
				continue
			}
			for j := range groups[i].Players {
				if groups[i].Players[j].FID == fid {
					groups[i].Players = append(groups[i].Players[:j], groups[i].Players[j+1:]...)
					return groups, nil
				}
			}
			return nil, errors.NotFoundf("player %q not found in group %q", fid, groupID)
		}
		return nil, errors.NotFoundf("group %q not found", groupID)
	})
}

// MovePlayer transfers a player between groups, dropping custom data tied to
// the source group's columns.
func (s *Service) MovePlayer(ctx context.Context, fromID, toID, fid string) error {
	if fromID == toID {
		return errors.Validation("source and destination groups are the same")
	}

	return s.updateGroups(ctx, func(groups []Group) ([]Group, error) {
		var moved *GroupPlayer
		fromIdx, toIdx := -1, -1
		for i := range groups {
			switch groups[i].ID {
			case fromID:
				fromIdx = i
			case toID:
				toIdx = i
			}
		}
		if fromIdx < 0 {
			return nil, errors.NotFoundf("group %q not found", fromID)
		}
		if toIdx < 0 {
			return nil, errors.NotFoundf("group %q not found", toID)
		}

		from := &groups[fromIdx]
		for j := range from.Players {
			if from.Players[j].FID == fid {
				gp := from.Players[j]
				moved = &gp
				from.Players = append(from.Players[:j], from.Players[j+1:]...)
				break
			}
		}
		if moved == nil {
			return nil, errors.NotFoundf("player %q not found in group %q", fid, fromID)
		}

		moved.CustomData = map[string]string{}
		groups[toIdx].Players = append(groups[toIdx].Players, *moved)
		return groups, nil
	})
}

// SetCustomData writes one cell of a group's annotation grid.
func (s *Service) SetCustomData(ctx context.Context, groupID, fid, columnID, value string) error {
	return s.updateGroups(ctx, func(groups []Group) ([]Group, error) {
		for i := range groups {
			if groups[i].ID != groupID {
				continue
			}

			known := false
			for _, c := range groups[i].Columns {
				if c.ID == columnID {
					known = true
					break
				}
			}
			if !known {
				return nil, errors.NotFoundf("column %q not found in group %q", columnID, groupID)
			}

			for j := range groups[i].Players {
				if groups[i].Players[j].FID == fid {
					if groups[i].Players[j].CustomData == nil {
						groups[i].Players[j].CustomData = map[string]string{}
					}
					groups[i].Players[j].CustomData[columnID] = value
					return groups, nil
				}
			}
			return nil, errors.NotFoundf("player %q not found in group %q", fid, groupID)
		}
		return nil, errors.NotFoundf("group %q not found", groupID)
	})
}

// updateGroups runs a read-modify-write over the whole group document.
func (s *Service) updateGroups(ctx context.Context, mutate func([]Group) ([]Group, error)) error {
	groups, err := s.repo.LoadGroups(ctx)
	if err != nil {
		return err
	}

	groups, err = mutate(groups)
	if err != nil {
		return err
	}
	return s.repo.SaveGroups(ctx, groups)
}

// Ranks groups the flat ranked-player list into the four display buckets.
func (s *Service) Ranks(ctx context.Context) ([]Rank, error) {
	players, err := s.repo.LoadRankPlayers(ctx)
	if err != nil {
		return nil, err
	}

	ranks := DefaultRanks()
	byLevel := make(map[RankLevel]*Rank, len(ranks))
	for i := range ranks {
		byLevel[ranks[i].ID] = &ranks[i]
	}
	for _, p := range players {
		if bucket, ok := byLevel[p.Rank]; ok {
			bucket.Players = append(bucket.Players, p)
		}
	}
	return ranks, nil
}

// AssignRank sets a cached player's rank, replacing any prior assignment.
// Capped ranks reject assignments once full.
func (s *Service) AssignRank(ctx context.Context, fid string, level RankLevel) error {
	var capacity int
	known := false
	for _, r := range DefaultRanks() {
		if r.ID == level {
			capacity = r.MaxPlayers
			known = true
			break
		}
	}
	if !known {
		return errors.Validationf("unknown rank %q", level)
	}

	cached, err := s.repo.LoadCachedPlayers(ctx)
	if err != nil {
		return err
	}

	var record *Player
	for i := range cached {
		if cached[i].FID == fid {
			record = &cached[i]
			break
		}
	}
	if record == nil {
		return errors.NotFoundf("player %q has not been imported", fid)
	}

	players, err := s.repo.LoadRankPlayers(ctx)
	if err != nil {
		return err
	}

	atLevel := 0
	for i := range players {
		if players[i].FID == fid {
			players = append(players[:i], players[i+1:]...)
			break
		}
	}
	for _, p := range players {
		if p.Rank == level {
			atLevel++
		}
	}
	if capacity > 0 && atLevel >= capacity {
		return errors.Conflictf("rank %s is full (%d players)", level, capacity)
	}

	players = append(players, RankPlayer{Player: *record, Rank: level})
	return s.repo.SaveRankPlayers(ctx, players)
}

func (s *Service) RemoveRank(ctx context.Context, fid string) error {
	players, err := s.repo.LoadRankPlayers(ctx)
	if err != nil {
		return err
	}

	for i := range players {
		if players[i].FID == fid {
			players = append(players[:i], players[i+1:]...)
			return s.repo.SaveRankPlayers(ctx, players)
		}
	}
	return errors.NotFoundf("player %q holds no rank", fid)
}
