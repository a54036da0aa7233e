package player

import (
	"context"
	"encoding/json"
	"log/slog"

	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/store"
)

// Storage keys carried over from the persisted-state namespace.
const (
	GroupsKey        = "wos_manager_groups"
	CachedPlayersKey = "wos_manager_cached_players"
	LastImportKey    = "wos_manager_last_import_ids"
	RanksKey         = "wos-rank-players"
)

type Repository struct {
	store  store.Store
	logger *slog.Logger
}

func NewRepository(st store.Store, logger *slog.Logger) *Repository {
	return &Repository{
		store:  st,
		logger: logger.With("component", "player_repository"),
	}
}

// LoadGroups returns the persisted group list, empty when none exists.
func (r *Repository) LoadGroups(ctx context.Context) ([]Group, error) {
	doc, err := r.store.Get(ctx, GroupsKey)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return []Group{}, nil
		}
		return nil, err
	}

	var groups []Group
	if err := json.Unmarshal(doc, &groups); err != nil {
		return nil, errors.WrapInternal("failed to decode player groups", err)
	}
	return groups, nil
}

func (r *Repository) SaveGroups(ctx context.Context, groups []Group) error {
	doc, err := json.Marshal(groups)
	if err != nil {
		return errors.WrapInternal("failed to encode player groups", err)
	}
	if err := r.store.Put(ctx, GroupsKey, doc); err != nil {
		return err
	}

	r.logger.Debug("Player groups saved", "count", len(groups))
	return nil
}

// LoadCachedPlayers returns previously fetched player records, keyed by fid on
// save order.
func (r *Repository) LoadCachedPlayers(ctx context.Context) ([]Player, error) {
	doc, err := r.store.Get(ctx, CachedPlayersKey)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return []Player{}, nil
		}
		return nil, err
	}

	var players []Player
	if err := json.Unmarshal(doc, &players); err != nil {
		return nil, errors.WrapInternal("failed to decode cached players", err)
	}
	return players, nil
}

func (r *Repository) SaveCachedPlayers(ctx context.Context, players []Player) error {
	doc, err := json.Marshal(players)
	if err != nil {
		return errors.WrapInternal("failed to encode cached players", err)
	}
	return r.store.Put(ctx, CachedPlayersKey, doc)
}

// LoadLastImport returns the raw fid list from the most recent bulk import so
// clients can prefill the import form.
func (r *Repository) LoadLastImport(ctx context.Context) (string, error) {
	doc, err := r.store.Get(ctx, LastImportKey)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return "", nil
		}
		return "", err
	}

	var ids string
	if err := json.Unmarshal(doc, &ids); err != nil {
		return "", errors.WrapInternal("failed to decode last import ids", err)
	}
	return ids, nil
}

func (r *Repository) SaveLastImport(ctx context.Context, ids string) error {
	doc, err := json.Marshal(ids)
	if err != nil {
		return errors.WrapInternal("failed to encode last import ids", err)
	}
	return r.store.Put(ctx, LastImportKey, doc)
}

// LoadRankPlayers returns the flat ranked-player list. The persisted document
// is a plain array of players each carrying its rank.
func (r *Repository) LoadRankPlayers(ctx context.Context) ([]RankPlayer, error) {
	doc, err := r.store.Get(ctx, RanksKey)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return []RankPlayer{}, nil
		}
		return nil, err
	}

	var players []RankPlayer
	if err := json.Unmarshal(doc, &players); err != nil {
		return nil, errors.WrapInternal("failed to decode ranked players", err)
	}
	return players, nil
}

func (r *Repository) SaveRankPlayers(ctx context.Context, players []RankPlayer) error {
	doc, err := json.Marshal(players)
	if err != nil {
		return errors.WrapInternal("failed to encode ranked players", err)
	}
	return r.store.Put(ctx, RanksKey, doc)
}
