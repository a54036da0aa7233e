package reward

import (
	"context"
	"encoding/json"
	"log/slog"

	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/store"
)

const (
	StorageKey = "rewards_config"
	// LegacyStorageKey is the pre-rename document key, migrated at startup.
	LegacyStorageKey = "rewards_config_v2"

	CycleStorageKey = "reward_cycle"
)

type Repository struct {
	store  store.Store
	logger *slog.Logger
}

func NewRepository(st store.Store, logger *slog.Logger) *Repository {
	return &Repository{
		store:  st,
		logger: logger.With("component", "reward_repository"),
	}
}

func (r *Repository) Load(ctx context.Context) (Config, error) {
	doc, err := r.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(doc, &config); err != nil {
		return nil, errors.WrapInternal("failed to decode reward config", err)
	}
	return config, nil
}

func (r *Repository) Save(ctx context.Context, config Config) error {
	doc, err := json.Marshal(config)
	if err != nil {
		return errors.WrapInternal("failed to encode reward config", err)
	}
	if err := r.store.Put(ctx, StorageKey, doc); err != nil {
		return err
	}

	r.logger.Debug("Reward config saved", "buildings", len(config))
	return nil
}

type cycleDoc struct {
	Cycle int `json:"cycle"`
}

func (r *Repository) LoadCycle(ctx context.Context) (int, error) {
	doc, err := r.store.Get(ctx, CycleStorageKey)
	if err != nil {
		return 0, err
	}

	var d cycleDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return 0, errors.WrapInternal("failed to decode reward cycle", err)
	}
	return d.Cycle, nil
}

func (r *Repository) SaveCycle(ctx context.Context, cycle int) error {
	doc, err := json.Marshal(cycleDoc{Cycle: cycle})
	if err != nil {
		return errors.WrapInternal("failed to encode reward cycle", err)
	}
	return r.store.Put(ctx, CycleStorageKey, doc)
}
