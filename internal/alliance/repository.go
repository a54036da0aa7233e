package alliance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"warmap-server/internal/shared/store"
)

const StorageKey = "alliance_config"

type Repository struct {
	store  store.Store
	logger *slog.Logger
}

func NewRepository(st store.Store, logger *slog.Logger) *Repository {
	logger.Debug("Initializing alliance repository")
	return &Repository{
		store:  st,
		logger: logger,
	}
}

func (r *Repository) Load(ctx context.Context) (Config, error) {
	doc, err := r.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(doc, &config); err != nil {
		return nil, fmt.Errorf("failed to decode alliance config: %w", err)
	}
	return config, nil
}

func (r *Repository) Save(ctx context.Context, config Config) error {
	doc, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode alliance config: %w", err)
	}
	if err := r.store.Put(ctx, StorageKey, doc); err != nil {
		r.logger.Error("Failed to persist alliance config", "error", err)
		return err
	}
	return nil
}
