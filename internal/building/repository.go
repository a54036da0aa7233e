package building

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"warmap-server/internal/shared/store"
)

// Persisted document keys. LegacyStorageKey is the pre-rename key the startup
// migration pass copies forward.
const (
	StorageKey       = "buildings"
	LegacyStorageKey = "buildings_v4"
)

type Repository struct {
	store  store.Store
	logger *slog.Logger
}

func NewRepository(st store.Store, logger *slog.Logger) *Repository {
	logger.Debug("Initializing building repository")
	return &Repository{
		store:  st,
		logger: logger,
	}
}

// Load reads the whole roster document. A missing document comes back as a
// not_found error so the caller can decide to seed.
func (r *Repository) Load(ctx context.Context) ([]Building, error) {
	doc, err := r.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}

	var buildings []Building
	if err := json.Unmarshal(doc, &buildings); err != nil {
		return nil, fmt.Errorf("failed to decode building roster: %w", err)
	}
	return buildings, nil
}

// Save writes the whole roster back as a single document.
func (r *Repository) Save(ctx context.Context, buildings []Building) error {
	logger := r.logger.With("component", "building_repository", "operation", "save", "count", len(buildings))

	doc, err := json.Marshal(buildings)
	if err != nil {
		return fmt.Errorf("failed to encode building roster: %w", err)
	}

	if err := r.store.Put(ctx, StorageKey, doc); err != nil {
		logger.Error("Failed to persist building roster", "error", err)
		return err
	}

	logger.Debug("Building roster persisted")
	return nil
}
