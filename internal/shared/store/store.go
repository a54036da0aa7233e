// Package store persists application state as whole JSON documents under
// fixed string keys, read and written as single units.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"warmap-server/internal/shared/database"
	"warmap-server/internal/shared/errors"
)

// Store is the document storage contract shared by all repositories.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, doc json.RawMessage) error
	Delete(ctx context.Context, key string) error
}

// SQLStore keeps documents in the storage_entries table.
type SQLStore struct {
	db     *database.DB
	logger *slog.Logger
}

func NewSQLStore(db *database.DB, logger *slog.Logger) *SQLStore {
	logger.Debug("Initializing document store")
	return &SQLStore{
		db:     db,
		logger: logger,
	}
}

func (s *SQLStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM storage_entries WHERE key = $1", key).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("no document for key %q", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %q: %w", key, err)
	}
	return json.RawMessage(doc), nil
}

func (s *SQLStore) Put(ctx context.Context, key string, doc json.RawMessage) error {
	logger := s.logger.With("component", "store", "operation", "put", "key", key, "size_bytes", len(doc))

	if !json.Valid(doc) {
		return errors.Validationf("document for key %q is not valid JSON", key)
	}

	query := `
		INSERT INTO storage_entries (key, doc, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, key, []byte(doc)); err != nil {
		logger.Error("Failed to write document", "error", err)
		return fmt.Errorf("failed to write document %q: %w", key, err)
	}

	logger.Debug("Document written")
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM storage_entries WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete document %q: %w", key, err)
	}
	return nil
}

// LegacyKeyMigration renames a storage key while preserving the old entry.
type LegacyKeyMigration struct {
	OldKey string
	NewKey string
}

// MigrateLegacyKeys copies documents forward from renamed keys. The pass is
// idempotent: a key that already has data is never overwritten, and the
// legacy entry is kept in place.
func (s *SQLStore) MigrateLegacyKeys(ctx context.Context, migrations []LegacyKeyMigration) error {
	logger := s.logger.With("component", "store", "operation", "migrate_legacy_keys")

	migrated := 0
	for _, m := range migrations {
		if _, err := s.Get(ctx, m.NewKey); err == nil {
			continue // already migrated or fresh data
		} else if errors.GetType(err) != errors.ErrorTypeNotFound {
			return err
		}

		doc, err := s.Get(ctx, m.OldKey)
		if err != nil {
			if errors.GetType(err) == errors.ErrorTypeNotFound {
				continue
			}
			return err
		}

		logger.Info("Migrating document", "old_key", m.OldKey, "new_key", m.NewKey)
		if err := s.Put(ctx, m.NewKey, doc); err != nil {
			return err
		}
		migrated++
	}

	if migrated > 0 {
		logger.Info("Legacy key migration completed", "migrated", migrated)
	} else {
		logger.Debug("No legacy key migrations needed")
	}
	return nil
}

// MemoryStore is an in-memory Store used in tests and as a fallback when the
// database is unavailable at startup.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, errors.NotFoundf("no document for key %q", key)
	}
	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, doc json.RawMessage) error {
	if !json.Valid(doc) {
		return errors.Validationf("document for key %q is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make(json.RawMessage, len(doc))
	copy(stored, doc)
	s.docs[key] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	return nil
}
