package alliance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/schema"
)

type Service struct {
	repo   *Repository
	clock  func() time.Time
	logger *slog.Logger
}

func NewService(repo *Repository, clock func() time.Time, logger *slog.Logger) *Service {
	logger.Debug("Initializing alliance service")

	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

// load falls back to the defaults when no config was ever persisted.
func (s *Service) load(ctx context.Context) (Config, error) {
	config, err := s.repo.Load(ctx)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return config, nil
}

func (s *Service) GetConfig(ctx context.Context) (Config, error) {
	return s.load(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Info, error) {
	config, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	info, ok := config[id]
	if !ok {
		return nil, errors.NotFoundf("alliance %q not found", id)
	}
	return &info, nil
}

// Update patches one alliance entry. Empty fields keep their current value;
// the id itself is immutable.
func (s *Service) Update(ctx context.Context, id string, updates Info) (*Info, error) {
	config, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	info, ok := config[id]
	if !ok {
		return nil, errors.NotFoundf("alliance %q not found", id)
	}

	if updates.Name != "" {
		info.Name = updates.Name
	}
	if updates.Abbr != "" {
		info.Abbr = updates.Abbr
	}
	if updates.Color != "" {
		info.Color = updates.Color
	}
	info.Notes = updates.Notes

	config[id] = info
	if err := s.repo.Save(ctx, config); err != nil {
		return nil, err
	}
	return &info, nil
}

// Add creates a new alliance with placeholder values, keyed by a
// timestamp-derived id.
func (s *Service) Add(ctx context.Context) (*Info, error) {
	config, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("alliance_%d", s.clock().UnixMilli())
	info := Info{
		ID:    id,
		Name:  "New Alliance",
		Abbr:  "NEW",
		Color: "#94a3b8",
	}

	config[id] = info
	if err := s.repo.Save(ctx, config); err != nil {
		return nil, err
	}

	s.logger.Info("Alliance added", "alliance_id", id)
	return &info, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == Unassigned {
		return errors.Validation("the unassigned pseudo-alliance cannot be deleted")
	}

	config, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := config[id]; !ok {
		return errors.NotFoundf("alliance %q not found", id)
	}

	delete(config, id)
	if err := s.repo.Save(ctx, config); err != nil {
		return err
	}

	s.logger.Info("Alliance deleted", "alliance_id", id)
	return nil
}

// Reset restores the exact default 5-entry configuration.
func (s *Service) Reset(ctx context.Context) (Config, error) {
	config := DefaultConfig()
	if err := s.repo.Save(ctx, config); err != nil {
		return nil, err
	}
	s.logger.Info("Alliance config reset to defaults")
	return config, nil
}

// Export returns the config pretty-printed for download.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	config, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(config, "", "  ")
}

// Import replaces the config wholesale after schema validation. A payload
// that parses but does not match the alliance shape is rejected with no
// state change.
func (s *Service) Import(ctx context.Context, raw []byte) (Config, error) {
	if err := schema.Validate(schema.AllianceConfig, raw); err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, errors.WrapValidation("failed to decode imported alliance config", err)
	}

	if err := s.repo.Save(ctx, config); err != nil {
		return nil, err
	}

	s.logger.Info("Alliance config imported", "count", len(config))
	return config, nil
}
