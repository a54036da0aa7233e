package reward

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"warmap-server/internal/building"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/schema"
)

// commitDebounce coalesces rapid per-cell edits into one write. An explicit
// Commit or shutdown flushes immediately.
const commitDebounce = 500 * time.Millisecond

// flushTimeout bounds the background write triggered by the debounce timer.
const flushTimeout = 5 * time.Second

type Service struct {
	repo     *Repository
	logger   *slog.Logger
	debounce time.Duration

	mu     sync.Mutex
	config Config
	cycle  int
	dirty  bool
	timer  *time.Timer
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing reward service")

	return &Service{
		repo:     repo,
		logger:   logger,
		debounce: commitDebounce,
	}
}

// ensureLoaded populates the in-memory table. Callers must hold s.mu.
func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.config != nil {
		return nil
	}

	config, err := s.repo.Load(ctx)
	if err != nil {
		if errors.GetType(err) != errors.ErrorTypeNotFound {
			return err
		}
		config = SeedConfig()
	}

	cycle, err := s.repo.LoadCycle(ctx)
	if err != nil {
		if errors.GetType(err) != errors.ErrorTypeNotFound {
			return err
		}
		cycle = 1
	}

	s.config = config
	s.cycle = cycle
	return nil
}

func (s *Service) GetConfig(ctx context.Context) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.copyConfig(), nil
}

// copyConfig deep-copies the table so callers cannot mutate state behind the
// debounce. Callers must hold s.mu.
func (s *Service) copyConfig() Config {
	out := make(Config, len(s.config))
	for id, rewards := range s.config {
		row := make([]building.Reward, len(rewards))
		copy(row, rewards)
		out[id] = row
	}
	return out
}

// RewardFor looks up the descriptor for a building in the given cycle.
// Cycle 0 selects the current global cycle.
func (s *Service) RewardFor(ctx context.Context, buildingID string, cycle int) (*building.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if cycle == 0 {
		cycle = s.cycle
	}
	if cycle < 1 || cycle > CycleCount {
		return nil, errors.Validationf("cycle must be between 1 and %d", CycleCount)
	}

	rewards, ok := s.config[buildingID]
	if !ok {
		return nil, errors.NotFoundf("no reward schedule for building %q", buildingID)
	}

	r := rewards[cycle-1]
	return &r, nil
}

// SetCell updates a single table cell. The write is debounced; call Commit
// to flush immediately.
func (s *Service) SetCell(ctx context.Context, buildingID string, cycle int, r building.Reward) error {
	if cycle < 1 || cycle > CycleCount {
		return errors.Validationf("cycle must be between 1 and %d", CycleCount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	rewards, ok := s.config[buildingID]
	if !ok {
		return errors.NotFoundf("no reward schedule for building %q", buildingID)
	}

	rewards[cycle-1] = r
	s.dirty = true
	s.scheduleFlush()
	return nil
}

// scheduleFlush arms (or re-arms) the debounce timer. Callers must hold s.mu.
func (s *Service) scheduleFlush() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := s.Commit(ctx); err != nil {
			s.logger.Error("Debounced reward commit failed", "error", err)
		}
	})
}

// Commit flushes any pending edits.
func (s *Service) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Service) flushLocked(ctx context.Context) error {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty {
		return nil
	}
	if err := s.repo.Save(ctx, s.config); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *Service) Cycle(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return s.cycle, nil
}

// SetCycle persists the global active cycle immediately.
func (s *Service) SetCycle(ctx context.Context, cycle int) error {
	if cycle < 1 || cycle > CycleCount {
		return errors.Validationf("cycle must be between 1 and %d", CycleCount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.repo.SaveCycle(ctx, cycle); err != nil {
		return err
	}
	s.cycle = cycle

	s.logger.Info("Reward cycle changed", "cycle", cycle)
	return nil
}

// Reset restores the seed table, discarding any pending edits.
func (s *Service) Reset(ctx context.Context) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.config = SeedConfig()
	s.dirty = false
	if err := s.repo.Save(ctx, s.config); err != nil {
		return nil, err
	}

	s.logger.Info("Reward config reset to seed data")
	return s.copyConfig(), nil
}

// Export flushes pending edits and returns the table pretty-printed.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if err := s.flushLocked(ctx); err != nil {
		return nil, err
	}
	return json.MarshalIndent(s.config, "", "  ")
}

// Import replaces the table wholesale after schema validation, discarding
// any pending edits.
func (s *Service) Import(ctx context.Context, raw []byte) (Config, error) {
	if err := schema.Validate(schema.RewardsConfig, raw); err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, errors.WrapValidation("failed to decode imported reward config", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.config = config
	s.dirty = false
	if err := s.repo.Save(ctx, s.config); err != nil {
		return nil, err
	}

	s.logger.Info("Reward config imported", "buildings", len(config))
	return s.copyConfig(), nil
}

// Close flushes pending edits during shutdown.
func (s *Service) Close(ctx context.Context) error {
	return s.Commit(ctx)
}
