package building

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"warmap-server/internal/facility"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/schema"
	"warmap-server/internal/timefmt"
)

// Clock supplies the current time so tests control it deterministically.
type Clock func() time.Time

type Service struct {
	repo   *Repository
	clock  Clock
	rng    *rand.Rand
	logger *slog.Logger
}

func NewService(repo *Repository, clock Clock, rng *rand.Rand, logger *slog.Logger) *Service {
	logger.Debug("Initializing building service")

	if clock == nil {
		clock = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Service{
		repo:   repo,
		clock:  clock,
		rng:    rng,
		logger: logger,
	}
}

// EnsureSeeded generates the initial roster when no persisted one exists.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	logger := s.logger.With("component", "building_service", "operation", "ensure_seeded")

	_, err := s.repo.Load(ctx)
	if err == nil {
		logger.Debug("Building roster already present")
		return nil
	}
	if errors.GetType(err) != errors.ErrorTypeNotFound {
		return err
	}

	data, err := LoadMapData()
	if err != nil {
		return err
	}

	buildings := Generate(data, s.clock(), s.rng)
	if err := s.repo.Save(ctx, buildings); err != nil {
		return err
	}

	logger.Info("Initial building roster generated", "count", len(buildings))
	return nil
}

// Refresh recomputes every building's derived status at now and persists any
// protection rollovers the calculator reports. This is the catch-up pass: a
// roster untouched for a week self-heals here.
func (s *Service) Refresh(ctx context.Context) ([]Building, error) {
	buildings, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	dirty := false

	for i := range buildings {
		b := &buildings[i]

		if b.Type == TypeEngineeringStation {
			facility.Calculate(b.ProtectionEndTime, now, func(newEnd int64) {
				b.ProtectionEndTime = newEnd
				b.OpenTime = newEnd
				dirty = true
			})
		}

		if next := b.CalculateStatus(now); next != b.Status {
			b.Status = next
			dirty = true
		}
	}

	if dirty {
		if err := s.repo.Save(ctx, buildings); err != nil {
			return nil, err
		}
	}
	return buildings, nil
}

// Filter narrows the roster listing.
type Filter struct {
	Types      []Type
	SubTypes   []StationSubType
	Alliances  []string
	Statuses   []Status
	Search     string
	SortByOpen bool
}

func (f Filter) matches(b Building) bool {
	if len(f.Types) > 0 && !containsType(f.Types, b.Type) {
		return false
	}
	// Sub-type filters only constrain engineering stations.
	if len(f.SubTypes) > 0 && b.Type == TypeEngineeringStation && !containsSubType(f.SubTypes, b.StationSubType) {
		return false
	}
	if len(f.Alliances) > 0 && !containsString(f.Alliances, b.Alliance) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, b.Status) {
		return false
	}
	if q := strings.TrimSpace(strings.ToLower(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(b.ID), q) && !strings.Contains(strings.ToLower(b.Name), q) {
			return false
		}
	}
	return true
}

// List refreshes statuses and returns the filtered roster.
func (s *Service) List(ctx context.Context, filter Filter) ([]Building, error) {
	buildings, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]Building, 0, len(buildings))
	for _, b := range buildings {
		if filter.matches(b) {
			filtered = append(filtered, b)
		}
	}

	if filter.SortByOpen {
		sort.SliceStable(filtered, func(i, j int) bool {
			return effectiveOpenTime(filtered[i]) < effectiveOpenTime(filtered[j])
		})
	}
	return filtered, nil
}

// effectiveOpenTime orders buildings soonest-opening first; buildings with no
// schedule sort last.
func effectiveOpenTime(b Building) int64 {
	if b.OpenTime > 0 {
		return b.OpenTime
	}
	if b.FixedOpenTime > 0 {
		return b.FixedOpenTime
	}
	return 1<<63 - 1
}

func (s *Service) Get(ctx context.Context, id string) (*Building, error) {
	buildings, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	for i := range buildings {
		if buildings[i].ID == id {
			return &buildings[i], nil
		}
	}
	return nil, errors.NotFoundf("building %q not found", id)
}

// update applies fn to the named building and persists the whole roster.
func (s *Service) update(ctx context.Context, id string, fn func(b *Building) error) (*Building, error) {
	buildings, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range buildings {
		if buildings[i].ID != id {
			continue
		}
		if err := fn(&buildings[i]); err != nil {
			return nil, err
		}
		buildings[i].Status = buildings[i].CalculateStatus(s.clock())
		if err := s.repo.Save(ctx, buildings); err != nil {
			return nil, err
		}
		return &buildings[i], nil
	}
	return nil, errors.NotFoundf("building %q not found", id)
}

// SetAlliance assigns a building to an alliance. The abbreviation is shown on
// the map next to the marker.
func (s *Service) SetAlliance(ctx context.Context, id, allianceID, allianceAbbr string) (*Building, error) {
	if allianceID == "" {
		return nil, errors.Validation("alliance id is required")
	}
	return s.update(ctx, id, func(b *Building) error {
		b.Alliance = allianceID
		b.AllianceName = allianceAbbr
		if allianceID == AllianceUnassigned {
			b.AllianceName = ""
		}
		return nil
	})
}

func (s *Service) SetNotes(ctx context.Context, id, notes string) (*Building, error) {
	return s.update(ctx, id, func(b *Building) error {
		b.Notes = notes
		return nil
	})
}

// SetProtectionFromInput sets a station's protection end time from a
// dd:hh:mm:ss (or hh:mm:ss) countdown entered by the user.
func (s *Service) SetProtectionFromInput(ctx context.Context, id, input string) (*Building, error) {
	seconds, ok := timefmt.ParseDuration(input)
	if !ok {
		return nil, errors.Validationf("invalid time input %q, expected dd:hh:mm:ss or hh:mm:ss", input)
	}
	return s.SetProtectionEnd(ctx, id, s.clock().Unix()+seconds)
}

// SetProtectionEnd sets a station's protection end time to an absolute Unix
// timestamp (manual override).
func (s *Service) SetProtectionEnd(ctx context.Context, id string, endTime int64) (*Building, error) {
	return s.update(ctx, id, func(b *Building) error {
		if b.Type != TypeEngineeringStation {
			return errors.Validationf("building %q is not an engineering station", id)
		}
		b.ProtectionEndTime = endTime
		b.OpenTime = endTime
		return nil
	})
}

// SetFixedOpenTime overrides a fortress/stronghold scheduled opening.
func (s *Service) SetFixedOpenTime(ctx context.Context, id string, openTime int64) (*Building, error) {
	return s.update(ctx, id, func(b *Building) error {
		if b.Type != TypeFortress && b.Type != TypeStronghold {
			return errors.Validationf("building %q has no fixed schedule", id)
		}
		b.FixedOpenTime = openTime
		return nil
	})
}

// Reset regenerates the roster from the static map data, discarding all user
// state.
func (s *Service) Reset(ctx context.Context) ([]Building, error) {
	data, err := LoadMapData()
	if err != nil {
		return nil, err
	}

	buildings := Generate(data, s.clock(), s.rng)
	if err := s.repo.Save(ctx, buildings); err != nil {
		return nil, err
	}

	s.logger.Info("Building roster reset to defaults", "count", len(buildings))
	return buildings, nil
}

// Clear empties the roster. The next seed pass will regenerate nothing until
// Reset is called or the document is deleted; an empty roster is a valid
// persisted state.
func (s *Service) Clear(ctx context.Context) error {
	s.logger.Info("Building roster cleared")
	return s.repo.Save(ctx, []Building{})
}

// Export wraps the roster for download.
type Export struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exportedAt"`
	Buildings  []Building `json:"buildings"`
}

func (s *Service) Export(ctx context.Context) (*Export, error) {
	buildings, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &Export{
		Version:    1,
		ExportedAt: s.clock().UTC(),
		Buildings:  buildings,
	}, nil
}

// Import replaces the roster wholesale after schema validation. Accepts both
// the export wrapper and a bare roster array; rejects anything that does not
// match the building shape, with no partial state change.
func (s *Service) Import(ctx context.Context, raw []byte) (int, error) {
	payload := raw

	var wrapper struct {
		Buildings json.RawMessage `json:"buildings"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Buildings != nil {
		payload = wrapper.Buildings
	}

	if err := schema.Validate(schema.Buildings, payload); err != nil {
		return 0, err
	}

	var buildings []Building
	if err := json.Unmarshal(payload, &buildings); err != nil {
		return 0, errors.WrapValidation("failed to decode imported roster", err)
	}

	if err := s.repo.Save(ctx, buildings); err != nil {
		return 0, err
	}

	s.logger.Info("Building roster imported", "count", len(buildings))
	return len(buildings), nil
}

func containsType(list []Type, t Type) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func containsSubType(list []StationSubType, t StationSubType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
