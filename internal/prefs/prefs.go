// Package prefs persists per-panel UI preferences as one small document.
package prefs

import (
	"context"
	"encoding/json"
	"log/slog"

	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/store"
)

const StorageKey = "ui_prefs"

// Prefs mirrors the client-side preference document: left panel zoom, the
// list auto-sort toggle, per-panel collapse state and the UI language.
type Prefs struct {
	PanelZoom float64         `json:"panelZoom"`
	AutoSort  bool            `json:"autoSort"`
	Collapsed map[string]bool `json:"collapsed"`
	Language  string          `json:"language"`
}

// Defaults returns the preference state of a fresh client.
func Defaults() Prefs {
	return Prefs{
		PanelZoom: 1.0,
		AutoSort:  true,
		Collapsed: map[string]bool{},
		Language:  "en",
	}
}

type Service struct {
	store  store.Store
	logger *slog.Logger
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.With("component", "prefs"),
	}
}

func (s *Service) Get(ctx context.Context) (Prefs, error) {
	doc, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return Defaults(), nil
		}
		return Prefs{}, err
	}

	var p Prefs
	if err := json.Unmarshal(doc, &p); err != nil {
		return Prefs{}, errors.WrapInternal("failed to decode preferences", err)
	}
	if p.Collapsed == nil {
		p.Collapsed = map[string]bool{}
	}
	return p, nil
}

func (s *Service) Put(ctx context.Context, p Prefs) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return errors.WrapInternal("failed to encode preferences", err)
	}
	if err := s.store.Put(ctx, StorageKey, doc); err != nil {
		return err
	}

	s.logger.Debug("Preferences saved", "language", p.Language)
	return nil
}
