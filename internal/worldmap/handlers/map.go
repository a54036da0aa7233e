package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"warmap-server/internal/building"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
	"warmap-server/internal/worldmap"
)

// MapHandler serves the pointer-interaction endpoints: projecting building
// coordinates into view space and resolving clicks back to building ids.
type MapHandler struct {
	projection worldmap.Projection
	buildings  *building.Service
}

func NewMapHandler(projection worldmap.Projection, buildings *building.Service) *MapHandler {
	return &MapHandler{
		projection: projection,
		buildings:  buildings,
	}
}

// markers converts the current roster into hit-test candidates, preserving
// roster order so later entries win overlap resolution.
func (h *MapHandler) markers(buildings []building.Building) []worldmap.Marker {
	markers := make([]worldmap.Marker, 0, len(buildings))
	for _, b := range buildings {
		markers = append(markers, worldmap.Marker{
			ID:            b.ID,
			Position:      worldmap.Point{X: b.Coordinates.X, Y: b.Coordinates.Y},
			BaseSize:      building.MarkerBaseSize(b.Type),
			MinVisualSize: building.MinVisualSize(b.Type),
			CullBelowZoom: building.CullBelowZoom(b.Type),
		})
	}
	return markers
}

type hitTestRequest struct {
	View     worldmap.Point    `json:"view"`
	Viewport worldmap.Viewport `json:"viewport"`
	Camera   worldmap.Camera   `json:"camera"`
}

type hitTestResponse struct {
	Hit        bool               `json:"hit"`
	BuildingID string             `json:"buildingId,omitempty"`
	Building   *building.Building `json:"building,omitempty"`
}

// HitTest resolves a pointer position to the topmost building under it.
func (h *MapHandler) HitTest(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "map_hittest")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req hitTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}
	req.Camera.Zoom = worldmap.ClampZoom(req.Camera.Zoom)

	buildings, err := h.buildings.List(r.Context(), building.Filter{})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	id, ok := h.projection.HitTest(req.View, h.markers(buildings), req.Viewport, req.Camera)
	if !ok {
		response.Success(w, http.StatusOK, hitTestResponse{Hit: false})
		return
	}

	for i := range buildings {
		if buildings[i].ID == id {
			response.Success(w, http.StatusOK, hitTestResponse{
				Hit:        true,
				BuildingID: id,
				Building:   &buildings[i],
			})
			return
		}
	}
	response.Success(w, http.StatusOK, hitTestResponse{Hit: true, BuildingID: id})
}

type projectRequest struct {
	Viewport worldmap.Viewport `json:"viewport"`
	Camera   worldmap.Camera   `json:"camera"`
}

type projectedMarker struct {
	BuildingID string          `json:"buildingId"`
	View       worldmap.Point  `json:"view"`
	RenderSize float64         `json:"renderSize"`
	Visible    bool            `json:"visible"`
	Status     building.Status `json:"status"`
	Alliance   string          `json:"alliance"`
}

type projectResponse struct {
	Scale   float64           `json:"scale"`
	Markers []projectedMarker `json:"markers"`
}

// Project returns every building's view-space position and rendered size for
// the given camera, with visibility already resolved.
func (h *MapHandler) Project(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "map_project")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}
	req.Camera.Zoom = worldmap.ClampZoom(req.Camera.Zoom)

	buildings, err := h.buildings.List(r.Context(), building.Filter{})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	scale := h.projection.Scale(req.Viewport, req.Camera.Zoom)
	resp := projectResponse{
		Scale:   scale,
		Markers: make([]projectedMarker, 0, len(buildings)),
	}

	for _, b := range buildings {
		m := worldmap.Marker{
			ID:            b.ID,
			Position:      worldmap.Point{X: b.Coordinates.X, Y: b.Coordinates.Y},
			BaseSize:      building.MarkerBaseSize(b.Type),
			MinVisualSize: building.MinVisualSize(b.Type),
			CullBelowZoom: building.CullBelowZoom(b.Type),
		}
		view, _ := h.projection.WorldToView(m.Position, req.Viewport, req.Camera)
		resp.Markers = append(resp.Markers, projectedMarker{
			BuildingID: b.ID,
			View:       view,
			RenderSize: m.RenderSize(scale),
			Visible:    m.Visible(req.Camera.Zoom),
			Status:     b.Status,
			Alliance:   b.Alliance,
		})
	}

	response.Success(w, http.StatusOK, resp)
}
