package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"warmap-server/internal/alliance"
	"warmap-server/internal/building"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
)

type BuildingHandler struct {
	service   *building.Service
	alliances *alliance.Service
}

func NewBuildingHandler(service *building.Service, alliances *alliance.Service) *BuildingHandler {
	return &BuildingHandler{service: service, alliances: alliances}
}

func (h *BuildingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_buildings")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	q := r.URL.Query()
	filter := building.Filter{
		Search:     q.Get("q"),
		SortByOpen: q.Get("sort") == "open",
	}
	for _, t := range splitParam(q.Get("type")) {
		filter.Types = append(filter.Types, building.Type(t))
	}
	for _, t := range splitParam(q.Get("subtype")) {
		filter.SubTypes = append(filter.SubTypes, building.StationSubType(t))
	}
	filter.Alliances = splitParam(q.Get("alliance"))
	for _, s := range splitParam(q.Get("status")) {
		filter.Statuses = append(filter.Statuses, building.Status(s))
	}

	buildings, err := h.service.List(ctx, filter)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if buildings == nil {
		buildings = []building.Building{}
	}

	response.Success(w, http.StatusOK, buildings)
}

func (h *BuildingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_building")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("building ID is required"))
		return
	}

	b, err := h.service.Get(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, b)
}

type updateBuildingRequest struct {
	Alliance *string `json:"alliance"`
	Notes    *string `json:"notes"`
}

// Update patches the user-mutable fields: alliance assignment and notes.
func (h *BuildingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "update_building")

	if r.Method != http.MethodPatch {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("building ID is required"))
		return
	}

	var req updateBuildingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}
	if req.Alliance == nil && req.Notes == nil {
		response.Error(w, r, logger, errors.Validation("nothing to update"))
		return
	}

	var b *building.Building
	var err error

	if req.Alliance != nil {
		abbr := ""
		if *req.Alliance != building.AllianceUnassigned {
			info, lookupErr := h.alliances.Get(ctx, *req.Alliance)
			if lookupErr != nil {
				response.Error(w, r, logger, lookupErr)
				return
			}
			abbr = info.Abbr
		}
		b, err = h.service.SetAlliance(ctx, id, *req.Alliance, abbr)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
	}

	if req.Notes != nil {
		b, err = h.service.SetNotes(ctx, id, *req.Notes)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
	}

	response.Success(w, http.StatusOK, b)
}

type protectionRequest struct {
	// Input is a dd:hh:mm:ss countdown; EndTime an absolute Unix timestamp.
	// Exactly one must be provided.
	Input   string `json:"input,omitempty"`
	EndTime int64  `json:"end_time,omitempty"`
}

func (h *BuildingHandler) SetProtection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "set_protection")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("building ID is required"))
		return
	}

	var req protectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	var b *building.Building
	var err error
	switch {
	case req.Input != "" && req.EndTime == 0:
		b, err = h.service.SetProtectionFromInput(ctx, id, req.Input)
	case req.Input == "" && req.EndTime > 0:
		b, err = h.service.SetProtectionEnd(ctx, id, req.EndTime)
	default:
		err = errors.Validation("provide exactly one of input or end_time")
	}
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, b)
}

type scheduleRequest struct {
	OpenTime int64 `json:"open_time"`
}

func (h *BuildingHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "set_schedule")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}
	if req.OpenTime <= 0 {
		response.Error(w, r, logger, errors.Validation("open_time must be a positive Unix timestamp"))
		return
	}

	b, err := h.service.SetFixedOpenTime(ctx, id, req.OpenTime)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, b)
}

func (h *BuildingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "reset_buildings")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	buildings, err := h.service.Reset(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, buildings)
}

func (h *BuildingHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "clear_buildings")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	if err := h.service.Clear(ctx); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Export streams the roster as a pretty-printed JSON download.
func (h *BuildingHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "export_buildings")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	export, err := h.service.Export(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "buildings.json"))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		logger.Error("Failed to encode building export", "error", err)
	}
}

func (h *BuildingHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "import_buildings")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON payload", err))
		return
	}

	count, err := h.service.Import(ctx, raw)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]int{"imported": count})
}

func splitParam(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
