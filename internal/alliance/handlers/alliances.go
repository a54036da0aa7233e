package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"warmap-server/internal/alliance"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
)

type AllianceHandler struct {
	service *alliance.Service
}

func NewAllianceHandler(service *alliance.Service) *AllianceHandler {
	return &AllianceHandler{service: service}
}

// List returns the full alliance configuration keyed by alliance id.
func (h *AllianceHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_alliances")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	config, err := h.service.GetConfig(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, config)
}

func (h *AllianceHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_alliance")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("alliance ID is required"))
		return
	}

	info, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, info)
}

type updateAllianceRequest struct {
	Name  string `json:"name"`
	Abbr  string `json:"abbr"`
	Color string `json:"color"`
	Notes string `json:"notes"`
}

func (h *AllianceHandler) Update(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "update_alliance")

	if r.Method != http.MethodPatch {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("alliance ID is required"))
		return
	}

	var req updateAllianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	info, err := h.service.Update(r.Context(), id, alliance.Info{
		Name:  req.Name,
		Abbr:  req.Abbr,
		Color: req.Color,
		Notes: req.Notes,
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, info)
}

func (h *AllianceHandler) Add(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "add_alliance")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	info, err := h.service.Add(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, info)
}

func (h *AllianceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_alliance")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("alliance ID is required"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AllianceHandler) Reset(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "reset_alliances")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	config, err := h.service.Reset(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, config)
}

func (h *AllianceHandler) Export(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "export_alliances")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	data, err := h.service.Export(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="alliances.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("Failed to write alliance export", "error", err)
	}
}

func (h *AllianceHandler) Import(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "import_alliances")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("failed to read request body", err))
		return
	}

	config, err := h.service.Import(r.Context(), raw)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, config)
}
