package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"warmap-server/internal/player"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
)

type PlayerHandler struct {
	service *player.Service
}

func NewPlayerHandler(service *player.Service) *PlayerHandler {
	return &PlayerHandler{service: service}
}

// Lookup proxies a single-player lookup, hiding the signing salt from
// clients.
func (h *PlayerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "lookup_player")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	fid := r.URL.Query().Get("fid")
	if fid == "" {
		response.Error(w, r, logger, errors.Validation("fid query parameter is required"))
		return
	}

	p, err := h.service.Lookup(r.Context(), fid)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *PlayerHandler) ListCached(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_cached_players")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	players, err := h.service.CachedPlayers(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, players)
}

type importRequest struct {
	IDs string `json:"ids"`
}

// Import runs a paced bulk lookup over a separated fid list.
func (h *PlayerHandler) Import(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "import_players")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	result, err := h.service.Import(r.Context(), req.IDs)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *PlayerHandler) LastImport(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "last_import")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	ids, err := h.service.LastImport(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"ids": ids})
}
