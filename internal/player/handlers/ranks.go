package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"warmap-server/internal/player"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
)

type RankHandler struct {
	service *player.Service
}

func NewRankHandler(service *player.Service) *RankHandler {
	return &RankHandler{service: service}
}

func (h *RankHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_ranks")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	ranks, err := h.service.Ranks(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, ranks)
}

type assignRankRequest struct {
	Rank player.RankLevel `json:"rank"`
}

func (h *RankHandler) Assign(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "assign_rank")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	fid := r.PathValue("fid")
	if fid == "" {
		response.Error(w, r, logger, errors.Validation("player fid is required"))
		return
	}

	var req assignRankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	if err := h.service.AssignRank(r.Context(), fid, req.Rank); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (h *RankHandler) Remove(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "remove_rank")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	fid := r.PathValue("fid")
	if fid == "" {
		response.Error(w, r, logger, errors.Validation("player fid is required"))
		return
	}

	if err := h.service.RemoveRank(r.Context(), fid); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "removed"})
}
