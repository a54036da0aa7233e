package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"warmap-server/internal/building"
	"warmap-server/internal/reward"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
)

type RewardHandler struct {
	service *reward.Service
}

func NewRewardHandler(service *reward.Service) *RewardHandler {
	return &RewardHandler{service: service}
}

// List returns the full reward table keyed by building id.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_rewards")

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

// Lookup resolves the reward for one building in the active (or an explicit)
// cycle.
func (h *RewardHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "lookup_reward")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("building ID is required"))
		return
	}

	cycle := 0
	if raw := r.URL.Query().Get("cycle"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, r, logger, errors.Validation("cycle must be an integer"))
			return
		}
		cycle = parsed
	}

	descriptor, err := h.service.RewardFor(r.Context(), id, cycle)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, descriptor)
}

type setCellRequest struct {
	Cycle  int             `json:"cycle"`
	Reward building.Reward `json:"reward"`
}

// SetCell updates one cell of the table. Writes are debounced server-side;
// clients that need durability call Commit.
func (h *RewardHandler) SetCell(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "set_reward_cell")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("building ID is required"))
		return
	}

	var req setCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	if err := h.service.SetCell(r.Context(), id, req.Cycle, req.Reward); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "pending"})
}

func (h *RewardHandler) Commit(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "commit_rewards")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	if err := h.service.Commit(r.Context()); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "committed"})
}

func (h *RewardHandler) GetCycle(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_reward_cycle")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	cycle, err := h.service.Cycle(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]int{"cycle": cycle})
}

type setCycleRequest struct {
	Cycle int `json:"cycle"`
}

func (h *RewardHandler) SetCycle(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "set_reward_cycle")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req setCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	if err := h.service.SetCycle(r.Context(), req.Cycle); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]int{"cycle": req.Cycle})
}

func (h *RewardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "reset_rewards")

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

func (h *RewardHandler) Export(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "export_rewards")

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
	w.Header().Set("Content-Disposition", `attachment; filename="rewards.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("Failed to write reward export", "error", err)
	}
}

func (h *RewardHandler) Import(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "import_rewards")

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
