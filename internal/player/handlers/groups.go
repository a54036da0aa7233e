package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"warmap-server/internal/player"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
)

type GroupHandler struct {
	service *player.Service
}

func NewGroupHandler(service *player.Service) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_groups")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, groups)
}

type groupNameRequest struct {
	Name string `json:"name"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "create_group")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req groupNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	group, err := h.service.CreateGroup(r.Context(), req.Name)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, group)
}

func (h *GroupHandler) Rename(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "rename_group")

	if r.Method != http.MethodPatch {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("group ID is required"))
		return
	}

	var req groupNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	group, err := h.service.RenameGroup(r.Context(), id, req.Name)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_group")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("group ID is required"))
		return
	}

	if err := h.service.DeleteGroup(r.Context(), id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type addColumnRequest struct {
	Name string            `json:"name"`
	Type player.ColumnType `json:"type"`
}

func (h *GroupHandler) AddColumn(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "add_group_column")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")

	var req addColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	column, err := h.service.AddColumn(r.Context(), id, req.Name, req.Type)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, column)
}

func (h *GroupHandler) RemoveColumn(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "remove_group_column")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	if err := h.service.RemoveColumn(r.Context(), r.PathValue("id"), r.PathValue("columnId")); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type addPlayerRequest struct {
	FID string `json:"fid"`
}

func (h *GroupHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "add_group_player")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	if err := h.service.AddPlayerToGroup(r.Context(), r.PathValue("id"), req.FID); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *GroupHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "remove_group_player")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	if err := h.service.RemovePlayerFromGroup(r.Context(), r.PathValue("id"), r.PathValue("fid")); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "removed"})
}

type movePlayerRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	FID  string `json:"fid"`
}

// MovePlayer is the drag-and-drop analog: transfer a player between groups.
func (h *GroupHandler) MovePlayer(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "move_group_player")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req movePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	if err := h.service.MovePlayer(r.Context(), req.From, req.To, req.FID); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "moved"})
}

type customDataRequest struct {
	ColumnID string `json:"columnId"`
	Value    string `json:"value"`
}

func (h *GroupHandler) SetCustomData(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "set_group_custom_data")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req customDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	err := h.service.SetCustomData(r.Context(), r.PathValue("id"), r.PathValue("fid"), req.ColumnID, req.Value)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "updated"})
}
