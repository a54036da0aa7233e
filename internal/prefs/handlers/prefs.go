package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"warmap-server/internal/prefs"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
)

type PrefsHandler struct {
	service *prefs.Service
}

func NewPrefsHandler(service *prefs.Service) *PrefsHandler {
	return &PrefsHandler{service: service}
}

func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_prefs")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	p, err := h.service.Get(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *PrefsHandler) Put(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "put_prefs")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var p prefs.Prefs
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	if err := h.service.Put(r.Context(), p); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}
