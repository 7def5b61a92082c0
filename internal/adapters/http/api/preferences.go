package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/TheLoudSteve/epl-forecast/internal/adapters/repository"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
)

// PreferencesHandler handles notification preference requests.
type PreferencesHandler struct {
	deps Dependencies
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(deps Dependencies) *PreferencesHandler {
	return &PreferencesHandler{deps: deps}
}

// preferencesRequest mirrors the wire schema of PUT /preferences/{user_id}.
type preferencesRequest struct {
	TeamName    string `json:"team_name"`
	Enabled     bool   `json:"enabled"`
	Timing      string `json:"timing"`
	Sensitivity string `json:"sensitivity"`
	PushToken   string `json:"push_token,omitempty"`
}

// HandlePreferences dispatches GET/PUT/DELETE /preferences/{user_id}.
func (h *PreferencesHandler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	const op = "api.preferences"

	userID := strings.TrimPrefix(r.URL.Path, "/preferences/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, userID)
	case http.MethodPut:
		h.put(w, r, userID)
	case http.MethodDelete:
		h.delete(w, r, userID)
	default:
		http.NotFound(w, r)
	}
}

func (h *PreferencesHandler) get(w http.ResponseWriter, r *http.Request, userID string) {
	prefs, err := h.deps.GetPreferences(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *PreferencesHandler) put(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "api.put_preferences"

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	prefs := model.Preferences{
		UserID:      userID,
		TeamName:    req.TeamName,
		Enabled:     req.Enabled,
		Timing:      model.Timing(req.Timing),
		Sensitivity: model.Sensitivity(req.Sensitivity),
		PushToken:   req.PushToken,
	}
	if err := h.deps.PutPreferences(r.Context(), prefs); err != nil {
		switch {
		case errors.Is(err, model.ErrUnknownTeam),
			errors.Is(err, model.ErrInvalidTiming),
			errors.Is(err, model.ErrInvalidSensitivity):
			writeError(w, http.StatusBadRequest, "invalid_preferences", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	stored, err := h.deps.GetPreferences(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (h *PreferencesHandler) delete(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.deps.DeletePreferences(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
