package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/TheLoudSteve/epl-forecast/internal/adapters/repository"
)

// NotificationsHandler handles notification verification requests.
type NotificationsHandler struct {
	deps Dependencies
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(deps Dependencies) *NotificationsHandler {
	return &NotificationsHandler{deps: deps}
}

// testRequest mirrors the wire schema of POST /notifications/test.
type testRequest struct {
	UserID string `json:"user_id"`
}

type testResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

// HandleTest handles POST /notifications/test requests. The notification is
// queued and subject to the same rate limiting as real ones.
func (h *NotificationsHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	const op = "api.test_notification"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if err := h.deps.SendTestNotification(r.Context(), req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusAccepted, testResponse{Status: "queued", UserID: req.UserID})
}
