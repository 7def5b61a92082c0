// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/adapters/fixtures"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read operations expose the forecast table.
	Table(ctx context.Context) (model.Table, bool)
	TeamRow(ctx context.Context, name string) (model.Team, bool)
	TableAge(ctx context.Context) time.Duration
	MatchWindow(ctx context.Context) fixtures.Status

	// Notification preference operations.
	GetPreferences(ctx context.Context, userID string) (model.Preferences, error)
	PutPreferences(ctx context.Context, prefs model.Preferences) error
	DeletePreferences(ctx context.Context, userID string) error
	SendTestNotification(ctx context.Context, userID string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	tableHandler         *TableHandler
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	preferencesHandler   *PreferencesHandler
	notificationsHandler *NotificationsHandler
	dashboardHandler     *dashboardHandler
	metricsHandler       http.Handler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		tableHandler:         NewTableHandler(deps),
		healthHandler:        NewHealthHandler(deps),
		statsHandler:         NewStatsHandler(statsProvider),
		preferencesHandler:   NewPreferencesHandler(deps),
		notificationsHandler: NewNotificationsHandler(deps),
		dashboardHandler:     newDashboardHandler(),
		metricsHandler:       newMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/table", MetricsMiddleware(CORSMiddleware(s.tableHandler.HandleGetTable), "table"))
	mux.HandleFunc("/table/", MetricsMiddleware(CORSMiddleware(s.tableHandler.HandleGetTeam), "table_team"))
	mux.HandleFunc("/preferences/", MetricsMiddleware(CORSMiddleware(s.preferencesHandler.HandlePreferences), "preferences"))
	mux.HandleFunc("/notifications/test", MetricsMiddleware(CORSMiddleware(s.notificationsHandler.HandleTest), "notifications_test"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
