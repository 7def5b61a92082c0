package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	"github.com/TheLoudSteve/epl-forecast/internal/domain/zone"
)

// apiVersion is reported in GET /table metadata.
const apiVersion = "1.0"

// TableHandler handles forecast table requests.
type TableHandler struct {
	deps Dependencies
}

// NewTableHandler creates a new table handler.
func NewTableHandler(deps Dependencies) *TableHandler {
	return &TableHandler{deps: deps}
}

// tableResponse mirrors the wire schema of GET /table.
type tableResponse struct {
	ForecastTable []model.Team  `json:"forecast_table"`
	Metadata      tableMetadata `json:"metadata"`
}

type tableMetadata struct {
	LastUpdated string `json:"last_updated"`
	TotalTeams  int    `json:"total_teams"`
	APIVersion  string `json:"api_version"`
	Description string `json:"description"`
	UpdateType  string `json:"update_type"`
}

// HandleGetTable handles GET /table requests.
func (h *TableHandler) HandleGetTable(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_table"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	table, ok := h.deps.Table(r.Context())
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no_table", NewKind(op, ErrNoTable))
		return
	}
	writeJSON(w, http.StatusOK, tableResponse{
		ForecastTable: table.Teams,
		Metadata: tableMetadata{
			LastUpdated: table.LastUpdated.UTC().Format(time.RFC3339),
			TotalTeams:  table.TotalTeams(),
			APIVersion:  apiVersion,
			Description: "Forecasted final EPL table based on current points per game",
			UpdateType:  table.UpdateType,
		},
	})
}

// teamResponse is a single forecast row plus its projected finishing zone.
type teamResponse struct {
	model.Team
	Zone string `json:"zone"`
}

// HandleGetTeam handles GET /table/{team} requests.
func (h *TableHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/table/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	table, ok := h.deps.Table(r.Context())
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no_table", NewKind(op, ErrNoTable))
		return
	}
	row, ok := h.deps.TeamRow(r.Context(), name)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, teamResponse{
		Team: row,
		Zone: string(zone.Classify(row.ForecastedPosition, table.TotalTeams())),
	})
}
