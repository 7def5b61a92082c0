package tablecheck

import "time"

// Config holds configuration for the table check run.
type Config struct {
	BaseURL    string        // Base URL of the service
	SeasonLen  int           // Season length used for projection arithmetic
	SpotChecks int           // Number of per-team endpoint spot checks
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for check output
	Verbose    bool          // Enable verbose logging
}

// Team mirrors one row of the GET /table wire schema.
type Team struct {
	Name               string  `json:"name"`
	Played             int     `json:"played"`
	Won                int     `json:"won"`
	Drawn              int     `json:"drawn"`
	Lost               int     `json:"lost"`
	GoalsFor           int     `json:"for"`
	GoalsAgainst       int     `json:"against"`
	GoalDifference     int     `json:"goal_difference"`
	Points             int     `json:"points"`
	PointsPerGame      float64 `json:"points_per_game"`
	ForecastedPoints   float64 `json:"forecasted_points"`
	CurrentPosition    int     `json:"current_position"`
	ForecastedPosition int     `json:"forecasted_position"`
}

// TableResponse mirrors the GET /table wire schema.
type TableResponse struct {
	ForecastTable []Team `json:"forecast_table"`
	Metadata      struct {
		LastUpdated time.Time `json:"last_updated"`
		TotalTeams  int       `json:"total_teams"`
		APIVersion  string    `json:"api_version"`
		UpdateType  string    `json:"update_type"`
	} `json:"metadata"`
}

// HealthResponse mirrors the GET /health wire schema.
type HealthResponse struct {
	Status   string  `json:"status"`
	Service  string  `json:"service"`
	TableAge float64 `json:"table_age"`
}

// TeamResponse mirrors the GET /table/{team} wire schema.
type TeamResponse struct {
	Team
	Zone string `json:"zone"`
}

// Stats holds check statistics.
type Stats struct {
	ChecksRun     int
	ChecksPassed  int
	ChecksFailed  int
	TeamsVerified int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
