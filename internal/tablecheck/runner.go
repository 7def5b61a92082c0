package tablecheck

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
)

// Run executes the complete table check against a running service.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting forecast table check",
		logger.String("baseURL", config.BaseURL),
		logger.Int("seasonLength", config.SeasonLen),
		logger.Int("spotChecks", config.SpotChecks),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	health, err := checkServiceHealth(ctx, client, config)
	if err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch the forecast table
	table, err := fetchTable(ctx, client, config)
	if err != nil {
		return fmt.Errorf("table fetch failed: %w", err)
	}

	// Step 3: Verify the table properties
	verifyTable(table, config, stats)

	// Step 4: Spot-check per-team responses against their zone bands
	if err := spotCheckTeams(ctx, client, config, table, stats); err != nil {
		return fmt.Errorf("team spot checks failed: %w", err)
	}

	// Step 5: Cross-check health against the table
	runCheck("health reports table age", stats, func() error {
		if health.Status == "healthy" && health.TableAge < 0 {
			return fmt.Errorf("healthy service reports negative table age %.1f", health.TableAge)
		}
		return nil
	})

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.ChecksFailed > 0 {
		return fmt.Errorf("%d of %d checks failed", stats.ChecksFailed, stats.ChecksRun)
	}
	logger.Get().Info(ctx, "table check completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running and healthy.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) (*HealthResponse, error) {
	logger.Get().Info(ctx, "checking service health")

	var health HealthResponse
	if err := client.getJSON(ctx, config.BaseURL+"/health", &health); err != nil {
		return nil, fmt.Errorf("failed to connect to service: %w", err)
	}

	switch health.Status {
	case "healthy":
	case "degraded":
		log.Printf("⚠️  Service is degraded: no table computed yet")
	default:
		return nil, fmt.Errorf("unexpected health status %q", health.Status)
	}

	logger.Get().Info(ctx, "service responded",
		logger.String("status", health.Status),
		logger.String("service", health.Service))
	return &health, nil
}

// fetchTable retrieves the full forecast table.
func fetchTable(ctx context.Context, client *HTTPClient, config *Config) (*TableResponse, error) {
	log.Printf("📥 Fetching forecast table from %s...", config.BaseURL)

	var table TableResponse
	if err := client.getJSON(ctx, config.BaseURL+"/table", &table); err != nil {
		return nil, err
	}
	if len(table.ForecastTable) == 0 {
		return nil, fmt.Errorf("empty forecast table")
	}

	log.Printf("📥 Got %d teams, updated %s (%s)",
		len(table.ForecastTable),
		table.Metadata.LastUpdated.Format(time.RFC3339),
		table.Metadata.UpdateType)
	return &table, nil
}

// verifyTable runs the structural checks over the fetched table.
func verifyTable(table *TableResponse, config *Config, stats *Stats) {
	log.Println("🔍 Verifying table properties...")

	teams := table.ForecastTable
	runCheck("forecasted positions form a permutation", stats, func() error {
		return verifyPermutation(teams)
	})
	runCheck("table ordered by forecasted points", stats, func() error {
		return verifyOrdering(teams)
	})
	runCheck("points-per-game projection arithmetic", stats, func() error {
		return verifyArithmetic(teams, config.SeasonLen)
	})
	runCheck("table metadata", stats, func() error {
		return verifyMetadata(table)
	})

	if config.Verbose {
		displayTable(teams)
	}
}

// spotCheckTeams fetches individual team rows and verifies their zone
// bands. Teams are sampled from the top, middle, and bottom of the table
// so every band is exercised.
func spotCheckTeams(ctx context.Context, client *HTTPClient, config *Config, table *TableResponse, stats *Stats) error {
	teams := table.ForecastTable
	n := config.SpotChecks
	if n <= 0 || n > len(teams) {
		n = len(teams)
	}

	log.Printf("🔍 Spot-checking %d team endpoints...", n)

	for i := 0; i < n; i++ {
		// Spread samples across the table.
		idx := i * len(teams) / n
		name := teams[idx].Name

		var team TeamResponse
		if err := client.getJSON(ctx, teamURL(config.BaseURL, name), &team); err != nil {
			return fmt.Errorf("fetch %s: %w", name, err)
		}

		runCheck(fmt.Sprintf("zone band for %s", name), stats, func() error {
			return verifyZone(&team, len(teams))
		})
		stats.TeamsVerified++
	}
	return nil
}

// displayTable prints the fetched table.
func displayTable(teams []Team) {
	log.Println("🏆 Forecasted final table:")
	for _, t := range teams {
		log.Printf("   %2d. %-26s P%-3d Pts%-3d PPG %.2f → %.1f",
			t.ForecastedPosition, t.Name, t.Played, t.Points, t.PointsPerGame, t.ForecastedPoints)
	}
}

// displayFinalStats prints the final check statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("checksRun", stats.ChecksRun),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.Int("teamsVerified", stats.TeamsVerified),
		logger.String("duration", stats.Duration.String()))
}
