package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/tablecheck"
)

// Default configuration constants.
const (
	defaultSeasonLen    = 38
	defaultSpotChecks   = 5
	defaultTimeout      = 30 * time.Second
	defaultCheckTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		seasonLen = flag.Int("season", defaultSeasonLen, "Season length used for projection arithmetic")
		spot      = flag.Int("spot", defaultSpotChecks, "Number of per-team endpoint spot checks (0 = all)")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for check output (default: tablecheck_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Print the full fetched table")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		tablecheck.ShowHelp()
		return
	}

	// Setup logging
	if err := tablecheck.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultCheckTimeout)
	defer cancel()

	// Create check configuration
	config := &tablecheck.Config{
		BaseURL:    *baseURL,
		SeasonLen:  *seasonLen,
		SpotChecks: *spot,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	// Run the checks
	if err := tablecheck.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Check failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
