package tablecheck

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "tablecheck_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the table check tool.
func ShowHelp() {
	os.Stdout.WriteString(`EPL Forecast Table Check
========================

Verifies a running forecast service: table ordering, position
permutation, points-per-game arithmetic, and zone bands.

Usage:
  go run cmd/tablecheck/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -season int
        Season length used for projection arithmetic (default 38)
  -spot int
        Number of per-team endpoint spot checks (default 5, 0 = all)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for check output (default: tablecheck_TIMESTAMP.log)
  -verbose
        Print the full fetched table
  -help
        Show this help message

Examples:
  # Check a local service
  go run cmd/tablecheck/main.go

  # Check every team endpoint on a remote service
  go run cmd/tablecheck/main.go -url https://forecast.example.com -spot 0

  # Print the fetched table while checking
  go run cmd/tablecheck/main.go -verbose
`)
}
