package simulate

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/glicko/pkg/logger"
)

// File permission constants for the log file.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger, writing to stdout and, when logFile
// is set, to that file as well.
func SetupLogging(logFile string, verbose bool) error {
	level := "info"
	if verbose {
		level = "debug"
	}

	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithOutput(out), logger.WithLevel(level)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Glicko Rating Simulator
=======================

Registers players with hidden strengths, plays random games between them
over several rating periods and checks that the service's ratings order
the players by strength.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -players int       Number of players to register (default 50)
  -periods int       Number of rating periods (default 10)
  -games int         Games per period (default 500)
  -draws float       Probability of a draw (default 0.1)
  -spread float      Standard deviation of true strength (default 300)
  -workers int       Number of concurrent submitters (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 30s)
  -min-rho float     Rank correlation required to pass (default 0.7)
  -output string     Write generated players and games to this JSON file
  -log string        Also write logs to this file
  -verbose           Enable verbose logging
  -help              Show this help message
`)
}
