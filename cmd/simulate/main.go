package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/glicko/internal/simulate"
)

// Default configuration constants.
const (
	defaultPlayers     = 50
	defaultPeriods     = 10
	defaultGames       = 500
	defaultDrawRate    = 0.1
	defaultSpread      = 300.0
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultMinRho      = 0.7
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players    = flag.Int("players", defaultPlayers, "Number of players to register")
		periods    = flag.Int("periods", defaultPeriods, "Number of rating periods")
		games      = flag.Int("games", defaultGames, "Games per period")
		draws      = flag.Float64("draws", defaultDrawRate, "Probability of a draw")
		spread     = flag.Float64("spread", defaultSpread, "Standard deviation of true strength")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		minRho     = flag.Float64("min-rho", defaultMinRho, "Rank correlation required to pass")
		outputFile = flag.String("output", "", "Write generated players and games to this JSON file")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := simulate.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:        *baseURL,
		Players:        *players,
		Periods:        *periods,
		Games:          *games,
		DrawRate:       *draws,
		Spread:         *spread,
		Workers:        *workers,
		Timeout:        *timeout,
		MinCorrelation: *minRho,
		OutputFile:     *outputFile,
		Verbose:        *verbose,
	}

	if _, err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
