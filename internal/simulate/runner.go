package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/glicko/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete simulation: register players, play and close the
// configured number of periods, then verify the resulting ratings.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("simulate")

	log.Info(ctx, "starting rating simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.Players),
		logger.Int("periods", config.Periods),
		logger.Int("games", config.Games),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	players := generateContenders(ctx, config)
	if err := registerPlayers(ctx, client, players, stats); err != nil {
		return stats, fmt.Errorf("registration failed: %w", err)
	}

	var all []Game
	for period := 1; period <= config.Periods; period++ {
		games, err := generateGames(ctx, config, players)
		if err != nil {
			return stats, fmt.Errorf("period %d: %w", period, err)
		}
		stats.GamesGenerated += len(games)
		all = append(all, games...)

		submitGames(ctx, config, client, games, stats)

		summary, err := closePeriod(ctx, client)
		if err != nil {
			return stats, fmt.Errorf("period %d: %w", period, err)
		}
		stats.PeriodsClosed++
		log.Info(ctx, "period closed",
			logger.Int("period", summary.Period),
			logger.Int("active", summary.Active),
			logger.Int("idle", summary.Idle),
			logger.Int("results", summary.Results),
			logger.Float64("durationMs", summary.DurationMs))
	}

	rated, err := fetchPlayers(ctx, client, players)
	if err != nil {
		return stats, fmt.Errorf("rating retrieval failed: %w", err)
	}

	verifyErr := verifyResults(ctx, config, players, rated, stats)

	if config.OutputFile != "" {
		if err := saveGamesToFile(ctx, config.OutputFile, players, all); err != nil {
			log.Warn(ctx, "failed to save games to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return stats, fmt.Errorf("result verification failed: %w", verifyErr)
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	return decodeResponse(resp, http.StatusOK, nil)
}

type gameLog struct {
	Players []contender `json:"players"`
	Games   []Game      `json:"games"`
}

// saveGamesToFile writes the generated players and games as JSON.
func saveGamesToFile(ctx context.Context, filename string, players []contender, games []Game) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(gameLog{Players: players, Games: games}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal games: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "games saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, gamesPerSecond float64
	if stats.GamesSubmitted > 0 {
		acceptRate = float64(stats.GamesAccepted) / float64(stats.GamesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.GamesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersRegistered", stats.PlayersRegistered),
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("gamesSubmitted", stats.GamesSubmitted),
		logger.Int("gamesAccepted", stats.GamesAccepted),
		logger.Int("gamesDuplicate", stats.GamesDuplicate),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("periodsClosed", stats.PeriodsClosed),
		logger.Float64("correlation", stats.Correlation),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
