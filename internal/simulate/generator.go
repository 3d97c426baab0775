package simulate

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/okian/glicko/pkg/logger"
)

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return float64(binary.LittleEndian.Uint64(b[:])>>11) / (1 << 53)
}

// getRandomIndex returns a random index in [0, n).
func getRandomIndex(n int) int {
	return int(getRandomFloat() * float64(n))
}

// getRandomNormal draws a standard normal value (Box-Muller).
func getRandomNormal() float64 {
	u1 := getRandomFloat()
	for u1 == 0 {
		u1 = getRandomFloat()
	}
	u2 := getRandomFloat()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// generateContenders creates players with normally distributed strengths.
func generateContenders(ctx context.Context, config *Config) []contender {
	logger.Get().Info(ctx, "generating players", logger.Int("players", config.Players))

	out := make([]contender, config.Players)
	for i := range out {
		out[i] = contender{
			ID:       uuid.NewString(),
			Strength: baseStrength + getRandomNormal()*config.Spread,
		}
	}
	return out
}

// winProbability is the chance that a beats b given their true strengths.
func winProbability(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/strengthScale))
}

// generateGames pairs random distinct players and decides each game from
// their true strengths.
func generateGames(ctx context.Context, config *Config, players []contender) ([]Game, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("need at least 2 players, have %d", len(players))
	}

	games := make([]Game, 0, config.Games)
	for i := 0; i < config.Games; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during game generation: %w", err)
		}
		games = append(games, generateSingleGame(players, config.DrawRate))
	}
	return games, nil
}

// generateSingleGame plays one game between two random players.
func generateSingleGame(players []contender, drawRate float64) Game {
	a := getRandomIndex(len(players))
	b := getRandomIndex(len(players) - 1)
	if b >= a {
		b++
	}
	pa, pb := players[a], players[b]

	game := Game{ResultID: uuid.NewString()}
	switch {
	case getRandomFloat() < drawRate:
		game.WinnerID, game.LoserID, game.Draw = pa.ID, pb.ID, true
	case getRandomFloat() < winProbability(pa.Strength, pb.Strength):
		game.WinnerID, game.LoserID = pa.ID, pb.ID
	default:
		game.WinnerID, game.LoserID = pb.ID, pa.ID
	}
	return game
}
