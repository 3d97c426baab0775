package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/okian/glicko/internal/domain/types"
	"github.com/okian/glicko/pkg/logger"
)

// ErrWeakCorrelation is returned when ratings fail to track true strength.
var ErrWeakCorrelation = errors.New("ratings do not track player strength")

// verifyResults checks that the served ratings are sane and order the
// players roughly by their hidden strength.
func verifyResults(ctx context.Context, config *Config, players []contender, rated []types.Player, stats *Stats) error {
	log := logger.Get().Named("verify")

	if len(rated) != len(players) {
		return fmt.Errorf("fetched %d ratings for %d players", len(rated), len(players))
	}

	strengths := make([]float64, len(players))
	ratings := make([]float64, len(rated))
	for i, p := range rated {
		if p.ID.String() != players[i].ID {
			return fmt.Errorf("rating %d belongs to %s, want %s", i, p.ID, players[i].ID)
		}
		if !(p.Deviation > 0) || math.IsInf(p.Deviation, 0) || math.IsNaN(p.Rating) {
			return fmt.Errorf("player %s has invalid rating %v±%v", p.ID, p.Rating, p.Deviation)
		}
		strengths[i] = players[i].Strength
		ratings[i] = p.Rating
	}

	stats.Correlation = spearman(strengths, ratings)
	log.Info(ctx, "rank correlation",
		logger.Float64("rho", stats.Correlation),
		logger.Float64("required", config.MinCorrelation))

	if config.Verbose {
		displayTopPlayers(ctx, players, rated)
	}

	if stats.Correlation < config.MinCorrelation {
		return fmt.Errorf("%w: rho %.3f < %.3f", ErrWeakCorrelation, stats.Correlation, config.MinCorrelation)
	}
	return nil
}

// spearman is the rank correlation of xs and ys. Ties share their mean rank.
func spearman(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	return pearson(ranks(xs), ranks(ys))
}

func ranks(vs []float64) []float64 {
	idx := make([]int, len(vs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return vs[idx[a]] < vs[idx[b]] })

	out := make([]float64, len(vs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && vs[idx[j+1]] == vs[idx[i]] {
			j++
		}
		mean := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = mean
		}
		i = j + 1
	}
	return out
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// displayTopPlayers logs the highest rated players next to their strength.
func displayTopPlayers(ctx context.Context, players []contender, rated []types.Player) {
	order := make([]int, len(rated))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return rated[order[a]].Rating > rated[order[b]].Rating })

	topN := min(10, len(order))
	for rank, i := range order[:topN] {
		logger.Get().Info(ctx, "top player",
			logger.Int("rank", rank+1),
			logger.String("id", players[i].ID),
			logger.Float64("rating", rated[i].Rating),
			logger.Float64("deviation", rated[i].Deviation),
			logger.Float64("strength", players[i].Strength))
	}
}
