// Package glicko2 implements Glickman's Glicko-2 rating system as a batch,
// per-period update over a set of competitors.
//
// A typical period:
//
//	calc, _ := glicko2.NewCalculator(glicko2.WithTau(0.5))
//	set := glicko2.NewPeriodResultSet()
//	_ = set.AddResult(alice, bob)
//	_ = set.AddDraw(bob, carol)
//	if err := calc.UpdateRatings(set); err != nil { ... }
//
// The package does no I/O and no locking. Loading and persisting ratings
// between periods is the caller's job.
package glicko2

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Default calculator configuration constants.
const (
	defaultTau           = 0.75
	defaultVolatility    = 0.06
	defaultMaxIterations = 100
)

// Observer receives statistics about committed rating periods.
type Observer interface {
	// ObserveSolve is called once per competitor whose volatility was solved,
	// with the number of Illinois iterations used.
	ObserveSolve(iterations int)
	// ObservePeriod is called once per committed period.
	ObservePeriod(active, idle, results int)
}

type noopObserver struct{}

func (noopObserver) ObserveSolve(int)            {}
func (noopObserver) ObservePeriod(int, int, int) {}

// Calculator is the rating engine. It holds the system constants and runs
// the batch update for a rating period.
type Calculator struct {
	tau               float64
	defaultVolatility float64
	maxIterations     int
	observer          Observer
}

// NewCalculator creates a calculator with the given options applied over the
// defaults (tau 0.75, volatility 0.06).
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		tau:               defaultTau,
		defaultVolatility: defaultVolatility,
		maxIterations:     defaultMaxIterations,
		observer:          noopObserver{},
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case !positive(c.tau):
		return nil, fmt.Errorf("%w: tau %v must be positive", ErrInvalidConfig, c.tau)
	case !positive(c.defaultVolatility):
		return nil, fmt.Errorf("%w: default volatility %v must be positive", ErrInvalidConfig, c.defaultVolatility)
	case c.maxIterations <= 0:
		return nil, fmt.Errorf("%w: max iterations %d must be positive", ErrInvalidConfig, c.maxIterations)
	}
	return c, nil
}

// Tau returns the volatility change constraint.
func (c *Calculator) Tau() float64 { return c.tau }

// DefaultRating returns the rating given to new competitors.
func (c *Calculator) DefaultRating() float64 { return DefaultRating }

// DefaultDeviation returns the deviation given to new competitors.
func (c *Calculator) DefaultDeviation() float64 { return DefaultDeviation }

// DefaultVolatility returns the volatility given to new competitors.
func (c *Calculator) DefaultVolatility() float64 { return c.defaultVolatility }

// NewRating creates a competitor with the system defaults.
func (c *Calculator) NewRating(id uuid.UUID) *Rating {
	return &Rating{
		id:         id,
		rating:     DefaultRating,
		deviation:  DefaultDeviation,
		volatility: c.defaultVolatility,
	}
}

// update is the outcome of phase one for a single competitor, on the
// Glicko-2 scale.
type update struct {
	player     *Rating
	rating     float64
	deviation  float64
	volatility float64
	results    int
	iterations int
}

// UpdateRatings runs one rating period over every participant of set.
//
// New values are computed for all participants against their current
// ratings before any of them is committed, so the processing order is not
// observable. If any participant fails, no rating is changed and set is left
// as it was. On success the set's results are cleared; explicit participant
// registrations are kept.
func (c *Calculator) UpdateRatings(set *PeriodResultSet) error {
	participants := set.Participants()

	updates := make([]update, 0, len(participants))
	for _, p := range participants {
		u, err := c.compute(p, set.ResultsFor(p))
		if err != nil {
			return fmt.Errorf("rating %s: %w", p.id, err)
		}
		updates = append(updates, u)
	}

	var active, idle int
	for _, u := range updates {
		u.player.setWorkingRating(u.rating)
		u.player.setWorkingDeviation(u.deviation)
		u.player.setWorkingVolatility(u.volatility)
		u.player.finalize()
		u.player.incrementResultCount(u.results)

		if u.results == 0 {
			idle++
			continue
		}
		active++
		c.observer.ObserveSolve(u.iterations)
	}
	c.observer.ObservePeriod(active, idle, set.ResultCount())

	set.Clear()
	return nil
}

// compute derives a competitor's new values from its current state and its
// results this period. It reads only current values and mutates nothing.
func (c *Calculator) compute(player *Rating, results []*Result) (update, error) {
	if err := validateState(player.rating, player.deviation, player.volatility); err != nil {
		return update{}, err
	}

	mu := player.InternalRating()
	phi := player.InternalDeviation()
	sigma := player.volatility

	// An idle competitor only grows uncertain.
	if len(results) == 0 {
		return update{
			player:     player,
			rating:     mu,
			deviation:  math.Sqrt(phi*phi + sigma*sigma),
			volatility: sigma,
		}, nil
	}

	v, err := variance(player, results)
	if err != nil {
		return update{}, err
	}
	outcome, err := outcomeSum(player, results)
	if err != nil {
		return update{}, err
	}

	delta := v * outcome

	newSigma, iterations, err := c.solveVolatility(phi, sigma, delta, v)
	if err != nil {
		return update{}, err
	}

	phiStar := math.Sqrt(phi*phi + newSigma*newSigma)
	newPhi := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	newMu := mu + newPhi*newPhi*outcome
	if !finite(newMu) || !positive(newPhi) || !positive(newSigma) {
		return update{}, fmt.Errorf("%w: update %v / %v / %v", ErrNonFinite, newMu, newPhi, newSigma)
	}

	return update{
		player:     player,
		rating:     newMu,
		deviation:  newPhi,
		volatility: newSigma,
		results:    len(results),
		iterations: iterations,
	}, nil
}

// g discounts an opponent's contribution by that opponent's uncertainty.
func g(deviation float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*deviation*deviation/(math.Pi*math.Pi))
}

// expectedScore is the logistic expected score of rating against an opponent.
func expectedScore(rating, oppRating, oppDeviation float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(oppDeviation)*(rating-oppRating)))
}

// variance is the estimated variance of the player's performance over results.
func variance(player *Rating, results []*Result) (float64, error) {
	mu := player.InternalRating()
	var sum float64
	for _, res := range results {
		opp, err := res.Opponent(player)
		if err != nil {
			return 0, err
		}
		oppPhi := opp.InternalDeviation()
		e := expectedScore(mu, opp.InternalRating(), oppPhi)
		gPhi := g(oppPhi)
		sum += gPhi * gPhi * e * (1.0 - e)
	}
	v := 1.0 / sum
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: variance", ErrNonFinite)
	}
	return v, nil
}

// outcomeSum is the g-weighted sum of actual minus expected scores.
func outcomeSum(player *Rating, results []*Result) (float64, error) {
	mu := player.InternalRating()
	var sum float64
	for _, res := range results {
		opp, err := res.Opponent(player)
		if err != nil {
			return 0, err
		}
		score, err := res.Score(player)
		if err != nil {
			return 0, err
		}
		oppPhi := opp.InternalDeviation()
		sum += g(oppPhi) * (score - expectedScore(mu, opp.InternalRating(), oppPhi))
	}
	return sum, nil
}
