// Package service runs rating periods over a roster of players and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/okian/glicko/internal/adapters/repository"
	"github.com/okian/glicko/internal/domain/dedupe"
	"github.com/okian/glicko/internal/domain/model"
	"github.com/okian/glicko/internal/domain/types"
	"github.com/okian/glicko/pkg/glicko2"
	"github.com/okian/glicko/pkg/logger"
	"github.com/okian/glicko/pkg/metrics"
)

// Rejection reasons reported to metrics.
const (
	reasonInvalid       = "invalid"
	reasonUnknownPlayer = "unknown_player"
	reasonSelfPairing   = "self_pairing"
	reasonDuplicate     = "duplicate"
)

// resultCounter counts accepted results by kind. *metrics.Manager is one.
type resultCounter interface {
	RecordResult(kind string) error
}

// Service owns the roster, the open rating period and the calculator.
// All access to the core goes through mu.
type Service struct {
	mu sync.Mutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	calc    *glicko2.Calculator
	period  *glicko2.PeriodResultSet
	roster  map[uuid.UUID]*glicko2.Rating
	dirty   mapset.Set[uuid.UUID]

	// Configuration
	tau               float64
	defaultVolatility float64
	maxIterations     int
	dedupeSize        int
	observer          glicko2.Observer

	// State
	started bool
	stopped bool
	closed  int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets where ratings are loaded from and persisted to.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithTau sets the calculator's volatility constraint.
func WithTau(tau float64) Option {
	return func(s *Service) {
		s.tau = tau
	}
}

// WithDefaultVolatility sets the volatility of newly registered players.
func WithDefaultVolatility(v float64) Option {
	return func(s *Service) {
		s.defaultVolatility = v
	}
}

// WithMaxSolverIterations bounds the volatility solve.
func WithMaxSolverIterations(n int) Option {
	return func(s *Service) {
		s.maxIterations = n
	}
}

// WithDedupeSize sets how many result ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithObserver receives calculator statistics, typically the metrics manager.
func WithObserver(o glicko2.Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		tau:               0.5,
		defaultVolatility: 0.06,
		maxIterations:     100,
		dedupeSize:        100_000,
		observer:          metrics.Default(),
		roster:            make(map[uuid.UUID]*glicko2.Rating),
		dirty:             mapset.NewThreadUnsafeSet[uuid.UUID](),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the calculator and loads every stored player into the roster.
// Loaded players are tracked, so they age while idle. A stopped service has
// closed its store and cannot be started again.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	calc, err := glicko2.NewCalculator(
		glicko2.WithTau(s.tau),
		glicko2.WithDefaultVolatility(s.defaultVolatility),
		glicko2.WithMaxIterations(s.maxIterations),
		glicko2.WithObserver(s.observer),
	)
	if err != nil {
		return err
	}
	s.calc = calc
	s.period = glicko2.NewPeriodResultSet()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	var snaps []glicko2.Snapshot
	err = s.timed("list", func() error {
		var err error
		snaps, err = s.store.List(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	for _, snap := range snaps {
		r, err := glicko2.RestoreRating(snap)
		if err != nil {
			return fmt.Errorf("restore %s: %w", snap.ID, err)
		}
		s.roster[snap.ID] = r
		s.period.AddParticipant(r)
	}

	s.started = true
	metrics.UpdateTrackedPlayers(len(s.roster))
	metrics.UpdatePendingResults(0)
	s.logger.Info(ctx, "rating service started",
		logger.Int("players", len(s.roster)),
		logger.Float64("tau", s.tau),
		logger.Float64("defaultVolatility", s.defaultVolatility),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the store and drops the roster. Unpersisted ratings are
// logged, not flushed.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if n := s.dirty.Cardinality(); n > 0 {
		s.logger.Warn(ctx, "stopping with unpersisted ratings", logger.Int("players", n))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "close store", logger.Error(err))
	}
	clear(s.roster)
	s.dirty.Clear()
	s.period = nil
	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "rating service stopped")
}

// RegisterPlayer adds a player to the roster and tracks it from the current period on.
func (s *Service) RegisterPlayer(ctx context.Context, reg model.Registration) (types.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return types.Player{}, ErrNotStarted
	}

	id := reg.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	if _, exists := s.roster[id]; exists {
		return types.Player{}, fmt.Errorf("%w: %s", ErrPlayerExists, id)
	}

	r := s.calc.NewRating(id)
	if reg.Rating != 0 || reg.Deviation != 0 || reg.Volatility != 0 {
		var err error
		r, err = glicko2.NewRating(id,
			orDefault(reg.Rating, s.calc.DefaultRating()),
			orDefault(reg.Deviation, s.calc.DefaultDeviation()),
			orDefault(reg.Volatility, s.calc.DefaultVolatility()),
		)
		if err != nil {
			return types.Player{}, err
		}
	}

	s.roster[id] = r
	s.period.AddParticipant(r)
	s.dirty.Add(id)
	metrics.UpdateTrackedPlayers(len(s.roster))

	// A failed write leaves the player dirty for the next period close.
	if err := s.persist(ctx); err != nil {
		s.logger.Warn(ctx, "registration not persisted yet", logger.Stringer("player", id), logger.Error(err))
	}

	s.logger.Info(ctx, "player registered", logger.Stringer("player", r))
	return s.view(r), nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Player returns the current rating of id.
func (s *Service) Player(_ context.Context, id uuid.UUID) (types.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return types.Player{}, ErrNotStarted
	}
	r, ok := s.roster[id]
	if !ok {
		return types.Player{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	return s.view(r), nil
}

func (s *Service) view(r *glicko2.Rating) types.Player {
	return types.NewPlayer(r.Snapshot(), s.period.Tracked(r), len(s.period.ResultsFor(r)))
}

// Untrack stops updating id while it has no results. Results already
// recorded this period still count.
func (s *Service) Untrack(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	r, ok := s.roster[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	s.period.RemoveParticipant(r)
	s.logger.Info(ctx, "player untracked", logger.Stringer("player", id))
	return nil
}

// RecordResult adds an outcome to the open period. It reports duplicate
// when the result id was already recorded; that is not an error.
func (s *Service) RecordResult(ctx context.Context, o model.Outcome) (bool, error) {
	if err := o.Validate(); err != nil {
		metrics.RecordResultRejected(reasonInvalid)
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return false, ErrNotStarted
	}

	winner, okW := s.roster[o.WinnerID]
	loser, okL := s.roster[o.LoserID]
	if !okW || !okL {
		metrics.RecordResultRejected(reasonUnknownPlayer)
		missing := o.WinnerID
		if okW {
			missing = o.LoserID
		}
		return false, fmt.Errorf("%w: %s", ErrUnknownPlayer, missing)
	}

	if s.deduper.SeenAndRecord(ctx, o.ResultID) {
		metrics.RecordResultRejected(reasonDuplicate)
		s.logger.Debug(ctx, "duplicate result", logger.String("resultID", o.ResultID))
		return true, nil
	}

	var err error
	if o.Draw {
		err = s.period.AddDraw(winner, loser)
	} else {
		err = s.period.AddResult(winner, loser)
	}
	if err != nil {
		s.deduper.Unrecord(ctx, o.ResultID)
		reason := reasonInvalid
		if errors.Is(err, glicko2.ErrSelfPairing) {
			reason = reasonSelfPairing
		}
		metrics.RecordResultRejected(reason)
		return false, err
	}

	counter, ok := s.observer.(resultCounter)
	if !ok {
		counter = metrics.Default()
	}
	if err := counter.RecordResult(o.Kind()); err != nil {
		s.logger.Debug(ctx, "result not counted", logger.String("kind", o.Kind()), logger.Error(err))
	}
	metrics.UpdatePendingResults(s.period.ResultCount())
	s.logger.Debug(ctx, "result recorded",
		logger.String("resultID", o.ResultID),
		logger.Stringer("winner", o.WinnerID),
		logger.Stringer("loser", o.LoserID),
		logger.Bool("draw", o.Draw),
	)
	return false, nil
}

// ClosePeriod rates every participant of the open period, persists the new
// ratings and opens the next period.
//
// If rating fails nothing changes and the period stays open. If only the
// write fails the ratings are committed, the summary is returned with
// ErrPersist, and the players are written by the next close.
func (s *Service) ClosePeriod(ctx context.Context) (types.PeriodSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return types.PeriodSummary{}, ErrNotStarted
	}

	start := time.Now()
	participants := s.period.Participants()
	summary := types.PeriodSummary{Period: s.closed + 1, Results: s.period.ResultCount()}
	for _, p := range participants {
		if len(s.period.ResultsFor(p)) > 0 {
			summary.Active++
		} else {
			summary.Idle++
		}
	}

	if err := s.calc.UpdateRatings(s.period); err != nil {
		metrics.RecordPeriodFailed()
		s.logger.Error(ctx, "rating period failed", logger.Int("period", summary.Period), logger.Error(err))
		return types.PeriodSummary{}, err
	}
	s.closed++
	for _, p := range participants {
		s.dirty.Add(p.ID())
	}
	metrics.UpdatePendingResults(0)

	pending := s.dirty.Cardinality()
	persistErr := s.persist(ctx)
	if persistErr == nil {
		summary.Persisted = pending
	}

	summary.ClosedAt = time.Now()
	summary.DurationMs = float64(time.Since(start).Microseconds()) / 1000.0
	metrics.RecordPeriodDuration(summary.DurationMs)

	if persistErr != nil {
		s.logger.Error(ctx, "rating period committed but not persisted",
			logger.Int("period", summary.Period),
			logger.Int("dirty", pending),
			logger.Error(persistErr),
		)
		return summary, fmt.Errorf("%w: %w", ErrPersist, persistErr)
	}

	s.logger.Info(ctx, "rating period closed",
		logger.Int("period", summary.Period),
		logger.Int("active", summary.Active),
		logger.Int("idle", summary.Idle),
		logger.Int("results", summary.Results),
		logger.Duration("took", time.Since(start)),
	)
	return summary, nil
}

// persist writes every dirty player. Must hold mu.
func (s *Service) persist(ctx context.Context) error {
	if s.dirty.Cardinality() == 0 {
		return nil
	}
	snaps := make([]glicko2.Snapshot, 0, s.dirty.Cardinality())
	for _, id := range s.dirty.ToSlice() {
		if r, ok := s.roster[id]; ok {
			snaps = append(snaps, r.Snapshot())
		}
	}
	err := s.timed("put_all", func() error {
		return s.store.PutAll(ctx, snaps)
	})
	if err != nil {
		return err
	}
	s.dirty.Clear()
	return nil
}

func (s *Service) timed(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000.0)
	if err != nil {
		metrics.RecordStoreError(op)
	}
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]any{
		"started":           s.started,
		"tau":               s.tau,
		"defaultVolatility": s.defaultVolatility,
		"dedupeSize":        s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	tracked := 0
	for _, r := range s.roster {
		if s.period.Tracked(r) {
			tracked++
		}
	}
	stats["players"] = len(s.roster)
	stats["tracked"] = tracked
	stats["pendingResults"] = s.period.ResultCount()
	stats["periodsClosed"] = s.closed
	stats["unpersisted"] = s.dirty.Cardinality()
	stats["seenResults"] = s.deduper.Size()

	var stored int
	err := s.timed("count", func() error {
		var err error
		stored, err = s.store.Count(ctx)
		return err
	})
	if err == nil {
		stats["stored"] = stored
	}

	metrics.UpdateTrackedPlayers(len(s.roster))
	metrics.UpdatePendingResults(s.period.ResultCount())
	return stats
}
