// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	service "github.com/okian/glicko/internal/app"
	"github.com/okian/glicko/internal/domain/model"
	"github.com/okian/glicko/internal/domain/types"
	"github.com/okian/glicko/pkg/glicko2"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PlayerDependencies
	ResultDependencies
	PeriodDependencies
	StatsProvider
}

// Server wires HTTP routes for the rating API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	resultsHandler *ResultsHandler
	periodsHandler *PeriodsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		playersHandler: NewPlayersHandler(deps),
		resultsHandler: NewResultsHandler(deps),
		periodsHandler: NewPeriodsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /players", MetricsMiddleware(s.playersHandler.HandleCreate, "players"))
	mux.HandleFunc("GET /players/{id}", MetricsMiddleware(s.playersHandler.HandleGet, "player"))
	mux.HandleFunc("DELETE /players/{id}/tracking", MetricsMiddleware(s.playersHandler.HandleUntrack, "tracking"))
	mux.HandleFunc("POST /results", MetricsMiddleware(s.resultsHandler.HandlePostResult, "results"))
	mux.HandleFunc("POST /periods/close", MetricsMiddleware(s.periodsHandler.HandleClose, "periods"))
}

// Player mirrors the read shape returned for a competitor.
type Player = types.Player

type playerRequest struct {
	ID         *uuid.UUID `json:"id"`
	Rating     float64    `json:"rating"`
	Deviation  float64    `json:"deviation"`
	Volatility float64    `json:"volatility"`
}

func (p playerRequest) registration() model.Registration {
	reg := model.Registration{Rating: p.Rating, Deviation: p.Deviation, Volatility: p.Volatility}
	if p.ID != nil {
		reg.ID = *p.ID
	}
	return reg
}

// resultRequest is the body of POST /results.
type resultRequest struct {
	ResultID string    `json:"result_id"`
	WinnerID uuid.UUID `json:"winner_id"`
	LoserID  uuid.UUID `json:"loser_id"`
	Draw     bool      `json:"draw"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and rating error kinds to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidOutcome),
		errors.Is(err, glicko2.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrUnknownPlayer):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrPlayerExists):
		writeError(w, http.StatusConflict, "conflict", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	case errors.Is(err, glicko2.ErrNoConvergence),
		errors.Is(err, glicko2.ErrNonFinite):
		writeError(w, http.StatusUnprocessableEntity, "rating_failed", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
