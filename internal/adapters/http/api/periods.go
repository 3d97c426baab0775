package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/glicko/internal/app"
	"github.com/okian/glicko/internal/domain/types"
)

// PeriodDependencies defines the period operation.
type PeriodDependencies interface {
	ClosePeriod(ctx context.Context) (types.PeriodSummary, error)
}

// PeriodsHandler closes rating periods.
type PeriodsHandler struct {
	deps PeriodDependencies
}

// NewPeriodsHandler creates a new periods handler.
func NewPeriodsHandler(deps PeriodDependencies) *PeriodsHandler {
	return &PeriodsHandler{deps: deps}
}

type periodResponse struct {
	types.PeriodSummary
	Warning string `json:"warning,omitempty"`
}

// HandleClose handles POST /periods/close.
func (h *PeriodsHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	const op = "api.close_period"
	summary, err := h.deps.ClosePeriod(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, periodResponse{PeriodSummary: summary})
	case errors.Is(err, service.ErrPersist):
		// Ratings were committed; only the write is outstanding.
		writeJSON(w, http.StatusOK, periodResponse{PeriodSummary: summary, Warning: Wrap(op, err).Error()})
	default:
		writeServiceError(w, op, err)
	}
}
