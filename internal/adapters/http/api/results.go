package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/glicko/internal/domain/model"
)

// ResultDependencies defines the intake operation.
type ResultDependencies interface {
	// RecordResult adds an outcome to the open period. duplicate reports a
	// result id that was already recorded.
	RecordResult(ctx context.Context, o model.Outcome) (duplicate bool, err error)
}

// ResultsHandler handles result submissions.
type ResultsHandler struct {
	deps ResultDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandlePostResult handles POST /results.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_result"
	var req resultRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	duplicate, err := h.deps.RecordResult(r.Context(), model.Outcome{
		ResultID:   req.ResultID,
		WinnerID:   req.WinnerID,
		LoserID:    req.LoserID,
		Draw:       req.Draw,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
