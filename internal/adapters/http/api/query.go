// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/satlens/internal/domain/types"
)

// maxRankLimit bounds the top and bottom query parameters.
const maxRankLimit = 1000

// QueryDependencies are the read-only viewer queries.
type QueryDependencies interface {
	State(ctx context.Context) types.State
	Object(ctx context.Context, id string) (types.ObjectDetail, error)
	Legend(ctx context.Context) types.Legend
	Rankings(ctx context.Context, metric string, topN, bottomN int) (types.Rankings, error)
}

// QueryHandler handles the read routes.
type QueryHandler struct {
	deps QueryDependencies
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(deps QueryDependencies) *QueryHandler {
	return &QueryHandler{deps: deps}
}

// HandleState handles GET /state.
func (h *QueryHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.State(r.Context()))
}

// HandleObject handles GET /objects/{id}.
func (h *QueryHandler) HandleObject(w http.ResponseWriter, r *http.Request) {
	const op = "api.object"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	detail, err := h.deps.Object(r.Context(), id)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleLegend handles GET /legend.
func (h *QueryHandler) HandleLegend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Legend(r.Context()))
}

// HandleRankings handles GET /rankings?metric=&top=&bottom=. Missing
// parameters fall back to the configured defaults.
func (h *QueryHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.rankings"
	q := r.URL.Query()
	top, err := parseLimit(q.Get("top"))
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	bottom, err := parseLimit(q.Get("bottom"))
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Rankings(r.Context(), strings.TrimSpace(q.Get("metric")), top, bottom)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseLimit returns -1 for an absent value.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if n < 0 || n > maxRankLimit {
		return 0, errors.New("limit out of range")
	}
	return n, nil
}
