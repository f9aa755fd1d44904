// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/satlens/internal/app"
	"github.com/okian/satlens/internal/domain/types"
)

// ViewerDependencies are the UI entry points that change viewer state.
type ViewerDependencies interface {
	Pick(ctx context.Context, id string) (types.PickResult, error)
	PickAt(ctx context.Context, x, y float64) (types.PickResult, error)
	Place(ctx context.Context, positions []service.ScreenPosition) error
	Search(ctx context.Context, query string) (types.SearchResult, error)
	SelectMetric(ctx context.Context, metric string) (types.Legend, error)
	Reset(ctx context.Context) error
	Home(ctx context.Context) error
	ToggleRankings(ctx context.Context) (types.ToggleResult, error)
}

// pickRequest is either {id}, {x,y} or {} for a click on empty space.
type pickRequest struct {
	ID string   `json:"id"`
	X  *float64 `json:"x"`
	Y  *float64 `json:"y"`
}

func (p pickRequest) byPosition() (bool, error) {
	switch {
	case p.X == nil && p.Y == nil:
		return false, nil
	case p.X == nil || p.Y == nil:
		return false, errors.New("x and y must be given together")
	case p.ID != "":
		return false, errors.New("give either id or x,y")
	}
	return true, nil
}

type searchRequest struct {
	Query string `json:"query"`
}

type metricRequest struct {
	Name string `json:"name"`
}

type layoutRequest struct {
	Positions []service.ScreenPosition `json:"positions"`
}

// ViewerHandler handles the mutating viewer routes.
type ViewerHandler struct {
	deps ViewerDependencies
}

// NewViewerHandler creates a new viewer handler.
func NewViewerHandler(deps ViewerDependencies) *ViewerHandler {
	return &ViewerHandler{deps: deps}
}

// HandlePick handles POST /pick.
func (h *ViewerHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	const op = "api.pick"
	var req pickRequest
	if err := decodeBody(r, op, &req); err != nil {
		writeError(w, err)
		return
	}
	byPos, err := req.byPosition()
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	var res types.PickResult
	if byPos {
		res, err = h.deps.PickAt(r.Context(), *req.X, *req.Y)
	} else {
		res, err = h.deps.Pick(r.Context(), strings.TrimSpace(req.ID))
	}
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSearch handles POST /search.
func (h *ViewerHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	var req searchRequest
	if err := decodeBody(r, op, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.deps.Search(r.Context(), req.Query)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleMetric handles POST /metric. A metric without data answers 200
// with an empty legend and no_data set.
func (h *ViewerHandler) HandleMetric(w http.ResponseWriter, r *http.Request) {
	const op = "api.metric"
	var req metricRequest
	if err := decodeBody(r, op, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing name")))
		return
	}
	legend, err := h.deps.SelectMetric(r.Context(), req.Name)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, legend)
}

// HandleReset handles POST /reset.
func (h *ViewerHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Reset(r.Context()); err != nil {
		writeError(w, Wrap("api.reset", err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

// HandleHome handles POST /home.
func (h *ViewerHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Home(r.Context()); err != nil {
		writeError(w, Wrap("api.home", err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

// HandleToggleRankings handles POST /rankings/toggle.
func (h *ViewerHandler) HandleToggleRankings(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.ToggleRankings(r.Context())
	if err != nil {
		writeError(w, Wrap("api.rankings_toggle", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleLayout handles POST /layout, recording where objects are drawn.
func (h *ViewerHandler) HandleLayout(w http.ResponseWriter, r *http.Request) {
	const op = "api.layout"
	var req layoutRequest
	if err := decodeBody(r, op, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Positions) == 0 {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing positions")))
		return
	}
	if err := h.deps.Place(r.Context(), req.Positions); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}
