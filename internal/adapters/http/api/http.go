// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	service "github.com/okian/satlens/internal/app"
	"github.com/okian/satlens/internal/domain/types"
	"github.com/okian/satlens/pkg/logger"
)

// maxBodyBytes bounds request bodies on POST routes.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ViewerDependencies
	QueryDependencies
	StatsProvider

	Health() types.Health
}

// Server wires HTTP routes for the viewer API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	viewerHandler *ViewerHandler
	queryHandler  *QueryHandler

	token  string
	logger logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithToken enables Bearer auth on mutating routes.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(deps),
		viewerHandler: NewViewerHandler(deps),
		queryHandler:  NewQueryHandler(deps),
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.Handle(pattern, RequestID(s.logger, MetricsMiddleware(h, endpoint)))
	}
	mutate := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.Handle(pattern, RequestID(s.logger, MetricsMiddleware(Auth(s.token, h), endpoint)))
	}

	handle("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	handle("GET /metrics", "metrics", s.healthHandler.HandleMetrics)
	handle("GET /stats", "stats", s.statsHandler.HandleStats)

	handle("GET /state", "state", s.queryHandler.HandleState)
	handle("GET /objects/{id}", "objects", s.queryHandler.HandleObject)
	handle("GET /legend", "legend", s.queryHandler.HandleLegend)
	handle("GET /rankings", "rankings", s.queryHandler.HandleRankings)

	mutate("POST /pick", "pick", s.viewerHandler.HandlePick)
	mutate("POST /search", "search", s.viewerHandler.HandleSearch)
	mutate("POST /metric", "metric", s.viewerHandler.HandleMetric)
	mutate("POST /reset", "reset", s.viewerHandler.HandleReset)
	mutate("POST /home", "home", s.viewerHandler.HandleHome)
	mutate("POST /rankings/toggle", "rankings_toggle", s.viewerHandler.HandleToggleRankings)
	mutate("POST /layout", "layout", s.viewerHandler.HandleLayout)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ackResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status mapped from err's kind.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, op string, v any) error {
	if r.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	if len(raw) > maxBodyBytes {
		return WrapKind(op, ErrBadRequest, errors.New("request body too large"))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// compile-time check that the service satisfies the handler contracts.
var _ Dependencies = (*service.Service)(nil)
