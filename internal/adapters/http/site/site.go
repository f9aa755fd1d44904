// Package site serves the embedded viewer shell.
package site

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/satlens/internal/adapters/http/api"
	"github.com/okian/satlens/pkg/logger"
)

// Error constants
var (
	ErrServe = errors.New("viewer site serve failed")
)

// Searcher queues a search that runs once the dataset has loaded.
type Searcher interface {
	QueueSearch(ctx context.Context, id string) error
}

// Option configures the site routes.
type Option func(*RootHandler)

// WithToken requires the API bearer token before ?id= may change the
// selection. The page itself is served either way.
func WithToken(token string) Option {
	return func(h *RootHandler) { h.token = token }
}

// Register attaches the viewer shell routes to mux.
//
//	GET /          -> index.html; ?id=<id> queues a search for id
//	GET /assets/*  -> embedded scripts and styles
func Register(_ context.Context, mux *http.ServeMux, searcher Searcher, log logger.Logger, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	h := NewRootHandler(searcher, log)
	for _, opt := range opts {
		opt(h)
	}
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(FS())))
}

// RootHandler serves the viewer page.
type RootHandler struct {
	searcher Searcher
	token    string
	logger   logger.Logger
}

// NewRootHandler creates a new root handler.
func NewRootHandler(searcher Searcher, log logger.Logger) *RootHandler {
	return &RootHandler{searcher: searcher, logger: log}
}

// HandleRoot handles GET / and honours the id query parameter.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" && h.searcher != nil {
		h.search(r, id)
	}
	http.ServeFileFS(w, r, staticFS, "static/index.html")
}

// search queues the id search. The page renders regardless; a failed search
// shows up as a notice.
func (h *RootHandler) search(r *http.Request, id string) {
	if !api.Authorized(h.token, r) {
		h.logger.Warn(r.Context(), "unauthorized id search ignored", logger.String("id", id))
		return
	}
	if err := h.searcher.QueueSearch(r.Context(), id); err != nil {
		h.logger.Warn(r.Context(), "initial search failed", logger.String("id", id), logger.Error(err))
	}
}
