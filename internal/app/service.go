// Package service wires the dataset store, scene, selection controller and
// event loop together and exposes the viewer entry points used by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/satlens/internal/adapters/czml"
	eventqueue "github.com/okian/satlens/internal/adapters/mq/queue"
	"github.com/okian/satlens/internal/adapters/mq/worker"
	"github.com/okian/satlens/internal/adapters/repository"
	"github.com/okian/satlens/internal/adapters/scene"
	"github.com/okian/satlens/internal/domain/binning"
	"github.com/okian/satlens/internal/domain/ranking"
	"github.com/okian/satlens/internal/domain/selection"
	"github.com/okian/satlens/internal/domain/types"
	"github.com/okian/satlens/pkg/logger"
	"github.com/okian/satlens/pkg/metrics"
	"github.com/okian/satlens/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ScreenPosition places an object on screen for picking.
type ScreenPosition struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Service implements the API dependencies for the viewer.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader     Loader
	watcher    Watcher
	store      *repository.MemoryStore
	scene      *scene.Scene
	controller *selection.Controller
	queue      *eventqueue.InMemoryQueue
	loop       *worker.Loop

	// Configuration
	mode          selection.Mode
	binCount      int
	rankMetric    string
	topN          int
	bottomN       int
	defaultMetric string
	flyDuration   time.Duration
	queueSize     int
	initialSearch string
	now           func() time.Time

	// State
	started bool
	ready   bool
	loadErr error
	pending string
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// loadMu keeps dataset loads from overlapping.
	loadMu sync.Mutex

	// Logging
	logger logger.Logger
}

// New constructs a Service. Start must be called before any entry point.
func New(opts ...Option) *Service {
	s := &Service{
		mode:        selection.ModeAccumulate,
		binCount:    5,
		rankMetric:  ranking.DefaultMetric,
		topN:        ranking.DefaultTopN,
		bottomN:     ranking.DefaultBottomN,
		flyDuration: 3 * time.Second,
		queueSize:   1024,
		now:         time.Now,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = repository.NewMemoryStore(repository.WithClock(s.now))
	s.scene = scene.New(
		scene.WithFlyDuration(s.flyDuration),
		scene.WithLogger(s.logger.Named("scene")),
	)
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.loop = worker.NewLoop(s.queue, worker.WithLogger(s.logger))
	s.controller = selection.New(s.store, s.scene,
		selection.WithMode(s.mode),
		selection.WithBinCount(s.binCount),
		selection.WithRanking(s.rankMetric, s.topN, s.bottomN),
		selection.WithDispatcher(s.dispatch),
		selection.WithLogger(s.logger.Named("selection")),
	)
	return s
}

// dispatch posts a fly-to completion back onto the loop.
func (s *Service) dispatch(fn func()) {
	_ = s.loop.Post("flight_complete", func(context.Context) error {
		fn()
		return nil
	})
}

// Start runs the event loop and begins the dataset load in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.loader == nil {
		return ErrNoLoader
	}

	s.logger.Info(ctx, "starting viewer service...")
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.loop.Run(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		// Failures are logged and leave the service loading.
		_ = s.loadDataset(runCtx, "startup")
	}()

	if s.watcher != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			err := s.watcher.Watch(runCtx, func() {
				_ = s.loadDataset(runCtx, "reload")
			})
			if err != nil {
				s.logger.Error(runCtx, "dataset watcher stopped", logger.Error(err))
			}
		}()
	}

	if s.pending == "" {
		s.pending = s.initialSearch
	}

	s.started = true
	metrics.UpdateDatasetReady(false)
	s.logger.Info(ctx, "viewer service started",
		logger.String("mode", string(s.mode)),
		logger.Int("bins", s.binCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop shuts the loop down and waits for background work.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping viewer service...")
	if err := s.loop.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "event loop shutdown", logger.Error(err))
	}
	cancel()
	_ = s.queue.Close()
	s.wg.Wait()
	s.logger.Info(ctx, "viewer service stopped")
}

// Reload fetches and applies the dataset again.
func (s *Service) Reload(ctx context.Context) error {
	return s.loadDataset(ctx, "reload")
}

func sourceKind(source string) string {
	kind, _, _ := strings.Cut(source, ":")
	return kind
}

func (s *Service) loadDataset(ctx context.Context, reason string) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ctx, span := tracing.Tracer().Start(ctx, "dataset.load")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.reason", reason))

	start := time.Now()
	source, data, err := s.loader.Load(ctx)
	var doc czml.Document
	if err == nil {
		doc, err = czml.DecodeBytes(data)
	}
	if err == nil {
		err = s.loop.Submit(ctx, "dataset_loaded", func(ctx context.Context) error {
			return s.applyDataset(ctx, source, doc)
		})
	}
	metrics.RecordDatasetLoadLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordDatasetLoad(sourceKind(source), "error")
		metrics.RecordErrorByComponent("service", "dataset_load")
		span.RecordError(err)
		span.SetStatus(codes.Error, "dataset load failed")
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		s.logger.Error(ctx, "dataset load failed",
			logger.String("reason", reason),
			logger.String("source", source),
			logger.Error(err),
		)
		return err
	}

	metrics.RecordDatasetLoad(sourceKind(source), "ok")
	span.SetAttributes(attribute.Int("dataset.entities", len(doc.Entities)))
	s.logger.Info(ctx, "dataset loaded",
		logger.String("reason", reason),
		logger.String("source", source),
		logger.String("name", doc.Name),
		logger.Int("entities", len(doc.Entities)),
		logger.Int("skipped_properties", len(doc.Skipped)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// applyDataset runs on the loop.
func (s *Service) applyDataset(ctx context.Context, source string, doc czml.Document) error {
	if _, err := s.store.Replace(ctx, source, doc.Entities); err != nil {
		return fmt.Errorf("store dataset: %w", err)
	}
	s.scene.Load(doc.Entities)
	s.controller.Refresh(ctx)

	s.mu.Lock()
	first := !s.ready
	s.ready = true
	s.loadErr = nil
	pending := s.pending
	s.pending = ""
	s.mu.Unlock()
	metrics.UpdateDatasetReady(true)

	if first && s.defaultMetric != "" {
		if err := s.controller.SelectMetric(ctx, s.defaultMetric); err != nil {
			s.logger.Warn(ctx, "default metric not applied",
				logger.String("metric", s.defaultMetric),
				logger.Error(err),
			)
		}
	}
	if pending != "" {
		if _, err := s.controller.Search(ctx, pending); err != nil {
			s.logger.Info(ctx, "queued search failed", logger.String("id", pending), logger.Error(err))
		}
	}
	return nil
}

func (s *Service) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *Service) submit(ctx context.Context, kind string, fn eventqueue.Handler) error {
	s.mu.RLock()
	started, ready := s.started, s.ready
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	if !ready {
		return ErrNotReady
	}
	return s.loop.Submit(ctx, kind, fn)
}

// Pick handles a click on id; an empty id means empty space.
func (s *Service) Pick(ctx context.Context, id string) (types.PickResult, error) {
	var res types.PickResult
	err := s.submit(ctx, "pick", func(ctx context.Context) error {
		if err := s.controller.Pick(ctx, id); err != nil {
			return err
		}
		res = types.PickResult{ID: id, Highlighted: s.controller.State().Highlighted}
		return nil
	})
	return res, err
}

// PickAt handles a click at a screen coordinate.
func (s *Service) PickAt(ctx context.Context, x, y float64) (types.PickResult, error) {
	var res types.PickResult
	err := s.submit(ctx, "pick", func(ctx context.Context) error {
		id, err := s.controller.PickAt(ctx, x, y)
		if err != nil {
			return err
		}
		res = types.PickResult{ID: id, Highlighted: s.controller.State().Highlighted}
		return nil
	})
	return res, err
}

// Place records where objects are drawn so PickAt can resolve them.
func (s *Service) Place(ctx context.Context, positions []ScreenPosition) error {
	return s.submit(ctx, "place", func(context.Context) error {
		for _, p := range positions {
			if !s.store.Has(p.ID) {
				return fmt.Errorf("%w: %s", selection.ErrNotFound, p.ID)
			}
		}
		for _, p := range positions {
			s.scene.SetScreenPosition(p.ID, p.X, p.Y)
		}
		return nil
	})
}

// Search looks up query and flies to it.
func (s *Service) Search(ctx context.Context, query string) (types.SearchResult, error) {
	var res types.SearchResult
	err := s.submit(ctx, "search", func(ctx context.Context) error {
		id, err := s.controller.Search(ctx, query)
		res.ID = id
		return err
	})
	return res, err
}

// QueueSearch searches for id now, or once the dataset has loaded. Only the
// latest id queued during loading is searched.
func (s *Service) QueueSearch(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return selection.ErrEmptyQuery
	}
	s.mu.Lock()
	if !s.ready {
		s.pending = id
		s.mu.Unlock()
		s.logger.Debug(ctx, "search queued until dataset loads", logger.String("id", id))
		return nil
	}
	s.mu.Unlock()
	_, err := s.Search(ctx, id)
	return err
}

// SelectMetric colors the dataset by metric. A metric without data yields
// an empty legend with NoData set rather than an error.
func (s *Service) SelectMetric(ctx context.Context, metric string) (types.Legend, error) {
	metric = strings.TrimSpace(metric)
	err := s.submit(ctx, "metric", func(ctx context.Context) error {
		return s.controller.SelectMetric(ctx, metric)
	})
	if err != nil && !errors.Is(err, binning.ErrNoData) {
		return types.Legend{}, err
	}
	return s.Legend(ctx), nil
}

// Reset clears highlights, coloring, legend and detail.
func (s *Service) Reset(ctx context.Context) error {
	return s.submit(ctx, "reset", func(ctx context.Context) error {
		s.controller.Reset(ctx)
		return nil
	})
}

// Home returns the camera home and clears highlights.
func (s *Service) Home(ctx context.Context) error {
	return s.submit(ctx, "home", func(ctx context.Context) error {
		s.controller.Home(ctx)
		return nil
	})
}

// ToggleRankings flips the rankings panel.
func (s *Service) ToggleRankings(ctx context.Context) (types.ToggleResult, error) {
	var res types.ToggleResult
	err := s.submit(ctx, "rankings_toggle", func(ctx context.Context) error {
		res.Visible = s.controller.ToggleRankings(ctx)
		return nil
	})
	return res, err
}

// Legend returns the legend of the active metric.
func (s *Service) Legend(_ context.Context) types.Legend {
	st := s.controller.State()
	return types.Legend{Metric: st.Metric, NoData: st.NoData, Items: types.FromLegend(st.Legend)}
}

// Rankings ranks the current objects by metric. Empty metric and negative
// counts fall back to the configured defaults.
func (s *Service) Rankings(_ context.Context, metric string, topN, bottomN int) (types.Rankings, error) {
	if !s.isReady() {
		return types.Rankings{}, ErrNotReady
	}
	if metric == "" {
		metric = s.rankMetric
	}
	if topN < 0 {
		topN = s.topN
	}
	if bottomN < 0 {
		bottomN = s.bottomN
	}
	res := ranking.TopAndBottom(s.store.Objects(), metric, topN, bottomN)
	metrics.RecordRankingsRendered(metric)
	return types.FromRanking(res, ranking.Headline), nil
}

// Object returns the info box content for id evaluated now.
func (s *Service) Object(ctx context.Context, id string) (types.ObjectDetail, error) {
	if !s.isReady() {
		return types.ObjectDetail{}, ErrNotReady
	}
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return types.ObjectDetail{}, err
	}
	obj := e.At(s.now())
	detail := types.ObjectDetail{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		HasPoint:    e.HasPoint,
		Metrics:     obj.Metrics,
	}
	for _, h := range s.controller.State().Highlighted {
		if h == id {
			detail.Highlighted = true
			break
		}
	}
	if c, ok := s.scene.PointColor(id); ok {
		detail.Color = c.CSS()
	}
	return detail, nil
}

// Health reports whether the dataset is loaded.
func (s *Service) Health() types.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := types.Health{Status: types.StatusLoading, Objects: s.store.Count()}
	if s.ready {
		h.Status = types.StatusReady
	}
	if s.loadErr != nil {
		h.Error = s.loadErr.Error()
	}
	return h
}

// State returns the full viewer state.
func (s *Service) State(_ context.Context) types.State {
	st := s.controller.State()
	view := s.scene.View()
	out := types.State{
		Status:          s.Health().Status,
		Mode:            string(st.Mode),
		Highlighted:     st.Highlighted,
		Metric:          st.Metric,
		NoData:          st.NoData,
		Legend:          types.FromLegend(st.Legend),
		Detail:          st.Detail,
		PendingFlight:   st.PendingFlight,
		RankingsVisible: st.RankingsVisible,
		Camera:          view.Camera,
		Paths:           view.Paths,
		PointColors:     view.PointColors,
		Notices:         view.Notices,
	}
	if view.Rankings != nil {
		r := types.FromRanking(*view.Rankings, view.RankingsHeadline)
		out.Rankings = &r
	}
	if snap, ok := s.store.Snapshot(); ok {
		out.Snapshot = &types.Snapshot{ID: snap.ID, Source: snap.Source, LoadedAt: snap.LoadedAt, Count: snap.Count}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queueLen := s.queue.Len()
	stats := map[string]interface{}{
		"started":     s.started,
		"ready":       s.ready,
		"mode":        string(s.mode),
		"binCount":    s.binCount,
		"queueSize":   s.queueSize,
		"queueLength": queueLen,
		"objects":     s.store.Count(),
		"highlighted": len(s.controller.State().Highlighted),
		"pending":     s.pending,
	}
	if s.loadErr != nil {
		stats["loadError"] = s.loadErr.Error()
	}
	metrics.UpdateQueueSize(queueLen)
	return stats
}
