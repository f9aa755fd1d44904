// Package selection owns the highlighted set and drives the scene in
// response to pick, search, metric, reset and home events.
package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/satlens/internal/domain/binning"
	"github.com/okian/satlens/internal/domain/highlight"
	"github.com/okian/satlens/internal/domain/model"
	"github.com/okian/satlens/internal/domain/ranking"
	"github.com/okian/satlens/pkg/logger"
	"github.com/okian/satlens/pkg/metrics"
)

// Mode is the highlight policy.
type Mode string

const (
	// ModeSingle keeps at most one object highlighted.
	ModeSingle Mode = "single"
	// ModeAccumulate adds picked objects to the highlighted set.
	ModeAccumulate Mode = "accumulate"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSingle, ModeAccumulate:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// State is a snapshot of the controller's view state.
type State struct {
	Mode            Mode
	Highlighted     []string
	Metric          string
	NoData          bool
	Legend          []model.LegendItem
	Detail          string
	PendingFlight   string
	RankingsVisible bool
}

// Controller holds the view state. Entry points are expected to run on one
// event loop; the mutex guards snapshots taken from other goroutines.
type Controller struct {
	mu sync.Mutex

	mode       Mode
	binCount   int
	rankMetric string
	topN       int
	bottomN    int
	dispatch   Dispatcher
	log        logger.Logger

	source ObjectSource
	scene  Scene
	set    highlight.Set

	metric   string
	noData   bool
	legend   []model.LegendItem
	detail   string
	rankings bool

	// flight increments on every action that invalidates a pending fly-to.
	flight        uint64
	pendingFlight string
	flightStarted time.Time
}

// New creates a Controller over source, driving scene.
func New(source ObjectSource, scene Scene, opts ...Option) *Controller {
	c := &Controller{source: source, scene: scene}
	defaults(c)
	for _, opt := range opts {
		opt(c)
	}
	c.set = highlight.New()
	return c
}

// Mode returns the active highlight policy.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Highlight attaches a path overlay to id unless it already has one.
func (c *Controller) Highlight(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.highlightLocked(id)
}

// Unhighlight detaches id's overlay. It is a no-op if id is not highlighted.
func (c *Controller) Unhighlight(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set.Remove(id) {
		c.scene.DetachPath(id)
		metrics.UpdateHighlightedCount(c.set.Len())
	}
}

// ClearAll detaches every overlay and empties the set.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Controller) highlightLocked(id string) {
	if c.set.Add(id) {
		c.scene.AttachPath(id)
		metrics.UpdateHighlightedCount(c.set.Len())
	}
}

func (c *Controller) clearLocked() {
	for _, id := range c.set.Clear() {
		c.scene.DetachPath(id)
	}
	metrics.UpdateHighlightedCount(0)
}

func (c *Controller) supersedeLocked() {
	if c.pendingFlight != "" {
		metrics.RecordFlightSuperseded()
	}
	c.flight++
	c.pendingFlight = ""
}

// PickAt resolves a screen coordinate and applies Pick.
func (c *Controller) PickAt(ctx context.Context, x, y float64) (string, error) {
	id, ok := c.scene.PickAt(x, y)
	if !ok {
		return "", c.Pick(ctx, "")
	}
	return id, c.Pick(ctx, id)
}

// Pick handles a click. An empty id means empty space: every highlight is
// cleared and the detail hidden. Otherwise the object is highlighted per the
// active mode and its detail shown.
func (c *Controller) Pick(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		metrics.RecordPick("empty")
		c.supersedeLocked()
		c.clearLocked()
		c.hideDetailLocked()
		c.log.Debug(ctx, "picked empty space")
		return nil
	}
	if !c.source.Has(id) {
		metrics.RecordPick("unknown")
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	metrics.RecordPick("object")
	c.supersedeLocked()
	if c.mode == ModeSingle {
		for _, prev := range c.set.IDs() {
			if prev != id && c.set.Remove(prev) {
				c.scene.DetachPath(prev)
			}
		}
	}
	c.highlightLocked(id)
	c.showDetailLocked(id)
	c.log.Debug(ctx, "picked object", logger.String("id", id), logger.Int("highlighted", c.set.Len()))
	return nil
}

// Search looks id up by exact match. A hit replaces the highlighted set with
// the found object and flies to it; the detail is shown once that flight
// completes unless a later action superseded it. A miss raises a notice and
// leaves state unchanged.
func (c *Controller) Search(ctx context.Context, query string) (string, error) {
	id := strings.TrimSpace(query)
	if id == "" {
		metrics.RecordSearch("empty")
		return "", ErrEmptyQuery
	}

	c.mu.Lock()
	if !c.source.Has(id) {
		c.mu.Unlock()
		metrics.RecordSearch("miss")
		c.scene.Notify(NotFoundNotice)
		c.log.Info(ctx, "search miss", logger.String("query", id))
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	metrics.RecordSearch("hit")
	c.supersedeLocked()
	c.clearLocked()
	c.highlightLocked(id)
	gen := c.flight
	c.pendingFlight = id
	c.flightStarted = time.Now()
	c.mu.Unlock()

	done := func() {
		c.dispatch(func() { c.CompleteFlight(gen) })
	}
	if err := c.scene.FlyTo(context.WithoutCancel(ctx), id, done); err != nil {
		c.log.Warn(ctx, "fly-to failed; showing detail directly", logger.String("id", id), logger.Error(err))
		c.CompleteFlight(gen)
	}
	return id, nil
}

// CompleteFlight shows the detail for flight gen if it is still current.
// It reports whether the detail was shown.
func (c *Controller) CompleteFlight(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.flight || c.pendingFlight == "" {
		return false
	}
	metrics.RecordFlyToLatency(float64(time.Since(c.flightStarted).Milliseconds()))
	c.showDetailLocked(c.pendingFlight)
	c.pendingFlight = ""
	return true
}

// SelectMetric colors every object by metric and shows its legend. When no
// object defines metric the legend is removed, nothing is recolored and the
// returned error wraps binning.ErrNoData.
func (c *Controller) SelectMetric(ctx context.Context, metric string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyMetricLocked(ctx, metric)
}

func (c *Controller) applyMetricLocked(ctx context.Context, metric string) error {
	objs := c.source.Objects()
	bins, err := binning.ComputeBins(objs, metric, c.binCount)
	if err != nil {
		c.legend = nil
		c.scene.RemoveLegend()
		if errors.Is(err, binning.ErrNoData) {
			c.metric = metric
			c.noData = true
			metrics.RecordNoData(metric)
			c.log.Info(ctx, "metric has no data", logger.String("metric", metric))
		}
		return err
	}

	colored := binning.Apply(objs, metric, bins, c.scene)
	c.metric = metric
	c.noData = false
	c.legend = binning.Legend(bins)
	c.scene.ShowLegend(metric, c.legend)
	metrics.RecordBinsComputed(metric)
	c.log.Debug(ctx, "metric applied",
		logger.String("metric", metric),
		logger.Int("bins", len(bins)),
		logger.Int("colored", colored),
	)
	return nil
}

// Reset clears highlights, metric coloring, legend and detail.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked()
	c.clearLocked()
	c.metric = ""
	c.noData = false
	c.legend = nil
	c.scene.ResetPointColors(model.Yellow)
	c.scene.RemoveLegend()
	c.hideDetailLocked()
	c.log.Debug(ctx, "view reset")
}

// Home returns the camera home, clears highlights and hides the detail.
// Metric coloring is kept.
func (c *Controller) Home(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked()
	c.clearLocked()
	c.hideDetailLocked()
	c.scene.FlyHome()
	c.log.Debug(ctx, "camera home")
}

// ToggleRankings flips the rankings panel and returns whether it is visible.
func (c *Controller) ToggleRankings(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rankings = !c.rankings
	if c.rankings {
		c.showRankingsLocked()
	} else {
		c.scene.HideRankings()
	}
	c.log.Debug(ctx, "rankings toggled", logger.Bool("visible", c.rankings))
	return c.rankings
}

func (c *Controller) showRankingsLocked() {
	res := ranking.TopAndBottom(c.source.Objects(), c.rankMetric, c.topN, c.bottomN)
	c.scene.ShowRankings(ranking.Headline, res)
	metrics.RecordRankingsRendered(c.rankMetric)
}

// Refresh re-derives view state after the dataset changed: highlights of
// vanished objects are dropped, the active metric is reapplied and a visible
// rankings panel is rebuilt.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.set.IDs() {
		if !c.source.Has(id) && c.set.Remove(id) {
			c.scene.DetachPath(id)
		}
	}
	metrics.UpdateHighlightedCount(c.set.Len())
	if c.detail != "" && !c.source.Has(c.detail) {
		c.hideDetailLocked()
	}
	if c.pendingFlight != "" && !c.source.Has(c.pendingFlight) {
		c.supersedeLocked()
	}
	if c.metric != "" {
		// ErrNoData is already reflected in state.
		_ = c.applyMetricLocked(ctx, c.metric)
	}
	if c.rankings {
		c.showRankingsLocked()
	}
}

func (c *Controller) showDetailLocked(id string) {
	c.detail = id
	c.scene.ShowDetail(id)
}

func (c *Controller) hideDetailLocked() {
	c.detail = ""
	c.scene.HideDetail()
}

// State returns a snapshot of the view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Mode:            c.mode,
		Highlighted:     c.set.IDs(),
		Metric:          c.metric,
		NoData:          c.noData,
		Legend:          append([]model.LegendItem(nil), c.legend...),
		Detail:          c.detail,
		PendingFlight:   c.pendingFlight,
		RankingsVisible: c.rankings,
	}
}

// Flight returns the current flight generation.
func (c *Controller) Flight() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flight
}
