// Package scene is an in-memory stand-in for the globe renderer. It records
// what a renderer would display so the viewer state can be served over HTTP
// and asserted in tests.
package scene

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/okian/satlens/internal/domain/model"
	"github.com/okian/satlens/internal/domain/ranking"
	"github.com/okian/satlens/pkg/logger"
)

const (
	defaultPickRadius = 8.0
	maxNotices        = 16
	// HomeTarget is the camera target after FlyHome.
	HomeTarget = "home"
)

// Option configures a Scene.
type Option func(*Scene)

// WithFlyDuration sets how long a fly-to takes to complete.
func WithFlyDuration(d time.Duration) Option {
	return func(s *Scene) {
		if d >= 0 {
			s.flyDuration = d
		}
	}
}

// WithPickRadius sets the pick tolerance in screen pixels.
func WithPickRadius(r float64) Option {
	return func(s *Scene) {
		if r > 0 {
			s.pickRadius = r
		}
	}
}

// WithLogger sets the scene's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.log = l
		}
	}
}

type point struct {
	x, y float64
}

// Scene implements every rendering capability the selection controller uses.
type Scene struct {
	mu sync.RWMutex

	flyDuration time.Duration
	pickRadius  float64
	log         logger.Logger

	colors   map[string]model.Color
	screen   map[string]point
	paths    map[string]bool
	detail   string
	metric   string
	legend   []model.LegendItem
	headline string
	rankings *ranking.Result
	camera   string
	notices  []string
}

// New creates an empty Scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		flyDuration: 3 * time.Second,
		pickRadius:  defaultPickRadius,
		log:         logger.Nop(),
		colors:      map[string]model.Color{},
		screen:      map[string]point{},
		paths:       map[string]bool{},
		camera:      HomeTarget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load syncs point markers with a new dataset. Existing markers keep their
// color; new ones start Yellow. Overlays of vanished objects are dropped.
func (s *Scene) Load(entities []model.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]model.Color, len(entities))
	present := make(map[string]bool, len(entities))
	for _, e := range entities {
		present[e.ID] = true
		if !e.HasPoint {
			continue
		}
		if c, ok := s.colors[e.ID]; ok {
			next[e.ID] = c
		} else {
			next[e.ID] = model.Yellow
		}
	}
	s.colors = next
	for id := range s.paths {
		if !present[id] {
			delete(s.paths, id)
		}
	}
	for id := range s.screen {
		if !present[id] {
			delete(s.screen, id)
		}
	}
}

// SetScreenPosition records where id is drawn, for picking.
func (s *Scene) SetScreenPosition(id string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen[id] = point{x: x, y: y}
}

// PickAt returns the object drawn nearest to (x, y) within the pick radius.
func (s *Scene) PickAt(x, y float64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best, bestDist := "", math.Inf(1)
	for id, p := range s.screen {
		d := math.Hypot(p.x-x, p.y-y)
		if d <= s.pickRadius && (d < bestDist || (d == bestDist && id < best)) {
			best, bestDist = id, d
		}
	}
	return best, best != ""
}

// FlyTo moves the camera to id and calls done after the fly duration.
func (s *Scene) FlyTo(ctx context.Context, id string, done func()) error {
	s.mu.Lock()
	s.camera = id
	d := s.flyDuration
	s.mu.Unlock()

	s.log.Debug(ctx, "flying to object", logger.String("id", id), logger.Duration("duration", d))
	time.AfterFunc(d, done)
	return nil
}

// FlyHome returns the camera to the default view.
func (s *Scene) FlyHome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = HomeTarget
}

func (s *Scene) AttachPath(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[id] = true
}

func (s *Scene) DetachPath(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, id)
}

// SetPointColor recolors id's marker. It reports false if id has no marker.
func (s *Scene) SetPointColor(id string, c model.Color) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.colors[id]; !ok {
		return false
	}
	s.colors[id] = c
	return true
}

// ResetPointColors sets every marker to c.
func (s *Scene) ResetPointColors(c model.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.colors {
		s.colors[id] = c
	}
}

func (s *Scene) ShowDetail(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = id
}

func (s *Scene) HideDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = ""
}

func (s *Scene) ShowLegend(metric string, items []model.LegendItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metric = metric
	s.legend = append([]model.LegendItem(nil), items...)
}

func (s *Scene) RemoveLegend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metric = ""
	s.legend = nil
}

func (s *Scene) ShowRankings(headline string, res ranking.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headline = headline
	s.rankings = &res
}

func (s *Scene) HideRankings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankings = nil
}

// Notify records a blocking notice; only the most recent ones are kept.
func (s *Scene) Notify(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, msg)
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

// View is a snapshot of what the scene displays.
type View struct {
	PointColors      map[string]string
	Paths            []string
	Detail           string
	LegendMetric     string
	Legend           []model.LegendItem
	RankingsHeadline string
	Rankings         *ranking.Result
	Camera           string
	Notices          []string
}

// View returns a snapshot of the scene.
func (s *Scene) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		PointColors:  make(map[string]string, len(s.colors)),
		Paths:        make([]string, 0, len(s.paths)),
		Detail:       s.detail,
		LegendMetric: s.metric,
		Legend:       append([]model.LegendItem(nil), s.legend...),
		Camera:       s.camera,
		Notices:      append([]string(nil), s.notices...),
	}
	for id, c := range s.colors {
		v.PointColors[id] = c.CSS()
	}
	for id := range s.paths {
		v.Paths = append(v.Paths, id)
	}
	sort.Strings(v.Paths)
	if s.rankings != nil {
		r := *s.rankings
		v.Rankings = &r
		v.RankingsHeadline = s.headline
	}
	return v
}

// PointColor returns id's marker color.
func (s *Scene) PointColor(id string) (model.Color, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colors[id]
	return c, ok
}
