package selection

import (
	"github.com/okian/satlens/internal/domain/ranking"
	"github.com/okian/satlens/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithMode sets the highlight policy. Unknown modes are ignored here and
// rejected by ParseMode.
func WithMode(m Mode) Option {
	return func(c *Controller) {
		if m == ModeSingle || m == ModeAccumulate {
			c.mode = m
		}
	}
}

// WithBinCount sets the number of legend bins.
func WithBinCount(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.binCount = n
		}
	}
}

// WithRanking sets the metric and list sizes of the rankings panel.
func WithRanking(metric string, topN, bottomN int) Option {
	return func(c *Controller) {
		if metric != "" {
			c.rankMetric = metric
		}
		if topN >= 0 {
			c.topN = topN
		}
		if bottomN >= 0 {
			c.bottomN = bottomN
		}
	}
}

// WithDispatcher routes fly-to completions back onto the owning goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) {
		if d != nil {
			c.dispatch = d
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func defaults(c *Controller) {
	c.mode = ModeAccumulate
	c.binCount = 5
	c.rankMetric = ranking.DefaultMetric
	c.topN = ranking.DefaultTopN
	c.bottomN = ranking.DefaultBottomN
	c.dispatch = inline
	c.log = logger.Nop()
}
