package service

import (
	"time"

	"github.com/okian/satlens/internal/domain/selection"
	"github.com/okian/satlens/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets where the dataset comes from.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithWatcher reloads the dataset whenever w reports a change.
func WithWatcher(w Watcher) Option {
	return func(s *Service) {
		s.watcher = w
	}
}

// WithSelectionMode sets the highlight policy.
func WithSelectionMode(m selection.Mode) Option {
	return func(s *Service) {
		if m != "" {
			s.mode = m
		}
	}
}

// WithBinCount sets the number of legend bins.
func WithBinCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.binCount = n
		}
	}
}

// WithRanking sets the rankings panel metric and list sizes.
func WithRanking(metric string, topN, bottomN int) Option {
	return func(s *Service) {
		if metric != "" {
			s.rankMetric = metric
		}
		if topN >= 0 {
			s.topN = topN
		}
		if bottomN >= 0 {
			s.bottomN = bottomN
		}
	}
}

// WithDefaultMetric colors the dataset by metric once it first loads.
func WithDefaultMetric(metric string) Option {
	return func(s *Service) {
		s.defaultMetric = metric
	}
}

// WithFlyDuration sets the headless camera's transition time.
func WithFlyDuration(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.flyDuration = d
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithInitialSearch searches for id once the dataset has loaded.
func WithInitialSearch(id string) Option {
	return func(s *Service) {
		s.initialSearch = id
	}
}

// WithClock sets the clock objects are evaluated at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
