// Package worker runs the single event loop that owns all viewer state.
package worker

import (
	"github.com/okian/satlens/pkg/logger"
)

// Option applies a configuration option to the Loop.
type Option func(*Loop)

// WithName sets the loop name for identification and logging.
func WithName(name string) Option {
	return func(l *Loop) {
		if name != "" {
			l.name = name
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(log logger.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.logger = log
		}
	}
}
