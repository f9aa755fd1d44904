// Package filesource loads a dataset from a local file and reports when the
// file changes on disk.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/satlens/pkg/logger"
)

const (
	defaultDebounce = 200 * time.Millisecond
	defaultMaxBytes = 256 << 20
)

var (
	// ErrTooLarge is returned when the file exceeds the size limit.
	ErrTooLarge = errors.New("dataset file exceeds size limit")
	// ErrAlreadyWatching is returned when Watch is called twice concurrently.
	ErrAlreadyWatching = errors.New("dataset file already watched")
)

// Option configures a Source.
type Option func(*Source)

// WithDebounce coalesces bursts of file events.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithMaxBytes caps the file size accepted by Load.
func WithMaxBytes(n int64) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithLogger sets the source's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// Source reads one dataset file.
type Source struct {
	path     string
	debounce time.Duration
	maxBytes int64
	log      logger.Logger

	mu       sync.Mutex
	watching bool
}

// New creates a Source for path.
func New(path string, opts ...Option) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	s := &Source{
		path:     abs,
		debounce: defaultDebounce,
		maxBytes: defaultMaxBytes,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the absolute file path.
func (s *Source) Path() string {
	return s.path
}

// Load reads the whole file.
func (s *Source) Load(_ context.Context) ([]byte, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s over %d bytes", ErrTooLarge, s.path, s.maxBytes)
	}
	return data, nil
}

// Watch calls onChange after the file is written, created or renamed into
// place, debounced. It blocks until ctx is done.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return ErrAlreadyWatching
	}
	s.watching = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.watching = false
		s.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory so editors that replace the file atomically are seen.
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	s.log.Info(ctx, "watching dataset file", logger.String("path", s.path))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.debounce, onChange)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			s.log.Warn(ctx, "dataset watcher error", logger.Error(err))
		}
	}
}
