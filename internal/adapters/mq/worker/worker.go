// Package worker runs the single event loop that owns all viewer state.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/satlens/internal/adapters/mq/queue"
	"github.com/okian/satlens/pkg/logger"
	"github.com/okian/satlens/pkg/metrics"
)

// Queue is the part of queue.Queue the loop needs.
type Queue interface {
	Enqueue(ctx context.Context, e queue.Event) error
	Dequeue() <-chan queue.Event
}

// Loop consumes events one at a time on a single goroutine.
type Loop struct {
	queue Queue
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewLoop creates a loop reading from q.
func NewLoop(q Queue, opts ...Option) *Loop {
	l := &Loop{
		queue:    q,
		name:     "loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named(l.name)
	return l
}

// Run processes events until ctx is canceled, Shutdown is called or the
// queue is closed. Events left in the queue are answered with ErrStopped.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	events := l.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			l.drain()
			return
		case <-l.shutdown:
			l.drain()
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			l.process(ctx, ev)
		}
	}
}

// Shutdown stops the loop and waits for the current event to finish.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() { close(l.shutdown) })

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Submit runs fn on the loop and waits for its result. It must not be
// called from inside a handler.
func (l *Loop) Submit(ctx context.Context, kind string, fn queue.Handler) error {
	reply := make(chan error, 1)
	ev := queue.Event{Kind: kind, Ctx: ctx, Handle: fn, Reply: reply}
	if err := l.queue.Enqueue(ctx, ev); err != nil {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The loop may have answered just before exiting.
		select {
		case err := <-reply:
			return err
		default:
			return ErrStopped
		}
	}
}

// Post enqueues fn without waiting. Handlers use it to schedule follow-up work.
func (l *Loop) Post(kind string, fn queue.Handler) error {
	ev := queue.Event{Kind: kind, Ctx: context.Background(), Handle: fn}
	if err := l.queue.Enqueue(context.Background(), ev); err != nil {
		l.logger.Warn(context.Background(), "event dropped", logger.String("kind", kind), logger.Error(err))
		return fmt.Errorf("post %s: %w", kind, err)
	}
	return nil
}

func (l *Loop) process(loopCtx context.Context, ev queue.Event) { //nolint:gocritic // hugeParam: Event is passed by value for channel semantics
	ctx := ev.Ctx
	if ctx == nil {
		ctx = loopCtx
	}

	err := l.safeHandle(ctx, ev)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		l.logger.Debug(ctx, "event failed", logger.String("kind", ev.Kind), logger.Error(err))
	}
	metrics.RecordEventProcessed(ev.Kind, outcome)
	if !ev.EnqueuedAt.IsZero() {
		metrics.RecordEventLatency(ev.Kind, float64(time.Since(ev.EnqueuedAt).Milliseconds()))
	}
	if ev.Reply != nil {
		ev.Reply <- err
	}
}

func (l *Loop) safeHandle(ctx context.Context, ev queue.Event) (err error) { //nolint:gocritic // hugeParam: Event is passed by value for channel semantics
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("loop", "panic")
			l.logger.Error(ctx, "event handler panicked", logger.String("kind", ev.Kind), logger.Any("panic", r))
			err = fmt.Errorf("%w: %s: %v", ErrPanic, ev.Kind, r)
		}
	}()
	if ev.Handle == nil {
		return nil
	}
	return ev.Handle(ctx)
}

// drain answers every queued event with ErrStopped.
func (l *Loop) drain() {
	events := l.queue.Dequeue()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordEventProcessed(ev.Kind, "stopped")
			if ev.Reply != nil {
				ev.Reply <- ErrStopped
			}
		default:
			return
		}
	}
}
