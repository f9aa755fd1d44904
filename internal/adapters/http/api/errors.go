package api

import (
	"errors"
	"fmt"
	"net/http"

	eventqueue "github.com/okian/satlens/internal/adapters/mq/queue"
	"github.com/okian/satlens/internal/adapters/mq/worker"
	"github.com/okian/satlens/internal/adapters/repository"
	service "github.com/okian/satlens/internal/app"
	"github.com/okian/satlens/internal/domain/selection"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrLoading      = errors.New("dataset loading")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBackpressure = errors.New("backpressure")
	ErrInternal     = errors.New("internal error")
)

// kindError tags an error with the operation that produced it and an API kind.
type kindError struct {
	op   string
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *kindError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &kindError{op: op, kind: kind}
}

// WrapKind tags err with kind on behalf of op.
func WrapKind(op string, kind, err error) error {
	return &kindError{op: op, kind: kind, err: err}
}

// Wrap classifies err from the service layer into an API kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, selection.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, selection.ErrEmptyQuery), errors.Is(err, selection.ErrInvalidMode):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, service.ErrNotReady), errors.Is(err, service.ErrNotStarted),
		errors.Is(err, worker.ErrStopped), errors.Is(err, eventqueue.ErrClosed):
		return WrapKind(op, ErrLoading, err)
	case errors.Is(err, eventqueue.ErrFull):
		return WrapKind(op, ErrBackpressure, err)
	}
	return WrapKind(op, ErrInternal, err)
}

// statusOf maps an error kind to its HTTP status and response code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrLoading):
		return http.StatusServiceUnavailable, "loading"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	}
	return http.StatusInternalServerError, "internal_error"
}
