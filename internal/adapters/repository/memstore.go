package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/satlens/internal/domain/model"
	"github.com/okian/satlens/pkg/metrics"
)

// dataset is an immutable published load. Readers take the pointer once and
// never observe a partially replaced dataset.
type dataset struct {
	meta     Snapshot
	entities []model.Entity
	index    map[string]int
}

// MemoryStore keeps the current dataset in memory.
type MemoryStore struct {
	current atomic.Pointer[dataset]
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace validates entities and publishes them as the new dataset.
func (s *MemoryStore) Replace(_ context.Context, source string, entities []model.Entity) (Snapshot, error) {
	index := make(map[string]int, len(entities))
	for i, e := range entities {
		if e.ID == "" {
			metrics.RecordErrorByComponent("repository", "empty_id")
			return Snapshot{}, fmt.Errorf("%w: entity %d", ErrEmptyID, i)
		}
		if _, dup := index[e.ID]; dup {
			metrics.RecordErrorByComponent("repository", "duplicate_id")
			return Snapshot{}, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		index[e.ID] = i
	}

	d := &dataset{
		meta: Snapshot{
			ID:       uuid.NewString(),
			Source:   source,
			LoadedAt: s.now(),
			Count:    len(entities),
		},
		entities: append([]model.Entity(nil), entities...),
		index:    index,
	}
	s.current.Store(d)
	metrics.UpdateDatasetObjects(len(entities))
	return d.meta, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Entity, error) {
	d := s.current.Load()
	if d == nil {
		return model.Entity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	i, ok := d.index[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Entity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d.entities[i], nil
}

func (s *MemoryStore) Has(id string) bool {
	d := s.current.Load()
	if d == nil {
		return false
	}
	_, ok := d.index[id]
	return ok
}

func (s *MemoryStore) Objects() []model.TrackedObject {
	return s.ObjectsAt(s.now())
}

func (s *MemoryStore) ObjectsAt(t time.Time) []model.TrackedObject {
	d := s.current.Load()
	if d == nil {
		return nil
	}
	out := make([]model.TrackedObject, len(d.entities))
	for i, e := range d.entities {
		out[i] = e.At(t)
	}
	return out
}

func (s *MemoryStore) Snapshot() (Snapshot, bool) {
	d := s.current.Load()
	if d == nil {
		return Snapshot{}, false
	}
	return d.meta, true
}

func (s *MemoryStore) Count() int {
	d := s.current.Load()
	if d == nil {
		return 0
	}
	return len(d.entities)
}
