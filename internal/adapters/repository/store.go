// Package repository holds the loaded dataset and evaluates it over time.
package repository

import (
	"context"
	"time"

	"github.com/okian/satlens/internal/domain/model"
)

// Snapshot describes one wholesale dataset load.
type Snapshot struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Count    int
}

// Store provides read/write access to the current dataset.
type Store interface {
	// Replace swaps in a new dataset. Entity ids must be unique and non-empty.
	Replace(ctx context.Context, source string, entities []model.Entity) (Snapshot, error)

	// Get returns the entity with id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Entity, error)

	// Has reports whether id exists in the current dataset.
	Has(id string) bool

	// Objects evaluates every entity at the store's clock.
	Objects() []model.TrackedObject

	// ObjectsAt evaluates every entity at t, in load order.
	ObjectsAt(t time.Time) []model.TrackedObject

	// Snapshot describes the current dataset; ok is false before any load.
	Snapshot() (Snapshot, bool)

	// Count returns the number of entities in the current dataset.
	Count() int
}
