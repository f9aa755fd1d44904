package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/satlens/internal/domain/model"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleEntities(t *testing.T) []model.Entity {
	t.Helper()
	sampled, err := model.Sampled(fixedNow.Add(-time.Hour), []float64{0, 7200}, []float64{0, 2})
	if err != nil {
		t.Fatalf("sampled: %v", err)
	}
	return []model.Entity{
		{ID: "25544", Name: "ISS", HasPoint: true, Properties: map[string]model.Property{"DIT": sampled}},
		{ID: "20580", Name: "HST", HasPoint: true, Properties: map[string]model.Property{"DIT": model.Constant(0.3)}},
	}
}

func TestMemoryStore_Empty(t *testing.T) {
	s := NewMemoryStore()
	if s.Count() != 0 {
		t.Errorf("expected count 0, got %d", s.Count())
	}
	if s.Has("x") {
		t.Error("empty store should not contain x")
	}
	if objs := s.Objects(); objs != nil {
		t.Errorf("expected nil objects, got %v", objs)
	}
	if _, ok := s.Snapshot(); ok {
		t.Error("expected no snapshot before first load")
	}
	if _, err := s.Get(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Replace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithClock(func() time.Time { return fixedNow }))

	snap, err := s.Replace(ctx, "file:sats.czml", sampleEntities(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(snap.ID); err != nil {
		t.Errorf("snapshot id %q is not a uuid: %v", snap.ID, err)
	}
	if snap.Count != 2 || snap.Source != "file:sats.czml" || !snap.LoadedAt.Equal(fixedNow) {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	e, err := s.Get(ctx, "20580")
	if err != nil || e.Name != "HST" {
		t.Fatalf("Get(20580) = %+v, %v", e, err)
	}

	objs := s.Objects()
	if len(objs) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objs))
	}
	if v, ok := objs[0].Metric("DIT"); !ok || v != 1 {
		t.Errorf("ISS DIT at now = %v, %v; want 1, true", v, ok)
	}

	later := s.ObjectsAt(fixedNow.Add(2 * time.Hour))
	if _, ok := later[0].Metric("DIT"); ok {
		t.Error("ISS DIT should be undefined past its samples")
	}

	again, err := s.Replace(ctx, "file:sats.czml", sampleEntities(t)[:1])
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if again.ID == snap.ID {
		t.Error("each load should get a new snapshot id")
	}
	if s.Has("20580") {
		t.Error("replaced dataset should not contain 20580")
	}
}

func TestMemoryStore_ReplaceRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Replace(ctx, "test", []model.Entity{{ID: "a"}, {ID: "a"}}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if _, err := s.Replace(ctx, "test", []model.Entity{{ID: ""}}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
	if s.Count() != 0 {
		t.Error("failed replace must not publish a dataset")
	}
}
