// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// TrackedObject is one object evaluated at a single instant. A metric missing
// from Metrics is undefined for that object at that instant.
type TrackedObject struct {
	ID      string
	Name    string
	Metrics map[string]float64
}

// Metric returns the value of name and whether it is defined.
func (o TrackedObject) Metric(name string) (float64, bool) {
	v, ok := o.Metrics[name]
	return v, ok
}

// Entity is a tracked object as loaded from a dataset, with time-indexed
// numeric properties.
type Entity struct {
	ID          string
	Name        string
	Description string
	// HasPoint reports whether the entity is drawn as a point marker.
	HasPoint   bool
	Properties map[string]Property
}

// At evaluates every property at t.
func (e Entity) At(t time.Time) TrackedObject {
	obj := TrackedObject{
		ID:      e.ID,
		Name:    e.Name,
		Metrics: make(map[string]float64, len(e.Properties)),
	}
	for name, p := range e.Properties {
		if v, ok := p.At(t); ok {
			obj.Metrics[name] = v
		}
	}
	return obj
}

// PropertyNames returns the entity's property names in sorted order.
func (e Entity) PropertyNames() []string {
	names := make([]string, 0, len(e.Properties))
	for name := range e.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RankingEntry is one row of a ranking list.
type RankingEntry struct {
	ID    string
	Name  string
	Value float64
}

// Bin is a numeric interval mapped to one display color. Bins are half-open
// except the last, which is closed at Max.
type Bin struct {
	Min   float64
	Max   float64
	Color Color
}

// Contains reports whether v lies in the closed range [Min, Max].
func (b Bin) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// LegendItem is one legend row for a bin.
type LegendItem struct {
	Color string
	Label string
	Min   float64
	Max   float64
}
