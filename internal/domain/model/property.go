package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Sentinel errors for property construction.
var (
	ErrEmptySamples     = errors.New("sampled property has no samples")
	ErrSampleMismatch   = errors.New("sample offsets and values differ in length")
	ErrUnorderedSamples = errors.New("sample offsets must be strictly increasing")
	ErrInvalidInterval  = errors.New("interval end precedes start")
)

type propertyKind int

const (
	kindUndefined propertyKind = iota
	kindConstant
	kindSampled
	kindIntervals
)

// Interval is a closed time range holding one value.
type Interval struct {
	Start time.Time
	End   time.Time
	Value float64
}

// Property is a numeric value that may vary over time. The zero Property is
// undefined everywhere.
type Property struct {
	kind      propertyKind
	constant  float64
	epoch     time.Time
	offsets   []float64
	values    []float64
	intervals []Interval
}

// Constant returns a property defined at every instant.
func Constant(v float64) Property {
	return Property{kind: kindConstant, constant: v}
}

// Sampled returns a property interpolated linearly between samples taken at
// epoch+offsets[i] seconds. It is undefined outside the sampled range.
func Sampled(epoch time.Time, offsets, values []float64) (Property, error) {
	if len(offsets) == 0 {
		return Property{}, ErrEmptySamples
	}
	if len(offsets) != len(values) {
		return Property{}, fmt.Errorf("%w: %d offsets, %d values", ErrSampleMismatch, len(offsets), len(values))
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			return Property{}, fmt.Errorf("%w: offset %d", ErrUnorderedSamples, i)
		}
	}
	return Property{
		kind:    kindSampled,
		epoch:   epoch,
		offsets: append([]float64(nil), offsets...),
		values:  append([]float64(nil), values...),
	}, nil
}

// Intervals returns a property holding each interval's value within it. The
// first interval containing an instant wins.
func Intervals(intervals []Interval) (Property, error) {
	for i, iv := range intervals {
		if iv.End.Before(iv.Start) {
			return Property{}, fmt.Errorf("%w: interval %d", ErrInvalidInterval, i)
		}
	}
	return Property{kind: kindIntervals, intervals: append([]Interval(nil), intervals...)}, nil
}

// Defined reports whether the property holds any data at all.
func (p Property) Defined() bool {
	return p.kind != kindUndefined
}

// At returns the value at t and whether it is defined there.
func (p Property) At(t time.Time) (float64, bool) {
	switch p.kind {
	case kindConstant:
		return p.constant, true
	case kindSampled:
		return p.sampleAt(t.Sub(p.epoch).Seconds())
	case kindIntervals:
		for _, iv := range p.intervals {
			if !t.Before(iv.Start) && !t.After(iv.End) {
				return iv.Value, true
			}
		}
	}
	return 0, false
}

func (p Property) sampleAt(sec float64) (float64, bool) {
	last := len(p.offsets) - 1
	if sec < p.offsets[0] || sec > p.offsets[last] {
		return 0, false
	}
	i := sort.SearchFloat64s(p.offsets, sec)
	if p.offsets[i] == sec {
		return p.values[i], true
	}
	// offsets[i-1] < sec < offsets[i]
	t0, t1 := p.offsets[i-1], p.offsets[i]
	v0, v1 := p.values[i-1], p.values[i]
	return v0 + (v1-v0)*(sec-t0)/(t1-t0), true
}
