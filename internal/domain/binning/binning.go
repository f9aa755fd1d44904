// Package binning partitions a metric's value range into equal-width,
// hue-rotated color bins and classifies values against them.
package binning

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/okian/satlens/internal/domain/model"
	"gonum.org/v1/gonum/floats"
)

const (
	saturation = 1.0
	lightness  = 0.5
)

// PointColorer recolors the point marker of an object. It reports false when
// the object has no point marker.
type PointColorer interface {
	SetPointColor(id string, c model.Color) bool
}

// Values collects the defined values of metric across objects.
func Values(objects []model.TrackedObject, metric string) []float64 {
	vals := make([]float64, 0, len(objects))
	for _, obj := range objects {
		if v, ok := obj.Metric(metric); ok && !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	return vals
}

// ComputeBins splits [min, max] of the metric's defined values into n
// equal-width bins. The last bin's Max is exactly the maximum value.
func ComputeBins(objects []model.TrackedObject, metric string, n int) ([]model.Bin, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBinCount, n)
	}
	vals := Values(objects, metric)
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoData, metric)
	}
	return Bins(floats.Min(vals), floats.Max(vals), n), nil
}

// Bins builds n bins over [lo, hi]. It assumes n >= 1 and lo <= hi.
func Bins(lo, hi float64, n int) []model.Bin {
	bins := make([]model.Bin, n)
	for i := range bins {
		bins[i] = model.Bin{
			Min:   edge(lo, hi, i, n),
			Max:   edge(lo, hi, i+1, n),
			Color: BinColor(i, n),
		}
		if i > 0 {
			bins[i].Min = bins[i-1].Max
		}
	}
	bins[0].Min = lo
	bins[n-1].Max = hi
	return bins
}

// edge returns the lower edge of bin i out of n over [lo, hi].
func edge(lo, hi float64, i, n int) float64 {
	if span := hi - lo; !math.IsInf(span, 0) {
		return lo + float64(i)*(span/float64(n))
	}
	// The span overflows float64; weight the ends separately instead.
	t := float64(i) / float64(n)
	return math.Min(hi, math.Max(lo, lo*(1-t)+hi*t))
}

// BinColor returns the color of bin i out of n: hue i/n of a full turn at
// full saturation and half lightness.
func BinColor(i, n int) model.Color {
	c := colorful.Hsl(float64(i)/float64(n)*360, saturation, lightness)
	return model.Color{R: c.R, G: c.G, B: c.B, A: 1}
}

// Classify returns the color of the first bin containing v, or White when no
// bin does. NaN classifies as White.
func Classify(v float64, bins []model.Bin) model.Color {
	for _, b := range bins {
		if b.Contains(v) {
			return b.Color
		}
	}
	return model.White
}

// Index returns the index of the first bin containing v, or -1.
func Index(v float64, bins []model.Bin) int {
	for i, b := range bins {
		if b.Contains(v) {
			return i
		}
	}
	return -1
}

// Legend renders one item per bin, labelled "min - max" at two decimals.
func Legend(bins []model.Bin) []model.LegendItem {
	items := make([]model.LegendItem, len(bins))
	for i, b := range bins {
		items[i] = model.LegendItem{
			Color: b.Color.CSS(),
			Label: Label(b),
			Min:   b.Min,
			Max:   b.Max,
		}
	}
	return items
}

// Label formats a bin range for display.
func Label(b model.Bin) string {
	return strconv.FormatFloat(b.Min, 'f', 2, 64) + " - " + strconv.FormatFloat(b.Max, 'f', 2, 64)
}

// Apply recolors every object defining metric. Objects lacking the metric
// keep their previous color. It returns the number of markers recolored.
func Apply(objects []model.TrackedObject, metric string, bins []model.Bin, colorer PointColorer) int {
	colored := 0
	for _, obj := range objects {
		v, ok := obj.Metric(metric)
		if !ok {
			continue
		}
		if colorer.SetPointColor(obj.ID, Classify(v, bins)) {
			colored++
		}
	}
	return colored
}
