// Package ranking orders tracked objects by a metric and renders the
// highest and lowest entries.
package ranking

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/satlens/internal/domain/model"
)

// Defaults used by the viewer's ranking panel.
const (
	DefaultMetric  = "DIT"
	DefaultTopN    = 5
	DefaultBottomN = 10
	// Headline introduces the bottom list; a low score means high risk.
	Headline = "Highest risk (lowest score) as ranked by L-DIT"
)

// Result holds both ends of a ranking. Top is descending, Bottom ascending.
type Result struct {
	Metric string
	Top    []model.RankingEntry
	Bottom []model.RankingEntry
}

// Sorted returns the objects defining metric, stable-sorted ascending by value.
func Sorted(objects []model.TrackedObject, metric string) []model.RankingEntry {
	entries := make([]model.RankingEntry, 0, len(objects))
	for _, obj := range objects {
		if v, ok := obj.Metric(metric); ok && !math.IsNaN(v) {
			entries = append(entries, model.RankingEntry{ID: obj.ID, Name: obj.Name, Value: v})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value < entries[j].Value
	})
	return entries
}

// TopAndBottom returns the topN highest entries, highest first, and the
// bottomN lowest entries, lowest first. Negative counts are treated as zero.
func TopAndBottom(objects []model.TrackedObject, metric string, topN, bottomN int) Result {
	sorted := Sorted(objects, metric)
	topN = clamp(topN, len(sorted))
	bottomN = clamp(bottomN, len(sorted))

	top := make([]model.RankingEntry, 0, topN)
	for i := len(sorted) - 1; i >= len(sorted)-topN; i-- {
		top = append(top, sorted[i])
	}
	bottom := make([]model.RankingEntry, bottomN)
	copy(bottom, sorted[:bottomN])

	return Result{Metric: metric, Top: top, Bottom: bottom}
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

// FormatEntry renders "Score <value> [ID: <id>] <name>" with two decimals.
func FormatEntry(e model.RankingEntry) string {
	return "Score " + strconv.FormatFloat(e.Value, 'f', 2, 64) + " [ID: " + e.ID + "] " + e.Name
}

// Render writes title followed by one numbered line per entry.
func Render(title string, entries []model.RankingEntry) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	for i, e := range entries {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(FormatEntry(e))
		b.WriteByte('\n')
	}
	return b.String()
}
