// Package types contains the JSON shapes shared by the HTTP API and its clients.
package types

import (
	"time"

	"github.com/okian/satlens/internal/domain/model"
	"github.com/okian/satlens/internal/domain/ranking"
)

// Dataset status values.
const (
	StatusLoading = "loading"
	StatusReady   = "ready"
)

// LegendItem is one legend row.
type LegendItem struct {
	Color string  `json:"color"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Legend is the legend of the active metric.
type Legend struct {
	Metric string       `json:"metric"`
	NoData bool         `json:"no_data"`
	Items  []LegendItem `json:"items"`
}

// RankingEntry is one ranked object.
type RankingEntry struct {
	Rank  int     `json:"rank"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Line  string  `json:"line"`
}

// Rankings holds both ends of a ranking.
type Rankings struct {
	Metric   string         `json:"metric"`
	Headline string         `json:"headline,omitempty"`
	Top      []RankingEntry `json:"top"`
	Bottom   []RankingEntry `json:"bottom"`
}

// Snapshot describes the loaded dataset.
type Snapshot struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Count    int       `json:"count"`
}

// State is the full viewer state.
type State struct {
	Status          string            `json:"status"`
	Mode            string            `json:"mode"`
	Highlighted     []string          `json:"highlighted"`
	Metric          string            `json:"metric,omitempty"`
	NoData          bool              `json:"no_data"`
	Legend          []LegendItem      `json:"legend"`
	Detail          string            `json:"detail,omitempty"`
	PendingFlight   string            `json:"pending_flight,omitempty"`
	RankingsVisible bool              `json:"rankings_visible"`
	Rankings        *Rankings         `json:"rankings,omitempty"`
	Camera          string            `json:"camera"`
	Paths           []string          `json:"paths"`
	PointColors     map[string]string `json:"point_colors,omitempty"`
	Notices         []string          `json:"notices,omitempty"`
	Snapshot        *Snapshot         `json:"snapshot,omitempty"`
}

// ObjectDetail is the info box content for one object.
type ObjectDetail struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	HasPoint    bool               `json:"has_point"`
	Highlighted bool               `json:"highlighted"`
	Color       string             `json:"color,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Health is the liveness and readiness report.
type Health struct {
	Status  string `json:"status"`
	Objects int    `json:"objects"`
	Error   string `json:"error,omitempty"`
}

// PickResult reports what a pick selected; ID is empty for empty space.
type PickResult struct {
	ID          string   `json:"id,omitempty"`
	Highlighted []string `json:"highlighted"`
}

// SearchResult reports a successful search.
type SearchResult struct {
	ID string `json:"id"`
}

// ToggleResult reports the rankings panel visibility.
type ToggleResult struct {
	Visible bool `json:"visible"`
}

// FromLegend converts domain legend items.
func FromLegend(items []model.LegendItem) []LegendItem {
	out := make([]LegendItem, len(items))
	for i, it := range items {
		out[i] = LegendItem{Color: it.Color, Label: it.Label, Min: it.Min, Max: it.Max}
	}
	return out
}

// FromRanking converts a ranking result.
func FromRanking(res ranking.Result, headline string) Rankings {
	return Rankings{
		Metric:   res.Metric,
		Headline: headline,
		Top:      fromEntries(res.Top),
		Bottom:   fromEntries(res.Bottom),
	}
}

func fromEntries(entries []model.RankingEntry) []RankingEntry {
	out := make([]RankingEntry, len(entries))
	for i, e := range entries {
		out[i] = RankingEntry{
			Rank:  i + 1,
			ID:    e.ID,
			Name:  e.Name,
			Value: e.Value,
			Line:  ranking.FormatEntry(e),
		}
	}
	return out
}
