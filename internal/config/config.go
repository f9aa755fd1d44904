// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config filled with defaults.
// - Load layers defaults, an optional YAML file and SATLENS_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Selection modes accepted by selection_mode.
const (
	ModeSingle     = "single"
	ModeAccumulate = "accumulate"
)

// MaxBinCount bounds bin_count; each bin is a legend row.
const MaxBinCount = 256

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CatalogBaseURL is the asset catalog API root.
	CatalogBaseURL string `koanf:"catalog_base_url"`

	// AccessToken authenticates catalog requests (Bearer).
	AccessToken string `koanf:"access_token"`

	// AssetID pins a catalog asset and skips the "latest asset" lookup.
	AssetID int64 `koanf:"asset_id"`

	// DatasetFile loads a local CZML document instead of the catalog.
	DatasetFile string `koanf:"dataset_file"`

	// WatchDataset reloads DatasetFile whenever it changes on disk.
	WatchDataset bool `koanf:"watch_dataset"`

	// FetchTimeoutMS bounds each catalog HTTP call.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// MaxDatasetBytes caps the downloaded dataset size.
	MaxDatasetBytes int64 `koanf:"max_dataset_bytes"`

	// SelectionMode is "single" or "accumulate".
	SelectionMode string `koanf:"selection_mode"`

	// DefaultMetric is applied once the dataset is loaded.
	DefaultMetric string `koanf:"default_metric"`

	// BinCount is the number of legend bins.
	BinCount int `koanf:"bin_count"`

	// TopN and BottomN size the ranking lists.
	TopN    int `koanf:"top_n"`
	BottomN int `koanf:"bottom_n"`

	// FlyDurationMS is how long the headless camera takes to reach a target.
	FlyDurationMS int `koanf:"fly_duration_ms"`

	// EventQueueSize bounds the UI event queue.
	EventQueueSize int `koanf:"event_queue_size"`

	// InitialSearchID is searched for once the dataset has loaded.
	InitialSearchID string `koanf:"initial_search_id"`

	// APIToken enables Bearer auth on mutating API routes when non-empty.
	APIToken string `koanf:"api_token"`

	// TracingEnabled turns on the stdout span exporter.
	TracingEnabled bool `koanf:"tracing_enabled"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		CatalogBaseURL:  "https://api.cesium.com",
		FetchTimeoutMS:  30_000,
		MaxDatasetBytes: 256 << 20,
		SelectionMode:   ModeAccumulate,
		DefaultMetric:   "DIT",
		BinCount:        5,
		TopN:            5,
		BottomN:         10,
		FlyDurationMS:   3_000,
		EventQueueSize:  1_024,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// FlyDuration returns FlyDurationMS as a duration.
func (c *Config) FlyDuration() time.Duration {
	return time.Duration(c.FlyDurationMS) * time.Millisecond
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatasetFile == "" && c.AccessToken == "":
		return fmt.Errorf("%w: either dataset_file or access_token is required", ErrInvalidConfig)
	case c.DatasetFile == "" && strings.TrimSpace(c.CatalogBaseURL) == "":
		return fmt.Errorf("%w: catalog_base_url must not be empty", ErrInvalidConfig)
	case c.SelectionMode != ModeSingle && c.SelectionMode != ModeAccumulate:
		return fmt.Errorf("%w: selection_mode must be %q or %q", ErrInvalidConfig, ModeSingle, ModeAccumulate)
	case c.BinCount < 1 || c.BinCount > MaxBinCount:
		return fmt.Errorf("%w: bin_count must be between 1 and %d", ErrInvalidConfig, MaxBinCount)
	case c.TopN < 0 || c.BottomN < 0:
		return fmt.Errorf("%w: top_n and bottom_n must not be negative", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.EventQueueSize < 1:
		return fmt.Errorf("%w: event_queue_size must be at least 1", ErrInvalidConfig)
	}
	return nil
}
