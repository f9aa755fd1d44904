// Package inspect is a one-shot terminal client that prints the rankings,
// legend and selection state of a running satlens service.
package inspect

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Run fetches one Report and renders it to w.
func Run(ctx context.Context, cfg Config, w io.Writer) error {
	c := NewClient(cfg.BaseURL, cfg.Timeout)
	rep, err := Fetch(ctx, c, cfg)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", cfg.BaseURL, err)
	}
	return Render(w, rep)
}

// ShowHelp prints usage information for the inspector.
func ShowHelp() {
	os.Stdout.WriteString(`satlens inspector
=================

Prints the status, legend and rankings of a running satlens service.

Usage:
  go run ./cmd/inspect [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -metric string
        Ranking metric (default: the service's ranking metric)
  -top int
        Number of top entries (default: the service's top_n)
  -bottom int
        Number of bottom entries (default: the service's bottom_n)
  -timeout duration
        HTTP request timeout (default 10s)
  -help
        Show this help message

Examples:
  go run ./cmd/inspect
  go run ./cmd/inspect -metric S_D -top 10 -bottom 0
`)
}
