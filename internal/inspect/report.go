package inspect

import (
	"context"

	"github.com/okian/satlens/internal/domain/types"
	"golang.org/x/sync/errgroup"
)

// Report is one snapshot of the viewer as seen over HTTP.
type Report struct {
	Health   types.Health
	State    types.State
	Legend   types.Legend
	Rankings *types.Rankings
}

// Ready reports whether the dataset had loaded when the report was taken.
func (r Report) Ready() bool {
	return r.Health.Status == types.StatusReady
}

// Fetch gathers a Report. Rankings are only requested once the dataset has
// loaded; the remaining reads run concurrently.
func Fetch(ctx context.Context, c *Client, cfg Config) (Report, error) {
	var rep Report
	h, err := c.Health(ctx)
	if err != nil {
		return rep, err
	}
	rep.Health = h

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := c.State(gctx)
		rep.State = st
		return err
	})
	g.Go(func() error {
		l, err := c.Legend(gctx)
		rep.Legend = l
		return err
	})
	if rep.Ready() {
		g.Go(func() error {
			r, err := c.Rankings(gctx, cfg.Metric, cfg.Top, cfg.Bottom)
			if err != nil {
				return err
			}
			rep.Rankings = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return rep, nil
}
