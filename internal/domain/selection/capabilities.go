package selection

import (
	"context"

	"github.com/okian/satlens/internal/domain/binning"
	"github.com/okian/satlens/internal/domain/model"
	"github.com/okian/satlens/internal/domain/ranking"
)

// ObjectSource exposes the loaded dataset evaluated at "now".
type ObjectSource interface {
	Objects() []model.TrackedObject
	Has(id string) bool
}

// ObjectPicker resolves a screen coordinate to the object drawn there.
type ObjectPicker interface {
	PickAt(x, y float64) (id string, ok bool)
}

// CameraController moves the view. FlyTo returns immediately and calls done
// once the transition finishes, possibly from another goroutine.
type CameraController interface {
	FlyTo(ctx context.Context, id string, done func()) error
	FlyHome()
}

// OverlayRenderer attaches and detaches path overlays.
type OverlayRenderer interface {
	AttachPath(id string)
	DetachPath(id string)
}

// PointColorer recolors point markers.
type PointColorer interface {
	binning.PointColorer
	ResetPointColors(c model.Color)
}

// DetailDisplay shows the info box for one object.
type DetailDisplay interface {
	ShowDetail(id string)
	HideDetail()
}

// LegendDisplay shows the legend for the active metric.
type LegendDisplay interface {
	ShowLegend(metric string, items []model.LegendItem)
	RemoveLegend()
}

// RankingsPanel shows or hides the ranking lists.
type RankingsPanel interface {
	ShowRankings(headline string, res ranking.Result)
	HideRankings()
}

// Notifier raises blocking user-facing notices.
type Notifier interface {
	Notify(msg string)
}

// Scene bundles every rendering capability the controller drives.
type Scene interface {
	ObjectPicker
	CameraController
	OverlayRenderer
	PointColorer
	DetailDisplay
	LegendDisplay
	RankingsPanel
	Notifier
}

// Dispatcher runs fn on the goroutine that owns the controller.
type Dispatcher func(fn func())

func inline(fn func()) { fn() }
