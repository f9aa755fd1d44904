package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/okian/satlens/internal/domain/types"
)

// styles are bound to one renderer so output to a pipe stays plain.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	panel   lipgloss.Style
	loading lipgloss.Style
	ready   lipgloss.Style
	r       *lipgloss.Renderer
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:   r.NewStyle().Foreground(lipgloss.Color("250")),
		panel:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("250")).Padding(0, 1),
		loading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		ready:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		r:       r,
	}
}

// Render writes rep as a set of terminal panels.
func Render(w io.Writer, rep Report) error {
	s := newStyles(w)
	panels := []string{s.panel.Render(statusPanel(s, rep))}
	if len(rep.Legend.Items) > 0 || rep.Legend.NoData {
		panels = append(panels, s.panel.Render(legendPanel(s, rep.Legend)))
	}
	if rep.Rankings != nil {
		panels = append(panels, s.panel.Render(rankingsPanel(s, *rep.Rankings)))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, panels...))
	return err
}

func statusPanel(s styles, rep Report) string {
	status := s.loading.Render(rep.Health.Status)
	if rep.Ready() {
		status = s.ready.Render(rep.Health.Status)
	}
	lines := []string{
		s.title.Render("satlens"),
		s.label.Render("status:      ") + status,
		s.label.Render("objects:     ") + fmt.Sprint(rep.Health.Objects),
		s.label.Render("mode:        ") + rep.State.Mode,
		s.label.Render("camera:      ") + rep.State.Camera,
		s.label.Render("highlighted: ") + strings.Join(rep.State.Highlighted, ", "),
	}
	if rep.State.Detail != "" {
		lines = append(lines, s.label.Render("detail:      ")+rep.State.Detail)
	}
	if rep.Health.Error != "" {
		lines = append(lines, s.label.Render("error:       ")+rep.Health.Error)
	}
	for _, n := range rep.State.Notices {
		lines = append(lines, s.label.Render("notice:      ")+n)
	}
	return strings.Join(lines, "\n")
}

func legendPanel(s styles, l types.Legend) string {
	lines := []string{s.title.Render("Legend: " + l.Metric)}
	if l.NoData {
		lines = append(lines, "no data for this metric")
	}
	for _, it := range l.Items {
		swatch := s.r.NewStyle().Background(lipgloss.Color(cssToHex(it.Color))).Render("  ")
		lines = append(lines, swatch+" "+it.Label)
	}
	return strings.Join(lines, "\n")
}

func rankingsPanel(s styles, r types.Rankings) string {
	lines := []string{s.title.Render(r.Headline)}
	if len(r.Top) > 0 {
		lines = append(lines, s.label.Render(fmt.Sprintf("Top %d by %s", len(r.Top), r.Metric)))
		for _, e := range r.Top {
			lines = append(lines, fmt.Sprintf("%2d. %s", e.Rank, e.Line))
		}
	}
	if len(r.Bottom) > 0 {
		lines = append(lines, s.label.Render(fmt.Sprintf("Bottom %d by %s", len(r.Bottom), r.Metric)))
		for _, e := range r.Bottom {
			lines = append(lines, fmt.Sprintf("%2d. %s", e.Rank, e.Line))
		}
	}
	return strings.Join(lines, "\n")
}

// cssToHex turns "rgb(r,g,b)" or "rgba(r,g,b,a)" into "#rrggbb".
// Anything else is returned unchanged.
func cssToHex(css string) string {
	var r, g, b int
	var a float64
	if _, err := fmt.Sscanf(css, "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	if _, err := fmt.Sscanf(css, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err == nil {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return css
}
