// Package chart renders the role distribution bar chart served by the users API.
package chart

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"datadesk/m/internal/store"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

var barColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// RoleChart writes a PNG bar chart of user counts per role. An empty counts
// slice renders a placeholder image instead.
func RoleChart(w io.Writer, counts []store.RoleCount) error {
	p := plot.New()

	if len(counts) == 0 {
		p.Title.Text = "No user data"
		p.HideAxes()
		return render(w, p)
	}

	p.Title.Text = "User Roles Distribution"
	p.X.Label.Text = "Role"
	p.Y.Label.Text = "Number of Users"
	p.Y.Min = 0

	values := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		values[i] = float64(c.Count)
		names[i] = c.Role.String()
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(names...)
	return render(w, p)
}

func render(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
