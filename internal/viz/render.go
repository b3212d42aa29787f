// Package viz renders plot results for the terminal: a focal-plane strip,
// a level table, and an excitation/KE curve.
package viz

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/sesps/spsplot/internal/plot"
	"github.com/sesps/spsplot/internal/spectro"
)

// Header renders the run summary line.
func Header(reaction string, beamEnergy, angle float64, cfg spectro.Config) string {
	return fmt.Sprintf("%s  %s",
		bold.Render(reaction),
		dim.Render(fmt.Sprintf("beam %.2f MeV  angle %.1f°  field %.2f kG", beamEnergy, angle, cfg.Field)))
}

// FocalPlaneStrip draws the rho acceptance window with one marker per
// level. In-acceptance levels are bright, out-of-window levels dim,
// double-valued levels yellow; forbidden levels have no position and are
// counted in the caption.
func FocalPlaneStrip(points []plot.Point, cfg spectro.Config, width int) string {
	if width < 20 {
		width = 20
	}

	span := cfg.RhoMax - cfg.RhoMin
	if span <= 0 {
		return ""
	}
	// Leave room beyond the window so near-miss levels stay visible.
	lo := cfg.RhoMin - 0.1*span
	hi := cfg.RhoMax + 0.1*span

	cells := make([]string, width)
	for i := range cells {
		cells[i] = dimmer.Render("·")
	}

	forbidden := 0
	offscale := 0
	for _, p := range points {
		if p.Status == plot.StatusForbidden {
			forbidden++
			continue
		}
		idx := int(float64(width-1) * (p.Rho - lo) / (hi - lo))
		if idx < 0 || idx >= width {
			offscale++
			continue
		}
		switch {
		case p.Status == plot.StatusTwoRoots:
			cells[idx] = yellow.Render("|")
		case p.InAcceptance:
			cells[idx] = green.Render("|")
		default:
			cells[idx] = dim.Render("|")
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(cells, ""))
	b.WriteString("\n")

	// Window edge ticks under the strip.
	minTick := int(float64(width-1) * (cfg.RhoMin - lo) / (hi - lo))
	maxTick := int(float64(width-1) * (cfg.RhoMax - lo) / (hi - lo))
	axis := make([]rune, width)
	for i := range axis {
		axis[i] = ' '
	}
	axis[minTick] = '^'
	axis[maxTick] = '^'
	b.WriteString(dim.Render(string(axis)))
	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("rho window %.1f–%.1f cm", cfg.RhoMin, cfg.RhoMax)))
	if forbidden > 0 {
		b.WriteString(red.Render(fmt.Sprintf("  %d forbidden", forbidden)))
	}
	if offscale > 0 {
		b.WriteString(yellow.Render(fmt.Sprintf("  %d off scale", offscale)))
	}

	return b.String()
}

// PointsTable renders one row per level.
func PointsTable(points []plot.Point) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "EX(MEV)\tJPI\tKE(MEV)\tRHO(CM)\tZ(CM)\tSTATUS")
	for _, p := range points {
		switch p.Status {
		case plot.StatusForbidden:
			fmt.Fprintf(w, "%.3f\t%s\t-\t-\t-\tforbidden\n", p.Level.Energy, p.Level.JPi)
		case plot.StatusTwoRoots:
			fmt.Fprintf(w, "%.3f\t%s\t%.3f\t%.2f\t%.2f\ttwo-roots (back: %.3f MeV @ %.2f cm)\n",
				p.Level.Energy, p.Level.JPi, p.KE, p.Rho, p.Z, p.BackwardKE, p.BackwardRho)
		default:
			status := "ok"
			if !p.InAcceptance {
				status = "off detector"
			}
			fmt.Fprintf(w, "%.3f\t%s\t%.3f\t%.2f\t%.2f\t%s\n",
				p.Level.Energy, p.Level.JPi, p.KE, p.Rho, p.Z, status)
		}
	}
	w.Flush()

	return b.String()
}

// KECurve plots ejectile KE against level index for the solvable levels.
func KECurve(points []plot.Point, width, height int) string {
	data := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Status == plot.StatusForbidden {
			continue
		}
		data = append(data, p.KE)
	}
	if len(data) < 2 {
		return ""
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("ejectile KE (MeV) vs level"),
	)
}
