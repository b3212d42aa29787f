// Package tui is the interactive focal-plane explorer. Beam energy,
// lab angle, field and the rho window are adjusted live; every change
// re-solves the kinematics and redraws the focal plane.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sesps/spsplot/internal/kinematics"
	"github.com/sesps/spsplot/internal/levels"
	"github.com/sesps/spsplot/internal/plot"
	"github.com/sesps/spsplot/internal/spectro"
	"github.com/sesps/spsplot/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type param struct {
	name string
	step float64
	min  float64
	max  float64
}

var params = []param{
	{"beam energy", 0.5, 0.001, 10000},
	{"lab angle", 1.0, 0, 180},
	{"field", 0.1, 0.001, 20},
	{"rho min", 1.0, 0, 10000},
	{"rho max", 1.0, 0, 10000},
}

type view int

const (
	viewTable view = iota
	viewCurve
)

type model struct {
	reaction kinematics.Reaction
	levels   []levels.Level
	mode     plot.LabelMode

	beam  float64
	angle float64
	cfg   spectro.Config

	points []plot.Point
	err    error

	cursor  int
	editing bool
	editBuf string
	view    view

	width  int
	height int
}

// NewApp builds the explorer with an initial run already computed.
func NewApp(r kinematics.Reaction, beam, angle float64, cfg spectro.Config, lv []levels.Level, mode plot.LabelMode) tea.Model {
	m := &model{
		reaction: r,
		levels:   lv,
		mode:     mode,
		beam:     beam,
		angle:    angle,
		cfg:      cfg,
		width:    100,
		height:   30,
	}
	m.recompute()
	return m
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				m.setParam(m.cursor, val)
				m.recompute()
			}
			m.editing = false
			m.editBuf = ""
		case "escape":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c", "escape":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(params)-1 {
			m.cursor++
		}
	case "left", "h":
		m.adjust(m.cursor, -1)
	case "right", "l":
		m.adjust(m.cursor, +1)
	case "shift+left", "H":
		m.adjust(m.cursor, -10)
	case "shift+right", "L":
		m.adjust(m.cursor, +10)
	case "enter", " ":
		m.editing = true
		m.editBuf = fmt.Sprintf("%.2f", m.getParam(m.cursor))
	case "t":
		if m.view == viewTable {
			m.view = viewCurve
		} else {
			m.view = viewTable
		}
	}
	return m, nil
}

func (m *model) getParam(i int) float64 {
	switch i {
	case 0:
		return m.beam
	case 1:
		return m.angle
	case 2:
		return m.cfg.Field
	case 3:
		return m.cfg.RhoMin
	default:
		return m.cfg.RhoMax
	}
}

func (m *model) setParam(i int, v float64) {
	p := params[i]
	if v < p.min {
		v = p.min
	}
	if v > p.max {
		v = p.max
	}
	switch i {
	case 0:
		m.beam = v
	case 1:
		m.angle = v
	case 2:
		m.cfg.Field = v
	case 3:
		m.cfg.RhoMin = v
		if m.cfg.RhoMax < m.cfg.RhoMin {
			m.cfg.RhoMax = m.cfg.RhoMin
		}
	default:
		m.cfg.RhoMax = v
		if m.cfg.RhoMin > m.cfg.RhoMax {
			m.cfg.RhoMin = m.cfg.RhoMax
		}
	}
}

func (m *model) adjust(i int, ticks float64) {
	m.setParam(i, m.getParam(i)+ticks*params[i].step)
	m.recompute()
}

func (m *model) recompute() {
	m.points, m.err = plot.Generate(m.reaction, m.beam, m.angle, m.cfg, m.levels, m.mode)
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString("\n  " + viz.Header(m.reaction.String(), m.beam, m.angle, m.cfg) + "\n")
	b.WriteString(dimmer.Render("  "+strings.Repeat("─", 40)) + "\n\n")

	for i, p := range params {
		val := fmt.Sprintf("%8.2f", m.getParam(i))
		if m.editing && i == m.cursor {
			val = fmt.Sprintf("%8s", m.editBuf+"▋")
		}
		if i == m.cursor {
			b.WriteString("  " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", p.name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("    " + dim.Render(fmt.Sprintf("%-12s", p.name)) + dim.Render(val) + "\n")
		}
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("  " + red.Render(m.err.Error()) + "\n")
	} else {
		stripWidth := m.width - 4
		if stripWidth > 100 {
			stripWidth = 100
		}
		if strip := viz.FocalPlaneStrip(m.points, m.cfg, stripWidth); strip != "" {
			for _, line := range strings.Split(strip, "\n") {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n")

		var body string
		if m.view == viewCurve {
			body = viz.KECurve(m.points, stripWidth-10, 10)
		} else {
			body = viz.PointsTable(m.points)
		}
		for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("  ↑↓ select  ←→ adjust  shift faster  enter edit  t table/curve  q quit") + "\n")

	return b.String()
}
