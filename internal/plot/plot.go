// Package plot orchestrates the kinematics solver and focal-plane mapper
// over a level list, producing the point sequence the presentation layer
// renders.
package plot

import (
	"errors"
	"fmt"

	"github.com/sesps/spsplot/internal/kinematics"
	"github.com/sesps/spsplot/internal/levels"
	"github.com/sesps/spsplot/internal/spectro"
)

// ErrNeutralEjectile indicates an ejectile with no charge, which has no
// magnetic rigidity and cannot be placed on the focal plane.
var ErrNeutralEjectile = errors.New("plot: neutral ejectile cannot be mapped")

// Status tags how a level's kinematics worked out. Forbidden and ambiguous
// levels stay in the output so they can be rendered distinctly.
type Status int

const (
	StatusOK Status = iota
	StatusForbidden
	StatusTwoRoots
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusForbidden:
		return "forbidden"
	case StatusTwoRoots:
		return "two-roots"
	}
	return "unknown"
}

// LabelMode selects which scalar becomes a point's label text.
type LabelMode int

const (
	LabelExcitation LabelMode = iota
	LabelKineticEnergy
	LabelPosition
)

// ParseLabelMode resolves a label mode name from the CLI or config.
func ParseLabelMode(s string) (LabelMode, error) {
	switch s {
	case "", "excitation", "ex":
		return LabelExcitation, nil
	case "ke", "energy":
		return LabelKineticEnergy, nil
	case "position", "z":
		return LabelPosition, nil
	}
	return LabelExcitation, fmt.Errorf("plot: unknown label mode %q", s)
}

// Point is one level placed on the focal plane. For StatusTwoRoots the
// Backward fields carry the second solution; for StatusForbidden only the
// Level and Label are meaningful.
type Point struct {
	Level        levels.Level
	Status       Status
	KE           float64 // ejectile lab kinetic energy, MeV
	Rigidity     float64 // kG*cm
	Rho          float64 // cm
	Z            float64 // focal-plane position, cm
	InAcceptance bool
	BackwardKE   float64
	BackwardRho  float64
	BackwardZ    float64
	Label        string
}

// Generate runs the solver and mapper once per level. Levels that come out
// forbidden or double-valued are included with their status, never dropped.
func Generate(r kinematics.Reaction, beamEnergy, labAngleDeg float64, cfg spectro.Config, lv []levels.Level, mode LabelMode) ([]Point, error) {
	charge := r.Ejectile.Z
	if charge <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNeutralEjectile, r.Ejectile.Name())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(lv))
	for _, level := range lv {
		p := Point{Level: level}

		sol := kinematics.Solve(r, beamEnergy, labAngleDeg, level.Energy)
		switch sol.Kind {
		case kinematics.Forbidden:
			p.Status = StatusForbidden
			p.Label = fmt.Sprintf("E=%.3f forbidden", level.Energy)
			points = append(points, p)
			continue
		case kinematics.TwoRoots:
			p.Status = StatusTwoRoots
			back, err := cfg.Map(sol.Backward.Rigidity(charge))
			if err != nil {
				return nil, err
			}
			p.BackwardKE = sol.Backward.KE
			p.BackwardRho = back.Rho
			p.BackwardZ = back.Z
		default:
			p.Status = StatusOK
		}

		pos, err := cfg.Map(sol.Forward.Rigidity(charge))
		if err != nil {
			return nil, err
		}
		p.KE = sol.Forward.KE
		p.Rigidity = pos.Rigidity
		p.Rho = pos.Rho
		p.Z = pos.Z
		p.InAcceptance = pos.InAcceptance
		p.Label = label(mode, level.Energy, p.KE, p.Z)

		points = append(points, p)
	}

	return points, nil
}

func label(mode LabelMode, excitation, ke, z float64) string {
	switch mode {
	case LabelKineticEnergy:
		return fmt.Sprintf("KE=%.3f", ke)
	case LabelPosition:
		return fmt.Sprintf("z=%.2f", z)
	default:
		return fmt.Sprintf("E=%.3f", excitation)
	}
}
