// Package kinematics defines two-body nuclear reactions and solves their
// relativistic lab-frame kinematics.
package kinematics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sesps/spsplot/internal/mass"
)

var (
	// ErrBadNotation indicates an unparseable reaction string.
	ErrBadNotation = errors.New("kinematics: bad reaction notation")

	// ErrUnbalanced indicates a stated residual that violates Z/A
	// conservation.
	ErrUnbalanced = errors.New("kinematics: residual does not balance reaction")
)

// ZA identifies a nuclide by atomic and mass number.
type ZA struct {
	Z int
	A int
}

// Reaction holds the four participants of a two-body reaction. The residual
// is always derived from Z/A conservation. All four nuclides resolved
// against the mass table, so a constructed Reaction is usable.
type Reaction struct {
	Target     mass.Nuclide
	Projectile mass.Nuclide
	Ejectile   mass.Nuclide
	Residual   mass.Nuclide
}

// NewReaction resolves target, projectile and ejectile in the table and
// derives the residual by conservation of Z and A. Any miss fails the whole
// construction.
func NewReaction(table *mass.Table, target, projectile, ejectile ZA) (Reaction, error) {
	var r Reaction
	var err error

	if r.Target, err = table.Lookup(target.Z, target.A); err != nil {
		return Reaction{}, fmt.Errorf("target: %w", err)
	}
	if r.Projectile, err = table.Lookup(projectile.Z, projectile.A); err != nil {
		return Reaction{}, fmt.Errorf("projectile: %w", err)
	}
	if r.Ejectile, err = table.Lookup(ejectile.Z, ejectile.A); err != nil {
		return Reaction{}, fmt.Errorf("ejectile: %w", err)
	}

	residZ := target.Z + projectile.Z - ejectile.Z
	residA := target.A + projectile.A - ejectile.A
	if r.Residual, err = table.Lookup(residZ, residA); err != nil {
		return Reaction{}, fmt.Errorf("residual: %w", err)
	}

	return r, nil
}

// Qgs is the ground-state Q-value in MeV, recomputed from the four masses.
func (r Reaction) Qgs() float64 {
	return r.Target.Mass + r.Projectile.Mass - r.Ejectile.Mass - r.Residual.Mass
}

// Threshold returns the minimum lab beam kinetic energy (MeV) to populate
// the residual at the given excitation. Zero for exothermic reactions.
func (r Reaction) Threshold(excitation float64) float64 {
	q := r.Qgs() - excitation
	if q >= 0 {
		return 0
	}
	mr := r.Residual.Mass + excitation
	return -q * (r.Target.Mass + r.Projectile.Mass + r.Ejectile.Mass + mr) / (2 * r.Target.Mass)
}

// String renders the conventional identifier, e.g. "12C(d,p)13C".
func (r Reaction) String() string {
	return fmt.Sprintf("%s(%s,%s)%s",
		r.Target.Name(), lightName(r.Projectile), lightName(r.Ejectile), r.Residual.Name())
}

// Light-particle shorthand used inside reaction notation.
var aliases = map[string]ZA{
	"n": {0, 1},
	"p": {1, 1},
	"d": {1, 2},
	"t": {1, 3},
	"h": {2, 3},
	"a": {2, 4},
}

func lightName(n mass.Nuclide) string {
	for alias, za := range aliases {
		if za.Z == n.Z && za.A == n.A {
			return alias
		}
	}
	return n.Name()
}

// ParseNotation builds a Reaction from "12C(d,p)" notation. The residual
// may be stated ("12C(d,p)13C"); if so it is checked against conservation.
func ParseNotation(table *mass.Table, s string) (Reaction, error) {
	s = strings.TrimSpace(s)

	open := strings.IndexByte(s, '(')
	close := strings.IndexByte(s, ')')
	if open <= 0 || close < open {
		return Reaction{}, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}

	inner := strings.Split(s[open+1:close], ",")
	if len(inner) != 2 {
		return Reaction{}, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}

	target, err := parseParticle(s[:open])
	if err != nil {
		return Reaction{}, err
	}
	projectile, err := parseParticle(inner[0])
	if err != nil {
		return Reaction{}, err
	}
	ejectile, err := parseParticle(inner[1])
	if err != nil {
		return Reaction{}, err
	}

	r, err := NewReaction(table, target, projectile, ejectile)
	if err != nil {
		return Reaction{}, err
	}

	if rest := strings.TrimSpace(s[close+1:]); rest != "" {
		stated, err := parseParticle(rest)
		if err != nil {
			return Reaction{}, err
		}
		if stated.Z != r.Residual.Z || stated.A != r.Residual.A {
			return Reaction{}, fmt.Errorf("%w: stated %s, conservation gives %s",
				ErrUnbalanced, rest, r.Residual.Name())
		}
	}

	return r, nil
}

func parseParticle(s string) (ZA, error) {
	s = strings.TrimSpace(s)
	if za, ok := aliases[strings.ToLower(s)]; ok {
		return za, nil
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return ZA{}, fmt.Errorf("%w: particle %q", ErrBadNotation, s)
	}

	a, err := strconv.Atoi(s[:i])
	if err != nil {
		return ZA{}, fmt.Errorf("%w: particle %q", ErrBadNotation, s)
	}
	z, ok := mass.ZForSymbol(s[i:])
	if !ok {
		return ZA{}, fmt.Errorf("%w: unknown element %q", ErrBadNotation, s[i:])
	}

	return ZA{Z: z, A: a}, nil
}
