package kinematics

import "math"

// QBRho2P converts magnetic rigidity in kG*cm to momentum in MeV/c for a
// singly charged particle: p = QBRho2P * q * B * rho.
const QBRho2P = 0.299792458

// Kind tags the outcome of a kinematics solve.
type Kind int

const (
	// Forbidden: the reaction cannot proceed at this angle and excitation.
	Forbidden Kind = iota
	// Unique: one physical ejectile momentum.
	Unique
	// TwoRoots: the kinematic double-valued region, both momenta physical.
	TwoRoots
)

func (k Kind) String() string {
	switch k {
	case Forbidden:
		return "forbidden"
	case Unique:
		return "unique"
	case TwoRoots:
		return "two roots"
	}
	return "unknown"
}

// Root is one physical solution for the ejectile.
type Root struct {
	KE       float64 // lab kinetic energy, MeV
	Momentum float64 // lab momentum, MeV/c
}

// Rigidity returns B*rho in kG*cm for the given charge state. Charge must
// be positive; neutral ejectiles have no magnetic rigidity.
func (r Root) Rigidity(charge int) float64 {
	return r.Momentum / (QBRho2P * float64(charge))
}

// Solution reports the outcome of one solve. Forward is the larger-momentum
// root; Backward is populated only for TwoRoots.
type Solution struct {
	Kind       Kind
	Excitation float64
	Forward    Root
	Backward   Root
}

// Solve computes the ejectile kinematics for a reaction at the given lab
// beam kinetic energy (MeV), lab emission angle (degrees) and residual
// excitation energy (MeV).
//
// The solve is fully relativistic: the target is at rest, the residual's
// effective mass is its ground-state mass plus the excitation, and the
// ejectile momentum at the given angle is a root of the quadratic obtained
// from four-momentum conservation. Squaring can introduce spurious roots,
// so each candidate is checked against the unsquared energy balance before
// it is accepted.
func Solve(r Reaction, beamEnergy, labAngleDeg, excitation float64) Solution {
	sol := Solution{Kind: Forbidden, Excitation: excitation}
	if beamEnergy <= 0 || excitation < 0 {
		return sol
	}

	mt := r.Target.Mass
	mp := r.Projectile.Mass
	me := r.Ejectile.Mass
	mr := r.Residual.Mass + excitation

	eBeam := beamEnergy + mp
	pBeam := math.Sqrt(eBeam*eBeam - mp*mp)

	eTot := eBeam + mt
	s := eTot*eTot - pBeam*pBeam
	if math.Sqrt(s) < me+mr {
		return sol
	}

	cos := math.Cos(labAngleDeg * math.Pi / 180.0)

	// (eTot^2 - pBeam^2 cos^2) p^2 - 2 K pBeam cos p + (eTot^2 me^2 - K^2) = 0
	k := (s + me*me - mr*mr) / 2.0
	a := eTot*eTot - pBeam*pBeam*cos*cos
	b := -2.0 * k * pBeam * cos
	c := eTot*eTot*me*me - k*k

	disc := b*b - 4.0*a*c
	if disc < 0 {
		return sol
	}

	sq := math.Sqrt(disc)
	roots := make([]Root, 0, 2)
	for _, p := range []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)} {
		if p <= 0 {
			continue
		}
		// Reject the spurious branch introduced by squaring.
		if k+pBeam*p*cos <= 0 {
			continue
		}
		e := math.Sqrt(p*p + me*me)
		roots = append(roots, Root{KE: e - me, Momentum: p})
	}

	switch len(roots) {
	case 0:
		return sol
	case 1:
		sol.Kind = Unique
		sol.Forward = roots[0]
	default:
		sol.Kind = TwoRoots
		if roots[0].Momentum >= roots[1].Momentum {
			sol.Forward, sol.Backward = roots[0], roots[1]
		} else {
			sol.Forward, sol.Backward = roots[1], roots[0]
		}
	}
	return sol
}
