package plot

import (
	"errors"
	"strings"
	"testing"

	"github.com/sesps/spsplot/internal/kinematics"
	"github.com/sesps/spsplot/internal/levels"
	"github.com/sesps/spsplot/internal/mass"
	"github.com/sesps/spsplot/internal/spectro"
)

func buildReaction(t *testing.T, target, projectile, ejectile kinematics.ZA) kinematics.Reaction {
	t.Helper()
	table, err := mass.Load()
	if err != nil {
		t.Fatalf("mass table load failed: %v", err)
	}
	r, err := kinematics.NewReaction(table, target, projectile, ejectile)
	if err != nil {
		t.Fatalf("build reaction: %v", err)
	}
	return r
}

func TestGenerate(t *testing.T) {
	r := buildReaction(t, kinematics.ZA{Z: 6, A: 12}, kinematics.ZA{Z: 1, A: 2}, kinematics.ZA{Z: 1, A: 1})

	lv := []levels.Level{
		{Energy: 0.0},
		{Energy: 3.089443, JPi: "1/2+"},
		{Energy: 3.684507},
	}

	points, err := Generate(r, 16.0, 35.0, spectro.Default(), lv, LabelExcitation)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(points) != len(lv) {
		t.Fatalf("expected %d points, got %d", len(lv), len(points))
	}

	for i, p := range points {
		if p.Status != StatusOK {
			t.Errorf("point %d: expected ok, got %v", i, p.Status)
		}
		if p.KE <= 0 {
			t.Errorf("point %d: non-positive KE %f", i, p.KE)
		}
		if i > 0 && points[i].KE >= points[i-1].KE {
			t.Errorf("point %d: KE should decrease with excitation", i)
		}
		if i > 0 && points[i].Z >= points[i-1].Z {
			t.Errorf("point %d: focal-plane position should decrease with excitation", i)
		}
	}
}

func TestGenerateKeepsForbiddenLevels(t *testing.T) {
	r := buildReaction(t, kinematics.ZA{Z: 6, A: 12}, kinematics.ZA{Z: 1, A: 2}, kinematics.ZA{Z: 1, A: 1})

	lv := []levels.Level{
		{Energy: 0.0},
		{Energy: 500.0}, // far beyond the available energy
	}

	points, err := Generate(r, 16.0, 35.0, spectro.Default(), lv, LabelExcitation)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("forbidden level was dropped: got %d points", len(points))
	}
	if points[1].Status != StatusForbidden {
		t.Errorf("expected forbidden status, got %v", points[1].Status)
	}
	if !strings.Contains(points[1].Label, "forbidden") {
		t.Errorf("forbidden label should say so, got %q", points[1].Label)
	}
}

func TestGenerateTwoRoots(t *testing.T) {
	// Inverse kinematics, heavy ejectile at a forward angle.
	r := buildReaction(t, kinematics.ZA{Z: 1, A: 1}, kinematics.ZA{Z: 6, A: 12}, kinematics.ZA{Z: 6, A: 12})

	points, err := Generate(r, 50.0, 2.0, spectro.Default(), []levels.Level{{Energy: 0.0}}, LabelExcitation)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}

	p := points[0]
	if p.Status != StatusTwoRoots {
		t.Fatalf("expected two-roots status, got %v", p.Status)
	}
	if p.BackwardKE <= 0 || p.BackwardKE >= p.KE {
		t.Errorf("backward KE %f should be positive and below forward KE %f", p.BackwardKE, p.KE)
	}
	if p.BackwardRho >= p.Rho {
		t.Errorf("backward rho %f should be below forward rho %f", p.BackwardRho, p.Rho)
	}
}

func TestGenerateNeutralEjectile(t *testing.T) {
	// 12C(d,n)13N: neutron ejectile has no rigidity.
	r := buildReaction(t, kinematics.ZA{Z: 6, A: 12}, kinematics.ZA{Z: 1, A: 2}, kinematics.ZA{Z: 0, A: 1})

	_, err := Generate(r, 16.0, 35.0, spectro.Default(), []levels.Level{{Energy: 0.0}}, LabelExcitation)
	if !errors.Is(err, ErrNeutralEjectile) {
		t.Errorf("expected ErrNeutralEjectile, got %v", err)
	}
}

func TestGenerateEmptyLevels(t *testing.T) {
	r := buildReaction(t, kinematics.ZA{Z: 6, A: 12}, kinematics.ZA{Z: 1, A: 2}, kinematics.ZA{Z: 1, A: 1})

	points, err := Generate(r, 16.0, 35.0, spectro.Default(), nil, LabelExcitation)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected empty result, got %d points", len(points))
	}
}

func TestLabelModes(t *testing.T) {
	r := buildReaction(t, kinematics.ZA{Z: 6, A: 12}, kinematics.ZA{Z: 1, A: 2}, kinematics.ZA{Z: 1, A: 1})
	lv := []levels.Level{{Energy: 3.089443}}

	ex, err := Generate(r, 16.0, 35.0, spectro.Default(), lv, LabelExcitation)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(ex[0].Label, "E=3.089") {
		t.Errorf("excitation label: got %q", ex[0].Label)
	}

	ke, _ := Generate(r, 16.0, 35.0, spectro.Default(), lv, LabelKineticEnergy)
	if !strings.HasPrefix(ke[0].Label, "KE=") {
		t.Errorf("ke label: got %q", ke[0].Label)
	}

	pos, _ := Generate(r, 16.0, 35.0, spectro.Default(), lv, LabelPosition)
	if !strings.HasPrefix(pos[0].Label, "z=") {
		t.Errorf("position label: got %q", pos[0].Label)
	}
}

func TestParseLabelMode(t *testing.T) {
	tests := []struct {
		in   string
		want LabelMode
		ok   bool
	}{
		{"", LabelExcitation, true},
		{"excitation", LabelExcitation, true},
		{"ke", LabelKineticEnergy, true},
		{"z", LabelPosition, true},
		{"bogus", LabelExcitation, false},
	}

	for _, tt := range tests {
		got, err := ParseLabelMode(tt.in)
		if tt.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%q: expected error", tt.in)
		}
		if err == nil && got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
