package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/sesps/spsplot/internal/mass"
)

func loadTable(t *testing.T) *mass.Table {
	t.Helper()
	table, err := mass.Load()
	if err != nil {
		t.Fatalf("mass table load failed: %v", err)
	}
	return table
}

func TestNewReactionResidualConservation(t *testing.T) {
	table := loadTable(t)

	r, err := NewReaction(table, ZA{6, 12}, ZA{1, 2}, ZA{1, 1})
	if err != nil {
		t.Fatalf("build reaction: %v", err)
	}

	if r.Residual.Z != 6 || r.Residual.A != 13 {
		t.Errorf("expected residual 13C, got Z=%d A=%d", r.Residual.Z, r.Residual.A)
	}
	if r.String() != "12C(d,p)13C" {
		t.Errorf("expected identifier 12C(d,p)13C, got %s", r.String())
	}
}

func TestQValue(t *testing.T) {
	table := loadTable(t)

	r, err := NewReaction(table, ZA{6, 12}, ZA{1, 2}, ZA{1, 1})
	if err != nil {
		t.Fatalf("build reaction: %v", err)
	}

	// Q = delta(d) + delta(12C) - delta(p) - delta(13C), all mass excesses.
	expected := 13.135723 - 7.288971 - 3.125009
	if math.Abs(r.Qgs()-expected) > 1e-6 {
		t.Errorf("Q-value: expected %f, got %f", expected, r.Qgs())
	}
}

func TestQValueRecomputable(t *testing.T) {
	table := loadTable(t)

	r, _ := NewReaction(table, ZA{6, 12}, ZA{1, 2}, ZA{1, 1})
	if r.Qgs() != r.Qgs() {
		t.Error("Q-value not deterministic")
	}
}

func TestNewReactionNotFound(t *testing.T) {
	table := loadTable(t)

	_, err := NewReaction(table, ZA{6, 99}, ZA{1, 2}, ZA{1, 1})
	if !errors.Is(err, mass.ErrNuclideNotFound) {
		t.Errorf("expected ErrNuclideNotFound for target, got %v", err)
	}

	// 16O(d,p) residual 17O exists; 18O(a,n) residual 21Ne exists;
	// pick one whose residual misses the table.
	_, err = NewReaction(table, ZA{92, 238}, ZA{1, 2}, ZA{0, 1})
	if !errors.Is(err, mass.ErrNuclideNotFound) {
		t.Errorf("expected ErrNuclideNotFound for residual, got %v", err)
	}
}

func TestThreshold(t *testing.T) {
	table := loadTable(t)

	exo, _ := NewReaction(table, ZA{6, 12}, ZA{1, 2}, ZA{1, 1})
	if th := exo.Threshold(0); th != 0 {
		t.Errorf("exothermic reaction: expected zero threshold, got %f", th)
	}

	endo, err := NewReaction(table, ZA{6, 12}, ZA{1, 2}, ZA{1, 3})
	if err != nil {
		t.Fatalf("build 12C(d,t)11C: %v", err)
	}
	th := endo.Threshold(0)
	if th <= -endo.Qgs() {
		t.Errorf("threshold %f should exceed |Q| %f", th, -endo.Qgs())
	}
}

func TestParseNotation(t *testing.T) {
	table := loadTable(t)

	tests := []struct {
		in   string
		want string
	}{
		{"12C(d,p)", "12C(d,p)13C"},
		{"12C(d,p)13C", "12C(d,p)13C"},
		{"28Si(d,p)", "28Si(d,p)29Si"},
		{"16O(d,a)", "16O(d,a)14N"},
		{"13C(3He,d)", "13C(h,d)14N"},
	}

	for _, tt := range tests {
		r, err := ParseNotation(table, tt.in)
		if err != nil {
			t.Errorf("parse %q: %v", tt.in, err)
			continue
		}
		if r.String() != tt.want {
			t.Errorf("parse %q: expected %s, got %s", tt.in, tt.want, r.String())
		}
	}
}

func TestParseNotationErrors(t *testing.T) {
	table := loadTable(t)

	bad := []string{"", "12C", "(d,p)", "12C(dp)", "12Xq(d,p)"}
	for _, in := range bad {
		if _, err := ParseNotation(table, in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}

	_, err := ParseNotation(table, "12C(d,p)14C")
	if !errors.Is(err, ErrUnbalanced) {
		t.Errorf("expected ErrUnbalanced, got %v", err)
	}
}
