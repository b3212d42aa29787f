// Package mass provides the nuclide mass table used to define reactions.
//
// Masses are atomic masses in MeV/c2, built as A*AMU plus the tabulated
// mass excess. The same convention is applied to every lookup, so electron
// masses cancel exactly in reaction Q-values.
package mass

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AMU is the atomic mass unit in MeV/c2.
const AMU = 931.49410242

// ErrNuclideNotFound indicates a (Z, A) pair absent from the mass table.
var ErrNuclideNotFound = errors.New("mass: nuclide not found")

//go:embed data/masses.txt
var massData []byte

// Nuclide is an immutable entry of the mass table.
type Nuclide struct {
	Z          int
	A          int
	Symbol     string  // element symbol, e.g. "C"
	MassExcess float64 // MeV
	Mass       float64 // atomic mass, MeV/c2
}

// Name returns the conventional isotope name, e.g. "12C". Nuclides built
// outside the table carry no symbol; the element list supplies it then.
func (n Nuclide) Name() string {
	sym := n.Symbol
	if sym == "" {
		sym = SymbolFor(n.Z)
	}
	return fmt.Sprintf("%d%s", n.A, sym)
}

type key struct{ z, a int }

// Table maps (Z, A) to nuclide data. Construction is the only write path.
type Table struct {
	nuclides map[key]Nuclide
}

// Load builds the table from the bundled mass-excess dataset.
func Load() (*Table, error) {
	return parse(bytes.NewReader(massData))
}

func parse(r *bytes.Reader) (*Table, error) {
	t := &Table{nuclides: make(map[key]Nuclide)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("mass: line %d: expected 4 fields, got %d", lineNo, len(fields))
		}

		z, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("mass: line %d: bad Z: %w", lineNo, err)
		}
		a, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("mass: line %d: bad A: %w", lineNo, err)
		}
		excessKeV, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("mass: line %d: bad mass excess: %w", lineNo, err)
		}

		k := key{z, a}
		if _, dup := t.nuclides[k]; dup {
			return nil, fmt.Errorf("mass: line %d: duplicate nuclide Z=%d A=%d", lineNo, z, a)
		}

		excess := excessKeV / 1000.0
		t.nuclides[k] = Nuclide{
			Z:          z,
			A:          a,
			Symbol:     fields[2],
			MassExcess: excess,
			Mass:       float64(a)*AMU + excess,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mass: reading dataset: %w", err)
	}

	return t, nil
}

// Lookup returns the nuclide for (z, a) or ErrNuclideNotFound.
func (t *Table) Lookup(z, a int) (Nuclide, error) {
	n, ok := t.nuclides[key{z, a}]
	if !ok {
		return Nuclide{}, fmt.Errorf("%w: Z=%d A=%d", ErrNuclideNotFound, z, a)
	}
	return n, nil
}

// Len reports how many nuclides the table holds.
func (t *Table) Len() int {
	return len(t.nuclides)
}
