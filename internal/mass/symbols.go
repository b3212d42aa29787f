package mass

import "strings"

// Element symbols indexed by atomic number.
var symbols = []string{
	"n", "H", "He", "Li", "Be", "B", "C", "N", "O", "F",
	"Ne", "Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K",
	"Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu",
	"Zn", "Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y",
	"Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In",
	"Sn", "Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr",
	"Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm",
	"Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au",
	"Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac",
	"Th", "Pa", "U",
}

var symbolToZ = func() map[string]int {
	m := make(map[string]int, len(symbols))
	for z, s := range symbols {
		m[strings.ToLower(s)] = z
	}
	return m
}()

// SymbolFor returns the element symbol for an atomic number, or "" if
// unknown.
func SymbolFor(z int) string {
	if z < 0 || z >= len(symbols) {
		return ""
	}
	return symbols[z]
}

// ZForSymbol resolves an element symbol (case-insensitive) to its atomic
// number. The second return is false for unknown symbols.
func ZForSymbol(sym string) (int, bool) {
	z, ok := symbolToZ[strings.ToLower(sym)]
	return z, ok
}
