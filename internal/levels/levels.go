// Package levels parses excited-state listings for a residual nuclide.
//
// The input is the line-oriented NNDC adopted-levels format: one level per
// line, energy in keV, optionally followed by uncertainty digits and a
// spin-parity string. Real listings are irregular, so parsing is
// best-effort: a line whose energy cannot be read is skipped and recorded,
// never fatal. Only an unreadable resource is an error.
package levels

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrUnreadable indicates the level resource itself could not be read.
var ErrUnreadable = errors.New("levels: resource unreadable")

//go:embed data/*.txt
var bundled embed.FS

// Level is one excited state. Energies are in MeV.
type Level struct {
	Energy      float64
	Uncertainty float64 // 0 when unknown
	JPi         string  // display only
	Approximate bool    // energy carried a ~, (), or ? marker
}

// Skip records one malformed line dropped during parsing.
type Skip struct {
	Line   int
	Text   string
	Reason string
}

// ParseResult carries the parsed levels together with skip diagnostics.
type ParseResult struct {
	Levels  []Level
	Skipped []Skip
}

// Summary renders the "N levels parsed, M lines skipped" diagnostic.
func (r ParseResult) Summary() string {
	return fmt.Sprintf("%d levels parsed, %d lines skipped", len(r.Levels), len(r.Skipped))
}

// Parse reads a level listing. Levels keep input order; malformed lines are
// collected in Skipped.
func Parse(r io.Reader) ParseResult {
	var result ParseResult

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		level, err := parseLine(line)
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{Line: lineNo, Text: line, Reason: err.Error()})
			continue
		}
		result.Levels = append(result.Levels, level)
	}
	if err := scanner.Err(); err != nil {
		result.Skipped = append(result.Skipped, Skip{Line: lineNo, Reason: err.Error()})
	}

	return result
}

func parseLine(line string) (Level, error) {
	fields := strings.Fields(line)

	raw := fields[0]
	cleaned, approx := stripMarkers(raw)

	energyKeV, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return Level{}, fmt.Errorf("unparseable energy %q", raw)
	}
	if energyKeV < 0 {
		return Level{}, fmt.Errorf("negative energy %q", raw)
	}

	level := Level{Energy: energyKeV / 1000.0, Approximate: approx}

	rest := fields[1:]
	if len(rest) > 0 && isUncertaintyDigits(rest[0]) {
		// NNDC quotes uncertainty in units of the energy's last digit.
		digits, _ := strconv.Atoi(rest[0])
		level.Uncertainty = float64(digits) * math.Pow(10, float64(-decimals(cleaned))) / 1000.0
		rest = rest[1:]
	}
	if len(rest) > 0 {
		level.JPi = strings.Join(rest, " ")
	}

	return level, nil
}

// stripMarkers removes approximation annotations (~, parentheses, trailing
// ?) and reports whether any were present.
func stripMarkers(s string) (string, bool) {
	approx := false
	if strings.HasPrefix(s, "~") {
		s = s[1:]
		approx = true
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
		approx = true
	}
	if strings.HasSuffix(s, "?") {
		s = s[:len(s)-1]
		approx = true
	}
	return s, approx
}

func isUncertaintyDigits(s string) bool {
	if len(s) == 0 || len(s) > 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func decimals(s string) int {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	return len(s) - dot - 1
}

// Load parses a level listing from disk. A missing or unreadable file is
// reported via ErrUnreadable; parse-level problems never are.
func Load(path string) (ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()
	return Parse(f), nil
}

// Bundled parses one of the level listings shipped with the tool, keyed by
// isotope name (e.g. "13C").
func Bundled(isotope string) (ParseResult, error) {
	f, err := bundled.Open("data/" + isotope + ".txt")
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: no bundled listing for %s", ErrUnreadable, isotope)
	}
	defer f.Close()
	return Parse(f), nil
}

// BundledIsotopes lists the isotopes with a bundled level listing.
func BundledIsotopes() []string {
	entries, err := bundled.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".txt"))
	}
	return names
}

// ParseCache reads the "isotope,[e1, e2, ...]" CSV cache format produced by
// the level-fetching tool, energies already in MeV. Malformed rows are
// dropped.
func ParseCache(r io.Reader) map[string][]Level {
	out := make(map[string][]Level)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		comma := strings.IndexByte(line, ',')
		if comma <= 0 {
			continue
		}
		isotope := line[:comma]
		list := strings.TrimSpace(line[comma+1:])
		if !strings.HasPrefix(list, "[") || !strings.HasSuffix(list, "]") {
			continue
		}

		var lv []Level
		for _, tok := range strings.Split(list[1:len(list)-1], ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			e, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				continue
			}
			lv = append(lv, Level{Energy: e})
		}
		out[isotope] = lv
	}

	return out
}
