// Package storage persists plot runs: one directory per run holding
// metadata.json and points.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sesps/spsplot/internal/levels"
	"github.com/sesps/spsplot/internal/plot"
	"github.com/sesps/spsplot/internal/spectro"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string         `json:"id"`
	Reaction     string         `json:"reaction"`
	Timestamp    time.Time      `json:"timestamp"`
	BeamEnergy   float64        `json:"beam_energy_mev"`
	Angle        float64        `json:"angle_deg"`
	Spectrometer spectro.Config `json:"spectrometer"`
	Points       int            `json:"points"`
}

var csvHeader = []string{
	"excitation", "uncertainty", "jpi", "status",
	"ke", "rho", "z", "in_acceptance",
	"backward_ke", "backward_rho", "backward_z", "label",
}

// Save writes one run and returns its ID.
func (s *Store) Save(reaction string, beamEnergy, angle float64, cfg spectro.Config, points []plot.Point) (string, error) {
	runID := fmt.Sprintf("%s_%d", sanitize(reaction), time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Reaction:     reaction,
		Timestamp:    time.Now(),
		BeamEnergy:   beamEnergy,
		Angle:        angle,
		Spectrometer: cfg,
		Points:       len(points),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "points.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, p := range points {
		row := []string{
			f(p.Level.Energy),
			f(p.Level.Uncertainty),
			p.Level.JPi,
			p.Status.String(),
			f(p.KE),
			f(p.Rho),
			f(p.Z),
			strconv.FormatBool(p.InAcceptance),
			f(p.BackwardKE),
			f(p.BackwardRho),
			f(p.BackwardZ),
			p.Label,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// sanitize strips the characters of a reaction identifier that do not
// belong in a directory name.
func sanitize(reaction string) string {
	out := make([]rune, 0, len(reaction))
	for _, r := range reaction {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadPoints reads a run's point rows back. Rows that fail to parse are
// dropped.
func (s *Store) LoadPoints(runID string) ([]plot.Point, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "points.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []plot.Point{}, nil
	}

	points := make([]plot.Point, 0, len(records)-1)
	for _, rec := range records[1:] {
		p, err := pointFromRow(rec)
		if err != nil {
			continue
		}
		points = append(points, p)
	}
	return points, nil
}

func pointFromRow(rec []string) (plot.Point, error) {
	var p plot.Point
	var err error

	if p.Level.Energy, err = strconv.ParseFloat(rec[0], 64); err != nil {
		return p, err
	}
	if p.Level.Uncertainty, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return p, err
	}
	p.Level.JPi = rec[2]

	switch rec[3] {
	case "forbidden":
		p.Status = plot.StatusForbidden
	case "two-roots":
		p.Status = plot.StatusTwoRoots
	default:
		p.Status = plot.StatusOK
	}

	if p.KE, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return p, err
	}
	if p.Rho, err = strconv.ParseFloat(rec[5], 64); err != nil {
		return p, err
	}
	if p.Z, err = strconv.ParseFloat(rec[6], 64); err != nil {
		return p, err
	}
	if p.InAcceptance, err = strconv.ParseBool(rec[7]); err != nil {
		return p, err
	}
	if p.BackwardKE, err = strconv.ParseFloat(rec[8], 64); err != nil {
		return p, err
	}
	if p.BackwardRho, err = strconv.ParseFloat(rec[9], 64); err != nil {
		return p, err
	}
	if p.BackwardZ, err = strconv.ParseFloat(rec[10], 64); err != nil {
		return p, err
	}
	p.Label = rec[11]

	return p, nil
}

// ExportData is the JSON export payload for one run.
type ExportData struct {
	RunMetadata
	Levels []levels.Level `json:"levels"`
	Rows   []plot.Point   `json:"points"`
}

// ExportJSONStdout writes a run's metadata and points to stdout.
func ExportJSONStdout(meta *RunMetadata, points []plot.Point) error {
	data := ExportData{RunMetadata: *meta, Rows: points}
	data.Levels = make([]levels.Level, len(points))
	for i, p := range points {
		data.Levels[i] = p.Level
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
