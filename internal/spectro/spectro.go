// Package spectro models the spectrometer configuration and the first-order
// mapping from magnetic rigidity to a focal-plane position.
package spectro

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrBadConfig indicates a spectrometer configuration the mapper cannot
// use.
var ErrBadConfig = errors.New("spectro: bad configuration")

// Config is the externally supplied spectrometer record. Fields are in
// kG and cm, matching the SE-SPS operating convention. The engine never
// mutates it.
type Config struct {
	Field         float64 `yaml:"field_kg"`       // magnetic field, kG
	RefRadius     float64 `yaml:"ref_radius_cm"`  // central-orbit bend radius, cm
	Dispersion    float64 `yaml:"dispersion"`     // focal-plane dispersion
	Magnification float64 `yaml:"magnification"`  // focal-plane magnification
	RefZ          float64 `yaml:"ref_z_cm"`       // focal-plane reference offset, cm
	RhoMin        float64 `yaml:"rho_min_cm"`     // detector acceptance, cm
	RhoMax        float64 `yaml:"rho_max_cm"`     // detector acceptance, cm
}

// Default returns the SE-SPS operating values.
func Default() Config {
	return Config{
		Field:         8.7,
		RefRadius:     76.0,
		Dispersion:    1.96,
		Magnification: 0.39,
		RefZ:          0.0,
		RhoMin:        69.0,
		RhoMax:        87.0,
	}
}

// Validate checks the fields the mapper divides by or compares against.
func (c Config) Validate() error {
	if c.Field <= 0 {
		return fmt.Errorf("%w: field must be positive, got %f", ErrBadConfig, c.Field)
	}
	if c.RhoMax < c.RhoMin {
		return fmt.Errorf("%w: rho window inverted (%f > %f)", ErrBadConfig, c.RhoMin, c.RhoMax)
	}
	return nil
}

// Position is one mapped focal-plane coordinate.
type Position struct {
	Rho          float64 // orbit radius, cm
	Rigidity     float64 // B*rho, kG*cm
	Z            float64 // distance along the focal plane, cm
	InAcceptance bool    // rho inside [RhoMin, RhoMax]
}

// Map converts a magnetic rigidity (kG*cm) into a focal-plane position.
// The deviation of the orbit radius from the reference radius maps linearly
// through dispersion and magnification.
func (c Config) Map(rigidity float64) (Position, error) {
	if err := c.Validate(); err != nil {
		return Position{}, err
	}

	rho := rigidity / c.Field
	z := c.RefZ + c.Dispersion*c.Magnification*(rho-c.RefRadius)

	return Position{
		Rho:          rho,
		Rigidity:     rigidity,
		Z:            z,
		InAcceptance: rho >= c.RhoMin && rho <= c.RhoMax,
	}, nil
}

// Load reads a spectrometer configuration from a yaml file, filling
// unspecified fields from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration to a yaml file.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
