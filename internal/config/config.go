// Package config loads and saves run configurations: the reaction, beam
// settings, and the spectrometer record.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sesps/spsplot/internal/spectro"
)

const (
	DefaultBeamEnergy = 16.0 // MeV
	DefaultAngle      = 35.0 // degrees
)

// Config is one plot run. The reaction may be given as notation
// ("12C(d,p)") or as explicit Z/A numbers; notation wins when both are set.
type Config struct {
	Reaction     string         `yaml:"reaction"`
	Target       ZAConfig       `yaml:"target"`
	Projectile   ZAConfig       `yaml:"projectile"`
	Ejectile     ZAConfig       `yaml:"ejectile"`
	BeamEnergy   float64        `yaml:"beam_energy_mev"`
	Angle        float64        `yaml:"angle_deg"`
	LevelsFile   string         `yaml:"levels_file"`
	LevelsCache  string         `yaml:"levels_cache"`
	LabelMode    string         `yaml:"label_mode"`
	Spectrometer spectro.Config `yaml:"spectrometer"`
}

// ZAConfig identifies a nuclide in the yaml file.
type ZAConfig struct {
	Z int `yaml:"z"`
	A int `yaml:"a"`
}

func DefaultConfig() *Config {
	return &Config{
		Reaction:     "12C(d,p)",
		BeamEnergy:   DefaultBeamEnergy,
		Angle:        DefaultAngle,
		LabelMode:    "excitation",
		Spectrometer: spectro.Default(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
