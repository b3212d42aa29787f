package config

import (
	"sort"

	"github.com/sesps/spsplot/internal/spectro"
)

// Presets are common SE-SPS setups, keyed by name.
var Presets = map[string]*Config{
	"c12dp": {
		Reaction: "12C(d,p)", BeamEnergy: 16.0, Angle: 35.0,
		LevelsFile: "13C", LabelMode: "excitation",
	},
	"si28dp": {
		Reaction: "28Si(d,p)", BeamEnergy: 16.0, Angle: 35.0,
		LevelsFile: "29Si", LabelMode: "excitation",
	},
	"c12dp-forward": {
		Reaction: "12C(d,p)", BeamEnergy: 16.0, Angle: 15.0,
		LevelsFile: "13C", LabelMode: "excitation",
	},
	"c13hed": {
		Reaction: "13C(3He,d)", BeamEnergy: 21.0, Angle: 20.0,
		LabelMode: "excitation",
	},
}

// GetPreset returns a copy of the named preset with the spectrometer record
// filled in, or nil if unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	if cfg.Spectrometer == (spectro.Config{}) {
		cfg.Spectrometer = spectro.Default()
	}
	return &cfg
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
