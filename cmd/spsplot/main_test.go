package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sesps/spsplot/internal/config"
	"github.com/sesps/spsplot/internal/mass"
)

func TestNuclideReportMassExcessKeV(t *testing.T) {
	table, err := mass.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n, err := table.Lookup(6, 13)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	report := nuclideReport(n)
	if !strings.Contains(report, "13C  Z=6 A=13") {
		t.Errorf("missing header: %q", report)
	}
	// The dataset's keV value, not the internal MeV one.
	if !strings.Contains(report, "mass excess: 3125.009 keV") {
		t.Errorf("wrong mass excess line: %q", report)
	}
}

func TestLoadLevelsCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	data := "13C,[3.089443, 3.684507]\n29Si,[1.273]\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.LevelsCache = path
	r, err := buildReaction(cfg)
	if err != nil {
		t.Fatalf("buildReaction: %v", err)
	}

	lv, err := loadLevels(cfg, r)
	if err != nil {
		t.Fatalf("loadLevels: %v", err)
	}
	if len(lv) != 2 {
		t.Fatalf("expected 2 cached levels for 13C, got %d", len(lv))
	}
	if lv[0].Energy != 3.089443 || lv[1].Energy != 3.684507 {
		t.Errorf("wrong cached energies: %+v", lv)
	}
}

func TestLoadLevelsCacheMissFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	if err := os.WriteFile(path, []byte("29Si,[1.273]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig() // 12C(d,p), residual 13C
	cfg.LevelsCache = path
	r, err := buildReaction(cfg)
	if err != nil {
		t.Fatalf("buildReaction: %v", err)
	}

	lv, err := loadLevels(cfg, r)
	if err != nil {
		t.Fatalf("loadLevels: %v", err)
	}
	// Bundled 13C listing, starting at the ground state.
	if len(lv) < 2 || lv[0].Energy != 0 {
		t.Errorf("expected bundled 13C levels, got %+v", lv)
	}
}
