package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsFile(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	if cfg.FixtureIP == nil || cfg.GetFixtureIP() == "" {
		t.Fatal("FixtureIP must be set")
	}
	if cfg.GetFixturePort() <= 0 {
		t.Errorf("FixturePort must be positive, got %d", cfg.GetFixturePort())
	}
	if cfg.GetPanStep() <= 0 || cfg.GetTiltStep() <= 0 {
		t.Error("pan/tilt step must be positive")
	}
	if cfg.GetDwellDuration() <= 0 {
		t.Error("dwell duration must be positive")
	}
	if cfg.GetOvershootK1() == 0 {
		t.Error("overshoot_k1 should be the nonzero spec constant")
	}
	if cfg.GetSolverTolerance() <= 0 {
		t.Error("solver tolerance must be positive")
	}
}

func TestLoadTuningConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.json")
	if err := os.WriteFile(path, []byte(`{"pan_step": 2.5}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig failed: %v", err)
	}

	if cfg.GetPanStep() != 2.5 {
		t.Errorf("GetPanStep() = %f, want 2.5", cfg.GetPanStep())
	}
	// Everything else should fall back to defaults.
	if cfg.GetTiltStep() != 1.0 {
		t.Errorf("GetTiltStep() = %f, want default 1.0", cfg.GetTiltStep())
	}
	if cfg.GetFixturePort() != 8000 {
		t.Errorf("GetFixturePort() = %d, want default 8000", cfg.GetFixturePort())
	}
}

func TestLoadTuningConfig_RejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("expected error for non-.json extension")
	}
}

func TestLoadTuningConfig_RejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.json")

	big := make(map[string]string)
	big["padding"] = string(make([]byte, 2*1024*1024))
	data, _ := json.Marshal(big)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("expected error for oversized config file")
	}
}

func TestValidate_RejectsBadFixturePort(t *testing.T) {
	cfg := EmptyTuningConfig()
	badPort := 70000
	cfg.FixturePort = &badPort

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range fixture_port")
	}
}

func TestValidate_RejectsBadDuration(t *testing.T) {
	cfg := EmptyTuningConfig()
	bad := "not-a-duration"
	cfg.DwellDuration = &bad

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for malformed dwell_duration")
	}
}

func TestGetDebounceInterval_Default(t *testing.T) {
	cfg := EmptyTuningConfig()
	if cfg.GetDebounceInterval() != 150*time.Millisecond {
		t.Errorf("default debounce interval = %v, want 150ms", cfg.GetDebounceInterval())
	}
}
