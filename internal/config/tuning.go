// Package config loads and validates the tunable parameters that drive
// Navigator's sweep, the Debouncer's interval, the Pan Resolver's overshoot
// model, and the Fixture I/O transport address. Every field is an optional
// pointer so a partial (or absent) config file is safe: callers read values
// through the Get* accessors, which fall back to the defaults spec.md names
// when a field was not supplied.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the tuning defaults file checked into the repo and
// loaded by MustLoadDefaultConfig. The Get* accessors carry their own
// fallback values, which match this file except for fixture_ip (the
// accessor falls back to 127.0.0.1).
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root configuration for every tunable named in
// spec.md. The schema matches what a deployment's config.json would carry.
type TuningConfig struct {
	// Fixture transport
	FixtureIP   *string `json:"fixture_ip,omitempty"`
	FixturePort *int    `json:"fixture_port,omitempty"`

	// Sensor ingress
	IngressListenAddr *string `json:"ingress_listen_addr,omitempty"`

	// Debouncer (C4)
	DebounceInterval *string `json:"debounce_interval,omitempty"` // duration string, e.g. "150ms"
	MaxBufferSamples *int    `json:"max_buffer_samples,omitempty"`

	// Navigator sweep (C7)
	PanStep         *float64 `json:"pan_step,omitempty"`
	TiltStep        *float64 `json:"tilt_step,omitempty"`
	DwellDuration   *string  `json:"dwell_duration,omitempty"` // duration string, e.g. "20ms"
	MaxScanTilt     *float64 `json:"max_scan_tilt,omitempty"`
	SetupSettleTime *string  `json:"setup_settle_time,omitempty"` // duration string, e.g. "5s"

	// Pan Resolver overshoot correction (C5b)
	OvershootK1 *float64 `json:"overshoot_k1,omitempty"`
	OvershootK2 *float64 `json:"overshoot_k2,omitempty"`
	OvershootK3 *float64 `json:"overshoot_k3,omitempty"`

	// PanTiltPredictor solver (C6)
	SolverTolerance  *float64 `json:"solver_tolerance,omitempty"`
	SolverMaxIters   *int     `json:"solver_max_iters,omitempty"`
	SolverHeightGuess *float64 `json:"solver_height_guess,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields nil. Used as the
// target of json.Unmarshal so omitted fields stay nil rather than taking a
// Go zero value that might be a legitimate override.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to have a .json extension and to be under a sane size cap.
// Fields omitted from the file retain their nil/default state, so partial
// configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults, searching the
// current directory and common parent directories. Panics on failure;
// intended for test setup, mirroring spec.md's emphasis on deterministic
// test-time configuration.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that any set fields hold sane values.
func (c *TuningConfig) Validate() error {
	if c.FixturePort != nil && (*c.FixturePort <= 0 || *c.FixturePort > 65535) {
		return fmt.Errorf("fixture_port must be in (0, 65535], got %d", *c.FixturePort)
	}
	if c.DebounceInterval != nil && *c.DebounceInterval != "" {
		if _, err := time.ParseDuration(*c.DebounceInterval); err != nil {
			return fmt.Errorf("invalid debounce_interval %q: %w", *c.DebounceInterval, err)
		}
	}
	if c.DwellDuration != nil && *c.DwellDuration != "" {
		if _, err := time.ParseDuration(*c.DwellDuration); err != nil {
			return fmt.Errorf("invalid dwell_duration %q: %w", *c.DwellDuration, err)
		}
	}
	if c.SetupSettleTime != nil && *c.SetupSettleTime != "" {
		if _, err := time.ParseDuration(*c.SetupSettleTime); err != nil {
			return fmt.Errorf("invalid setup_settle_time %q: %w", *c.SetupSettleTime, err)
		}
	}
	if c.PanStep != nil && *c.PanStep <= 0 {
		return fmt.Errorf("pan_step must be positive, got %f", *c.PanStep)
	}
	if c.TiltStep != nil && *c.TiltStep <= 0 {
		return fmt.Errorf("tilt_step must be positive, got %f", *c.TiltStep)
	}
	if c.MaxBufferSamples != nil && *c.MaxBufferSamples <= 0 {
		return fmt.Errorf("max_buffer_samples must be positive, got %d", *c.MaxBufferSamples)
	}
	if c.SolverMaxIters != nil && *c.SolverMaxIters <= 0 {
		return fmt.Errorf("solver_max_iters must be positive, got %d", *c.SolverMaxIters)
	}
	return nil
}

// GetFixtureIP returns the configured fixture IP, defaulting to localhost.
func (c *TuningConfig) GetFixtureIP() string {
	if c.FixtureIP == nil || *c.FixtureIP == "" {
		return "127.0.0.1"
	}
	return *c.FixtureIP
}

// GetFixturePort returns the configured fixture UDP port, default 8000.
func (c *TuningConfig) GetFixturePort() int {
	if c.FixturePort == nil {
		return 8000
	}
	return *c.FixturePort
}

// GetIngressListenAddr returns the sensor ingress listen address, default "0.0.0.0:8765".
func (c *TuningConfig) GetIngressListenAddr() string {
	if c.IngressListenAddr == nil || *c.IngressListenAddr == "" {
		return "0.0.0.0:8765"
	}
	return *c.IngressListenAddr
}

// GetDebounceInterval returns the debounce pass interval, default 150ms.
func (c *TuningConfig) GetDebounceInterval() time.Duration {
	if c.DebounceInterval == nil || *c.DebounceInterval == "" {
		return 150 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.DebounceInterval)
	if err != nil {
		return 150 * time.Millisecond
	}
	return d
}

// GetMaxBufferSamples returns the per-sensor buffer cap before oldest
// samples are dropped, default 256.
func (c *TuningConfig) GetMaxBufferSamples() int {
	if c.MaxBufferSamples == nil {
		return 256
	}
	return *c.MaxBufferSamples
}

// GetPanStep returns the LOCATE sweep pan increment in degrees, default 1.0.
func (c *TuningConfig) GetPanStep() float64 {
	if c.PanStep == nil {
		return 1.0
	}
	return *c.PanStep
}

// GetTiltStep returns the LOCATE sweep tilt increment in degrees, default 1.0.
func (c *TuningConfig) GetTiltStep() float64 {
	if c.TiltStep == nil {
		return 1.0
	}
	return *c.TiltStep
}

// GetDwellDuration returns the per-step dwell before sampling, default 20ms.
func (c *TuningConfig) GetDwellDuration() time.Duration {
	if c.DwellDuration == nil || *c.DwellDuration == "" {
		return 20 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.DwellDuration)
	if err != nil {
		return 20 * time.Millisecond
	}
	return d
}

// GetMaxScanTilt returns the practical upper tilt bound for LOCATE, default 85.
func (c *TuningConfig) GetMaxScanTilt() float64 {
	if c.MaxScanTilt == nil {
		return 85.0
	}
	return *c.MaxScanTilt
}

// GetSetupSettleTime returns how long SETUP waits for the fixture to
// stabilize before sampling the baseline, default 5s.
func (c *TuningConfig) GetSetupSettleTime() time.Duration {
	if c.SetupSettleTime == nil || *c.SetupSettleTime == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(*c.SetupSettleTime)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetOvershootK1 returns the linear overshoot coefficient, default 1.5728.
func (c *TuningConfig) GetOvershootK1() float64 {
	if c.OvershootK1 == nil {
		return 1.5728
	}
	return *c.OvershootK1
}

// GetOvershootK2 returns the quadratic overshoot coefficient, default -0.0187.
func (c *TuningConfig) GetOvershootK2() float64 {
	if c.OvershootK2 == nil {
		return -0.0187
	}
	return *c.OvershootK2
}

// GetOvershootK3 returns the cross-term overshoot coefficient, default 6.30e-5.
func (c *TuningConfig) GetOvershootK3() float64 {
	if c.OvershootK3 == nil {
		return 6.30e-5
	}
	return *c.OvershootK3
}

// GetSolverTolerance returns the optimizer convergence tolerance, default 1e-10.
func (c *TuningConfig) GetSolverTolerance() float64 {
	if c.SolverTolerance == nil {
		return 1e-10
	}
	return *c.SolverTolerance
}

// GetSolverMaxIters returns the optimizer iteration cap, default 10000.
func (c *TuningConfig) GetSolverMaxIters() int {
	if c.SolverMaxIters == nil {
		return 10000
	}
	return *c.SolverMaxIters
}

// GetSolverHeightGuess returns the initial height guess in feet, default 10.0.
func (c *TuningConfig) GetSolverHeightGuess() float64 {
	if c.SolverHeightGuess == nil {
		return 10.0
	}
	return *c.SolverHeightGuess
}
