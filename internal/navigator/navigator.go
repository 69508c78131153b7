// Package navigator implements the Navigator (C7) calibration state
// machine: SETUP -> LOCATE -> CALCULATE -> COMPLETE|FAILED. It is
// represented as tagged variants with a single tick method that
// executes one phase body and returns the new phase plus a status
// snapshot, so tests can drive it by injecting a synthetic sensor
// snapshot and a recording fixture sender.
package navigator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/followspot/followspot/internal/fixture"
	"github.com/followspot/followspot/internal/fsutil"
	"github.com/followspot/followspot/internal/monitoring"
	"github.com/followspot/followspot/internal/panresolve"
	"github.com/followspot/followspot/internal/registry"
	"github.com/followspot/followspot/internal/timeutil"
)

// Phase is one of the Navigator's tagged state variants.
type Phase string

const (
	PhaseSetup     Phase = "SETUP"
	PhaseLocate    Phase = "LOCATE"
	PhaseCalculate Phase = "CALCULATE"
	PhaseComplete  Phase = "COMPLETE"
	PhaseFailed    Phase = "FAILED"
)

// Terminal reports whether phase ends the calibration run.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// Status is the snapshot returned from every tick.
type Status struct {
	Phase Phase
	Pan   float64
	Tilt  float64
}

// ScanRecord is one sample captured during LOCATE.
type ScanRecord struct {
	Intensity float64 `json:"intensity"`
	Pan       float64 `json:"pan"`
	Tilt      float64 `json:"tilt"`
	Direction int     `json:"direction"`
}

// Config holds the sweep constants and overshoot coefficients.
type Config struct {
	PanStep         float64
	TiltStep        float64
	Dwell           time.Duration
	MaxScanTilt     float64
	SetupSettleTime time.Duration
	OvershootK1     float64
	OvershootK2     float64
	OvershootK3     float64
	HistoryPath     string // empty disables the diagnostic snapshot
}

// SensorSource is the read side of the shared intensity map: Navigator
// only ever takes a snapshot, never mutates it. *sensorstate.Store
// satisfies this; tests substitute a synthetic source.
type SensorSource interface {
	Snapshot() map[string]float64
}

// TelemetryPublisher receives a live snapshot on every phase transition
// and every LOCATE sample, for the out-of-scope operator GUI to
// consume. Nil is a valid Navigator field: publishing is then skipped.
type TelemetryPublisher interface {
	Publish(runID, phase string, pan, tilt float64, intensityBySensor map[string]float64)
}

// Navigator drives one calibration run for a single fixture channel.
// Exactly one Navigator instance should run per channel at a time.
type Navigator struct {
	RunID string

	channel string
	sender  fixture.Sender
	reg     *registry.Registry
	store   SensorSource
	clock   timeutil.Clock
	fs      fsutil.FileSystem
	cfg     Config

	phase     Phase
	panRange  fixture.Range
	tiltRange fixture.Range
	baseline  map[string]float64
	history   map[string][]ScanRecord
	err       error

	telemetry TelemetryPublisher
}

// SetTelemetry attaches a TelemetryPublisher that receives a live
// snapshot on every phase transition and LOCATE sample. Optional; a
// Navigator with no publisher attached behaves identically, just
// silently.
func (n *Navigator) SetTelemetry(pub TelemetryPublisher) {
	n.telemetry = pub
}

func (n *Navigator) publish(phase Phase, pan, tilt float64, intensity map[string]float64) {
	if n.telemetry == nil {
		return
	}
	n.telemetry.Publish(n.RunID, string(phase), pan, tilt, intensity)
}

// New constructs a Navigator for channel. If the channel's mechanical
// ranges cannot be read from the registry, the Navigator starts already
// in FAILED — there is nothing a sweep could do without them.
func New(channel string, sender fixture.Sender, reg *registry.Registry, store SensorSource, clock timeutil.Clock, fs fsutil.FileSystem, cfg Config) *Navigator {
	n := &Navigator{
		RunID:   uuid.NewString(),
		channel: channel,
		sender:  sender,
		reg:     reg,
		store:   store,
		clock:   clock,
		fs:      fs,
		cfg:     cfg,
		phase:   PhaseSetup,
	}

	panRange, err := reg.PanRange(channel)
	if err != nil {
		return n.fail(err)
	}
	tiltRange, err := reg.TiltRange(channel)
	if err != nil {
		return n.fail(err)
	}
	n.panRange = panRange
	n.tiltRange = tiltRange
	return n
}

// Phase returns the Navigator's current state.
func (n *Navigator) Phase() Phase { return n.phase }

// Err returns the error that drove the Navigator to FAILED, if any.
func (n *Navigator) Err() error { return n.err }

// Baseline returns the per-sensor intensity snapshot taken at the end of
// SETUP, with the light off, used to distinguish signal from ambient.
func (n *Navigator) Baseline() map[string]float64 { return n.baseline }

func (n *Navigator) fail(err error) *Navigator {
	n.phase = PhaseFailed
	n.err = err
	monitoring.Logf("navigator[%s]: run %s failed: %v", n.channel, n.RunID, err)
	return n
}

// Tick executes the current phase's body and returns the resulting
// status. Terminal phases are idempotent: ticking COMPLETE or FAILED
// just re-returns the current snapshot.
func (n *Navigator) Tick() (Status, error) {
	switch n.phase {
	case PhaseSetup:
		return n.tickSetup()
	case PhaseLocate:
		return n.tickLocate()
	case PhaseCalculate:
		return n.tickCalculate()
	default:
		return Status{Phase: n.phase}, nil
	}
}

func (n *Navigator) tickSetup() (Status, error) {
	n.commandPan(0)
	n.commandTilt(0)
	n.commandIntensity(0)

	n.clock.Sleep(n.cfg.SetupSettleTime)

	n.baseline = n.store.Snapshot()

	n.commandIntensity(100)

	n.phase = PhaseLocate
	n.publish(n.phase, 0, 0, n.baseline)
	return Status{Phase: n.phase, Pan: 0, Tilt: 0}, nil
}

func (n *Navigator) tickLocate() (Status, error) {
	history := make(map[string][]ScanRecord)

	maxTilt := n.tiltRange.Max
	if n.cfg.MaxScanTilt < maxTilt {
		maxTilt = n.cfg.MaxScanTilt
	}

	direction := 1
	tilt := 0.0
	for tilt <= maxTilt {
		start, end := n.panRange.Min, n.panRange.Max
		if direction < 0 {
			start, end = n.panRange.Max, n.panRange.Min
		}

		steps := int(roundAbs((end-start)/n.cfg.PanStep)) + 1
		for i := 0; i < steps; i++ {
			pan := start + float64(direction)*float64(i)*n.cfg.PanStep
			n.commandPan(pan)
			n.commandTilt(tilt)
			n.clock.Sleep(n.cfg.Dwell)

			snap := n.store.Snapshot()
			for sensorID, intensity := range snap {
				history[sensorID] = append(history[sensorID], ScanRecord{
					Intensity: intensity,
					Pan:       pan,
					Tilt:      tilt,
					Direction: direction,
				})
			}
			n.publish(PhaseLocate, pan, tilt, snap)
		}

		direction = -direction
		tilt += n.cfg.TiltStep
	}

	n.commandIntensity(0)
	n.commandPan(0)
	n.commandTilt(0)

	n.history = history
	n.phase = PhaseCalculate
	n.publish(n.phase, 0, 0, nil)
	return Status{Phase: n.phase, Pan: 0, Tilt: 0}, nil
}

func (n *Navigator) tickCalculate() (Status, error) {
	for sensorID, records := range n.history {
		best, ok := peakRecord(records)
		if !ok {
			continue
		}
		correctedPan := panresolve.CorrectOvershoot(best.Pan, best.Tilt, best.Direction,
			n.cfg.OvershootK1, n.cfg.OvershootK2, n.cfg.OvershootK3)
		n.reg.PutAnchor(n.channel, sensorID, registry.AnchorRecord{
			Pan:       correctedPan,
			Tilt:      best.Tilt,
			Direction: best.Direction,
		})
	}

	if err := n.reg.Save(); err != nil {
		return n.tickFailed(fmt.Errorf("navigator: persisting calibration: %w", err))
	}

	if n.cfg.HistoryPath != "" {
		if err := n.snapshotHistory(); err != nil {
			monitoring.Logf("navigator[%s]: failed to write diagnostic history snapshot: %v", n.channel, err)
		}
	}

	n.phase = PhaseComplete
	n.publish(n.phase, 0, 0, nil)
	return Status{Phase: n.phase, Pan: 0, Tilt: 0}, nil
}

func (n *Navigator) tickFailed(err error) (Status, error) {
	n.fail(err)
	n.publish(n.phase, 0, 0, nil)
	return Status{Phase: n.phase}, err
}

// peakRecord returns the record with the maximum intensity in records.
func peakRecord(records []ScanRecord) (ScanRecord, bool) {
	if len(records) == 0 {
		return ScanRecord{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.Intensity > best.Intensity {
			best = r
		}
	}
	return best, true
}

func (n *Navigator) snapshotHistory() error {
	data, err := json.MarshalIndent(n.history, "", "  ")
	if err != nil {
		return err
	}
	return n.fs.WriteFile(n.cfg.HistoryPath, data, 0o644)
}

// commandPan sends an absolute pan angle, best-effort: send errors are
// logged and the step is skipped, never failing the phase.
func (n *Navigator) commandPan(pan float64) {
	current := n.sender.Pose(n.channel).Pan
	if _, err := n.sender.SetPan(n.channel, current, pan-current, true, n.panRange); err != nil {
		monitoring.Logf("navigator[%s]: set pan %.3f failed: %v", n.channel, pan, err)
	}
}

func (n *Navigator) commandTilt(tilt float64) {
	current := n.sender.Pose(n.channel).Tilt
	if _, err := n.sender.SetTilt(n.channel, current, tilt-current, true, n.tiltRange); err != nil {
		monitoring.Logf("navigator[%s]: set tilt %.3f failed: %v", n.channel, tilt, err)
	}
}

func (n *Navigator) commandIntensity(pct float64) {
	if err := n.sender.SetIntensity(n.channel, pct); err != nil {
		monitoring.Logf("navigator[%s]: set intensity %.3f failed: %v", n.channel, pct, err)
	}
}

func roundAbs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
