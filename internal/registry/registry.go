// Package registry implements the Fixture Registry (C2): per-channel
// pan/tilt/zoom ranges and the persisted sensor-anchor calibration table.
// Both are JSON-backed and loaded on startup; mutations are buffered in
// memory copy-on-write style and committed with Save, which atomically
// rewrites the file (write to a temp path, then rename) so a crash never
// leaves a torn file on disk.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/followspot/followspot/internal/fixture"
	"github.com/followspot/followspot/internal/fsutil"
	"github.com/followspot/followspot/internal/monitoring"
)

// FixtureDescriptor is one channel's mechanical ranges. Zoom is carried
// for forward compatibility with the editor tool but unused by the core
// aiming pipeline.
type FixtureDescriptor struct {
	Pan  [2]float64 `json:"pan"`
	Tilt [2]float64 `json:"tilt"`
	Zoom [2]float64 `json:"zoom,omitempty"`
}

// PanRange converts the descriptor's pan bounds to a fixture.Range.
func (d FixtureDescriptor) PanRange() fixture.Range {
	return fixture.Range{Min: d.Pan[0], Max: d.Pan[1]}
}

// TiltRange converts the descriptor's tilt bounds to a fixture.Range.
func (d FixtureDescriptor) TiltRange() fixture.Range {
	return fixture.Range{Min: d.Tilt[0], Max: d.Tilt[1]}
}

// FixtureTable maps channel -> descriptor.
type FixtureTable map[string]FixtureDescriptor

// AnchorRecord is one sensor's calibrated pose on a channel, captured
// during the Navigator's CALCULATE phase.
type AnchorRecord struct {
	Pan       float64 `json:"pan"`
	Tilt      float64 `json:"tilt"`
	Direction int     `json:"direction"`
}

// AnchorTable maps channel -> sensor id -> calibrated record.
type AnchorTable map[string]map[string]AnchorRecord

// Registry owns the fixture descriptor table and the sensor anchor
// table, both loaded from and persisted to JSON files.
type Registry struct {
	fs fsutil.FileSystem

	fixturesPath string
	sensorsPath  string

	mu       sync.RWMutex
	fixtures FixtureTable
	anchors  AnchorTable
}

// Open loads the fixture and sensor-anchor files from fixturesPath and
// sensorsPath, creating either as an empty JSON object if absent.
// Malformed JSON is logged and treated as empty rather than returned as
// an error, per the registry's failure-mode contract.
func Open(fs fsutil.FileSystem, fixturesPath, sensorsPath string) (*Registry, error) {
	r := &Registry{
		fs:           fs,
		fixturesPath: fixturesPath,
		sensorsPath:  sensorsPath,
	}
	if err := r.reloadFixtures(); err != nil {
		return nil, err
	}
	if err := r.reloadAnchors(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) reloadFixtures() error {
	data, err := readOrCreate(r.fs, r.fixturesPath)
	if err != nil {
		return err
	}
	table := FixtureTable{}
	if err := json.Unmarshal(data, &table); err != nil {
		monitoring.Logf("registry: malformed fixture table at %s, resetting to empty: %v", r.fixturesPath, err)
		table = FixtureTable{}
	}
	r.mu.Lock()
	r.fixtures = table
	r.mu.Unlock()
	return nil
}

func (r *Registry) reloadAnchors() error {
	data, err := readOrCreate(r.fs, r.sensorsPath)
	if err != nil {
		return err
	}
	table := AnchorTable{}
	if err := json.Unmarshal(data, &table); err != nil {
		monitoring.Logf("registry: malformed anchor table at %s, resetting to empty: %v", r.sensorsPath, err)
		table = AnchorTable{}
	}
	r.mu.Lock()
	r.anchors = table
	r.mu.Unlock()
	return nil
}

// ReloadFixtures re-reads the fixture descriptor file from disk, picking
// up edits made by the external fixture editor tool.
func (r *Registry) ReloadFixtures() error {
	return r.reloadFixtures()
}

func readOrCreate(fs fsutil.FileSystem, path string) ([]byte, error) {
	if !fs.Exists(path) {
		if err := fs.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("registry: create %s: %w", path, err)
		}
		return []byte("{}"), nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return data, nil
}

// ListChannels returns every channel with a fixture descriptor, sorted.
func (r *Registry) ListChannels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.fixtures))
	for ch := range r.fixtures {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// PanRange returns channel's pan bounds, NotFoundError if unknown.
func (r *Registry) PanRange(channel string) (fixture.Range, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.fixtures[channel]
	if !ok {
		return fixture.Range{}, &NotFoundError{Channel: channel}
	}
	return d.PanRange(), nil
}

// TiltRange returns channel's tilt bounds, NotFoundError if unknown.
func (r *Registry) TiltRange(channel string) (fixture.Range, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.fixtures[channel]
	if !ok {
		return fixture.Range{}, &NotFoundError{Channel: channel}
	}
	return d.TiltRange(), nil
}

// GetAnchor returns the calibrated record for (channel, sensorID),
// NotFoundError if the channel or that sensor's anchor is missing.
func (r *Registry) GetAnchor(channel, sensorID string) (AnchorRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sensors, ok := r.anchors[channel]
	if !ok {
		return AnchorRecord{}, &NotFoundError{Channel: channel}
	}
	rec, ok := sensors[sensorID]
	if !ok {
		return AnchorRecord{}, &NotFoundError{Channel: channel, Sensor: sensorID}
	}
	return rec, nil
}

// ChannelAnchors returns every sensor anchor recorded for channel.
func (r *Registry) ChannelAnchors(channel string) map[string]AnchorRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]AnchorRecord, len(r.anchors[channel]))
	for id, rec := range r.anchors[channel] {
		out[id] = rec
	}
	return out
}

// PutAnchor records a sensor's calibrated pose for channel in memory.
// Callers must call Save to persist the change durably.
func (r *Registry) PutAnchor(channel, sensorID string, rec AnchorRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.anchors == nil {
		r.anchors = AnchorTable{}
	}
	if r.anchors[channel] == nil {
		r.anchors[channel] = map[string]AnchorRecord{}
	}
	r.anchors[channel][sensorID] = rec
}

// Save atomically rewrites the sensor anchor file: marshal the current
// in-memory table, write it to a temp file, then rename over the real
// path. A crash between the write and the rename leaves the previous
// file intact.
func (r *Registry) Save() error {
	r.mu.RLock()
	data, err := json.MarshalIndent(r.anchors, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("registry: marshal anchor table: %w", err)
	}
	return atomicWrite(r.fs, r.sensorsPath, data)
}

func atomicWrite(fs fsutil.FileSystem, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := fs.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("registry: write temp file %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("registry: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}
