// Package sensorstate holds the shared mutable state Sensor Ingress (C3)
// and the Debouncer (C4) operate on: the live intensity map and the
// per-sensor raw-sample buffers. A single mutex protects both, matching
// the locking discipline where ingress writes, debouncer passes, and
// navigator reads all acquire the same lock; critical sections stay
// O(#sensors).
package sensorstate

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Store is the intensity-mutex-protected pair (buffers, published map).
type Store struct {
	mu sync.Mutex

	maxBufferSamples int
	validSensors     map[string]bool

	buffers   map[string][]float64
	published map[string]float64
}

// New returns a Store that accepts samples only from the given sensor
// ids and caps each per-sensor buffer at maxBufferSamples, dropping the
// oldest sample on overflow.
func New(validSensors []string, maxBufferSamples int) *Store {
	valid := make(map[string]bool, len(validSensors))
	for _, id := range validSensors {
		valid[id] = true
	}
	return &Store{
		maxBufferSamples: maxBufferSamples,
		validSensors:     valid,
		buffers:          make(map[string][]float64),
		published:        make(map[string]float64),
	}
}

// Append pushes value onto sensorID's buffer. It reports false without
// mutating anything if sensorID is not in the registered sensor set.
// Overflowing buffers drop the oldest sample.
func (s *Store) Append(sensorID string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.validSensors[sensorID] {
		return false
	}

	buf := append(s.buffers[sensorID], value)
	if over := len(buf) - s.maxBufferSamples; over > 0 {
		buf = buf[over:]
	}
	s.buffers[sensorID] = buf
	return true
}

// DebouncePass computes the mean of every non-empty buffer, publishes it
// as that sensor's current intensity, and clears the buffer. Sensors
// with an empty buffer retain their previously published value. Returns
// a copy of the published map after the pass.
func (s *Store) DebouncePass() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sensorID, buf := range s.buffers {
		if len(buf) == 0 {
			continue
		}
		s.published[sensorID] = stat.Mean(buf, nil)
		s.buffers[sensorID] = s.buffers[sensorID][:0]
	}
	return s.snapshotLocked()
}

// Snapshot returns a copy of the published intensity map. This is the
// only datum Navigator reads.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() map[string]float64 {
	out := make(map[string]float64, len(s.published))
	for id, v := range s.published {
		out[id] = v
	}
	return out
}

// BufferLen returns the current buffer length for sensorID, for tests
// asserting on backpressure behavior.
func (s *Store) BufferLen(sensorID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers[sensorID])
}

// ValidSensorIDs returns the registered sensor ids in sorted order.
func (s *Store) ValidSensorIDs() []string {
	out := make([]string, 0, len(s.validSensors))
	for id := range s.validSensors {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
