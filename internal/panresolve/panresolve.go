// Package panresolve implements the Pan Resolver (C5): mapping a raw
// pan angle to the mechanically nearest 360°-equivalent within a
// channel's range, and the direction-dependent overshoot correction
// applied when recording a calibration anchor.
package panresolve

import (
	"fmt"
	"math"

	"github.com/followspot/followspot/internal/fixture"
)

// UnreachableError reports that no 360°-equivalent of a target pan lies
// within the channel's mechanical range.
type UnreachableError struct {
	TargetPan float64
	Range     fixture.Range
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("panresolve: no equivalent of %.3f° reachable within [%.3f, %.3f]",
		e.TargetPan, e.Range.Min, e.Range.Max)
}

// NearestPan computes the representative of {target + 360k : k ∈ ℤ} that
// lies in panRange and minimizes the distance to current, breaking ties
// toward the candidate nearer zero.
func NearestPan(target, current float64, panRange fixture.Range) (float64, error) {
	kMin := int(math.Floor((panRange.Min-target)/360)) - 1
	kMax := int(math.Ceil((panRange.Max-target)/360)) + 1

	var (
		best     float64
		bestDist float64
		found    bool
	)
	for k := kMin; k <= kMax; k++ {
		candidate := target + 360*float64(k)
		if !panRange.Contains(candidate) {
			continue
		}
		dist := math.Abs(candidate - current)
		switch {
		case !found:
			best, bestDist, found = candidate, dist, true
		case dist < bestDist:
			best, bestDist = candidate, dist
		case dist == bestDist && math.Abs(candidate) < math.Abs(best):
			best = candidate
		}
	}
	if !found {
		return 0, &UnreachableError{TargetPan: target, Range: panRange}
	}
	return best, nil
}

// Overshoot correction coefficients, per the mechanical error model
// measured from sweep anchors.
const (
	DefaultK1 = 1.5728
	DefaultK2 = -0.0187
	DefaultK3 = 6.30e-5
)

// CorrectOvershoot applies the direction-dependent nonlinear overshoot
// model to a raw captured pan: corrected = raw - direction*(k1*tilt +
// k2*tilt^2 + k3*tilt*raw). Applied only when storing a calibration
// anchor, never at command time.
func CorrectOvershoot(rawPan, tilt float64, direction int, k1, k2, k3 float64) float64 {
	errTerm := k1*tilt + k2*tilt*tilt + k3*tilt*rawPan
	return rawPan - float64(direction)*errTerm
}
