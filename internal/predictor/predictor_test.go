package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() Config {
	return Config{Tolerance: 1e-10, MaxIters: 10000, HeightGuess: 10.0}
}

// S1 Calibration happy path: four anchors with captured raw peaks;
// after solving, predicting at (10, 7.5) should yield pan ~= -88 +/- 1
// and tilt ~= 43 +/- 1.
func TestSolve_S1Scenario(t *testing.T) {
	anchors := []Anchor{
		{X: 0, Y: 0, Pan: -222.29, Tilt: 50},
		{X: 20, Y: 0, Pan: 45.35, Tilt: 48},
		{X: 0, Y: 15, Pan: 218.32, Tilt: 50},
		{X: 20, Y: 15, Pan: -39.76, Tilt: 46},
	}

	pos, err := Solve(anchors, defaultConfig())
	require.NoError(t, err)

	pan, tilt := Predict(pos, 10, 7.5)
	assert.InDelta(t, -88.0, pan, 1.0)
	assert.InDelta(t, 43.0, tilt, 1.0)
}

// Property 5: predicted pan always lies in [-270, 270], tilt in [0, 90].
func TestPredict_OutputRangeInvariant(t *testing.T) {
	anchors := []Anchor{
		{X: 0, Y: 0, Pan: -222.29, Tilt: 50},
		{X: 20, Y: 0, Pan: 45.35, Tilt: 48},
		{X: 0, Y: 15, Pan: 218.32, Tilt: 50},
		{X: 20, Y: 15, Pan: -39.76, Tilt: 46},
	}
	pos, err := Solve(anchors, defaultConfig())
	require.NoError(t, err)

	for _, pt := range [][2]float64{{10, 7.5}, {0, 0}, {20, 15}, {5, 20}, {-5, -5}} {
		pan, tilt := Predict(pos, pt[0], pt[1])
		assert.GreaterOrEqual(t, pan, -270.0)
		assert.LessOrEqual(t, pan, 270.0)
		assert.GreaterOrEqual(t, tilt, 0.0)
		assert.LessOrEqual(t, tilt, 90.0)
	}
}

// Property 4 (solver round-trip): a synthetic light position, forward
// projected through four distinct planar anchors, is recovered to
// within 1e-3 feet, and each predicted (pan, tilt) reproduces the input
// within 0.01 degrees.
func TestSolve_RoundTripSyntheticPosition(t *testing.T) {
	truth := LightPosition{Lx: 12.0, Ly: 6.0, H: 14.0}
	points := [][2]float64{{0, 0}, {24, 0}, {0, 18}, {24, 18}}

	anchors := make([]Anchor, len(points))
	for i, p := range points {
		pan, tilt := forwardProject(truth.Lx, truth.Ly, truth.H, p[0], p[1])
		if pan > 270 {
			pan -= 360
		}
		anchors[i] = Anchor{X: p[0], Y: p[1], Pan: pan, Tilt: tilt}
	}

	pos, err := Solve(anchors, defaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, truth.Lx, pos.Lx, 1e-3)
	assert.InDelta(t, truth.Ly, pos.Ly, 1e-3)
	assert.InDelta(t, truth.H, pos.H, 1e-3)

	for i, p := range points {
		wantPan, wantTilt := forwardProject(truth.Lx, truth.Ly, truth.H, p[0], p[1])
		if wantPan > 270 {
			wantPan -= 360
		}
		gotPan, gotTilt := Predict(pos, p[0], p[1])
		assert.InDeltaf(t, wantPan, gotPan, 0.01, "anchor %d pan", i)
		assert.InDeltaf(t, wantTilt, gotTilt, 0.01, "anchor %d tilt", i)
	}
}

func TestSolve_NoAnchors(t *testing.T) {
	_, err := Solve(nil, defaultConfig())
	var solverFailed *SolverFailedError
	require.ErrorAs(t, err, &solverFailed)
}

func TestForwardProject_StraightDown(t *testing.T) {
	_, tilt := forwardProject(0, 0, 10, 0, 0)
	assert.Equal(t, 0.0, tilt)
}
