package aiming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/followspot/followspot/internal/fixture"
	"github.com/followspot/followspot/internal/fsutil"
	"github.com/followspot/followspot/internal/predictor"
	"github.com/followspot/followspot/internal/registry"
)

func setupRegistry(t *testing.T, anchors map[string]registry.AnchorRecord) *registry.Registry {
	t.Helper()
	fs := fsutil.NewMemoryFileSystem()
	fixturesJSON := `{"1": {"pan": [-270, 270], "tilt": [0, 85]}}`
	require.NoError(t, fs.WriteFile("/.fixtures.json", []byte(fixturesJSON), 0o644))
	reg, err := registry.Open(fs, "/.fixtures.json", "/.sensors.json")
	require.NoError(t, err)
	for sensorID, rec := range anchors {
		reg.PutAnchor("1", sensorID, rec)
	}
	return reg
}

func predictorConfig() predictor.Config {
	return predictor.Config{Tolerance: 1e-10, MaxIters: 10000, HeightGuess: 10.0}
}

// S6: aiming at a channel with fewer than four anchors fails with
// NotCalibrated and sends no command to the fixture.
func TestAim_NotCalibrated_NoCommandSent(t *testing.T) {
	reg := setupRegistry(t, map[string]registry.AnchorRecord{
		"1": {Pan: -222.29, Tilt: 50, Direction: 1},
		"2": {Pan: 45.35, Tilt: 48, Direction: 1},
		"3": {Pan: 218.32, Tilt: 50, Direction: -1},
	})
	rec := fixture.NewRecorder()
	svc := New(reg, rec, predictorConfig())

	sensorCoords := map[string]SensorCoord{
		"1": {X: 0, Y: 0},
		"2": {X: 20, Y: 0},
		"3": {X: 0, Y: 15},
	}

	_, _, err := svc.Aim("1", 5, 5, 15, sensorCoords)
	var notCalibrated *NotCalibratedError
	require.ErrorAs(t, err, &notCalibrated)
	assert.Equal(t, 3, notCalibrated.Count)
	assert.Empty(t, rec.Sent())
}

// Happy path: four anchors matching the S1 geometry resolve a pan/tilt
// and command the fixture.
func TestAim_HappyPath_CommandsFixture(t *testing.T) {
	reg := setupRegistry(t, map[string]registry.AnchorRecord{
		"1": {Pan: -222.29, Tilt: 50, Direction: 1},
		"2": {Pan: 45.35, Tilt: 48, Direction: 1},
		"3": {Pan: 218.32, Tilt: 50, Direction: -1},
		"4": {Pan: -39.76, Tilt: 46, Direction: -1},
	})
	rec := fixture.NewRecorder()
	svc := New(reg, rec, predictorConfig())

	sensorCoords := map[string]SensorCoord{
		"1": {X: 0, Y: 0},
		"2": {X: 20, Y: 0},
		"3": {X: 0, Y: 15},
		"4": {X: 20, Y: 15},
	}

	pan, tilt, err := svc.Aim("1", 10, 7.5, 15, sensorCoords)
	require.NoError(t, err)
	assert.InDelta(t, 43.0, tilt, 1.0)
	assert.True(t, pan >= -270 && pan <= 270)

	sent := rec.Sent()
	require.NotEmpty(t, sent)

	pose := rec.Pose("1")
	assert.Equal(t, pan, pose.Pan)
	assert.Equal(t, tilt, pose.Tilt)
}

func TestAim_MissingSensorCoordinate(t *testing.T) {
	reg := setupRegistry(t, map[string]registry.AnchorRecord{
		"1": {Pan: -222.29, Tilt: 50, Direction: 1},
		"2": {Pan: 45.35, Tilt: 48, Direction: 1},
		"3": {Pan: 218.32, Tilt: 50, Direction: -1},
		"4": {Pan: -39.76, Tilt: 46, Direction: -1},
	})
	rec := fixture.NewRecorder()
	svc := New(reg, rec, predictorConfig())

	sensorCoords := map[string]SensorCoord{
		"1": {X: 0, Y: 0},
		"2": {X: 20, Y: 0},
		"3": {X: 0, Y: 15},
	}

	_, _, err := svc.Aim("1", 10, 7.5, 15, sensorCoords)
	require.Error(t, err)
	assert.Empty(t, rec.Sent())
}
