package calreport

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/followspot/followspot/internal/navigator"
)

func TestGenerateHeatmaps_OneFilePerSensor(t *testing.T) {
	dir := t.TempDir()
	history := map[string][]navigator.ScanRecord{
		"1": {
			{Intensity: 10, Pan: 0, Tilt: 0, Direction: 1},
			{Intensity: 90, Pan: 90, Tilt: 40, Direction: 1},
		},
		"2": {
			{Intensity: 5, Pan: -45, Tilt: 10, Direction: -1},
		},
	}

	count, err := GenerateHeatmaps(history, dir)
	if err != nil {
		t.Fatalf("GenerateHeatmaps returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 heatmaps, got %d", count)
	}

	for _, sensorID := range []string{"1", "2"} {
		path := filepath.Join(dir, "sensor_"+sensorID+"_heatmap.png")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected heatmap file %s: %v", path, err)
		}
	}
}

func TestGenerateHeatmaps_SkipsSensorsWithNoSamples(t *testing.T) {
	dir := t.TempDir()
	history := map[string][]navigator.ScanRecord{
		"1": {},
	}

	count, err := GenerateHeatmaps(history, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 heatmaps for an empty history, got %d", count)
	}
}

func TestIntensityColor_ClampsAndInterpolates(t *testing.T) {
	low := intensityColor(-1)
	high := intensityColor(2)
	mid := intensityColor(0.5)

	if low == nil || high == nil || mid == nil {
		t.Fatal("intensityColor should never return nil")
	}
	if want := (color.RGBA{R: 0x44, G: 0x01, B: 0x54, A: 255}); low != want {
		t.Errorf("intensityColor(-1) = %v, want first stop %v", low, want)
	}
	if want := (color.RGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 255}); high != want {
		t.Errorf("intensityColor(2) = %v, want last stop %v", high, want)
	}
	// 0.125 lies halfway between the first two stops (#440154 and #3e4a89).
	if got, want := intensityColor(0.125), (color.RGBA{R: 0x41, G: 0x25, B: 0x6e, A: 255}); got != want {
		t.Errorf("intensityColor(0.125) = %v, want %v", got, want)
	}
}
