// calplot is an offline diagnostic tool: given a channel's fixture
// registry and an optional LOCATE scan-history snapshot, it writes an
// HTML calibration report (anchor table, solved light position,
// predicted aim over a sample grid) and a PNG intensity heatmap per
// sensor. Grounded on the teacher's lidar monitor tooling, which also
// reads a persisted run artifact offline and renders it to disk rather
// than serving it live.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/followspot/followspot/internal/aiming"
	"github.com/followspot/followspot/internal/calreport"
	"github.com/followspot/followspot/internal/fsutil"
	"github.com/followspot/followspot/internal/navigator"
	"github.com/followspot/followspot/internal/predictor"
	"github.com/followspot/followspot/internal/registry"
	"github.com/followspot/followspot/internal/security"
)

func main() {
	fixturesPath := flag.String("fixtures", ".fixtures.json", "Path to the fixture descriptor table")
	sensorsPath := flag.String("sensors", ".sensors.json", "Path to the sensor anchor table")
	sensorCoordsPath := flag.String("sensor-coords", "", "Path to a JSON file mapping sensor id to {x, y} stage coordinates (required)")
	channel := flag.String("channel", "", "Fixture channel to report on (required)")
	historyPath := flag.String("history", "", "Path to a LOCATE scan-history JSON snapshot (optional; enables the PNG heatmaps)")
	outputDir := flag.String("output", "calplot-report", "Output directory for report.html and sensor_*_heatmap.png")
	gridSteps := flag.Int("grid-steps", 12, "Side length of the predicted-aim sample grid")
	flag.Parse()

	if *channel == "" {
		fmt.Fprintln(os.Stderr, "calplot: -channel is required")
		os.Exit(1)
	}
	if *sensorCoordsPath == "" {
		fmt.Fprintln(os.Stderr, "calplot: -sensor-coords is required")
		os.Exit(1)
	}

	fs := fsutil.OSFileSystem{}
	reg, err := registry.Open(fs, *fixturesPath, *sensorsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calplot: opening registry: %v\n", err)
		os.Exit(1)
	}

	anchors := reg.ChannelAnchors(*channel)
	if len(anchors) == 0 {
		fmt.Fprintf(os.Stderr, "calplot: channel %s has no calibrated anchors\n", *channel)
		os.Exit(1)
	}

	sensorCoords, err := loadSensorCoords(*sensorCoordsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calplot: loading sensor coordinates: %v\n", err)
		os.Exit(1)
	}

	points := make([]predictor.Anchor, 0, len(anchors))
	minX, maxX, minY, maxY := 0.0, 0.0, 0.0, 0.0
	for i, sensorID := range sortedKeys(anchors) {
		coord, ok := sensorCoords[sensorID]
		if !ok {
			fmt.Fprintf(os.Stderr, "calplot: no stage coordinate for sensor %s\n", sensorID)
			os.Exit(1)
		}
		rec := anchors[sensorID]
		points = append(points, predictor.Anchor{X: coord.X, Y: coord.Y, Pan: rec.Pan, Tilt: rec.Tilt})
		if i == 0 || coord.X < minX {
			minX = coord.X
		}
		if i == 0 || coord.X > maxX {
			maxX = coord.X
		}
		if i == 0 || coord.Y < minY {
			minY = coord.Y
		}
		if i == 0 || coord.Y > maxY {
			maxY = coord.Y
		}
	}

	pos, err := predictor.Solve(points, predictor.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "calplot: solving light position: %v\n", err)
		os.Exit(1)
	}

	padX := (maxX - minX) * 0.2
	padY := (maxY - minY) * 0.2
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}
	grid := calreport.BuildSampleGrid(pos, minX-padX, maxX+padX, minY-padY, maxY+padY, *gridSteps)

	if err := security.ValidateExportPath(*outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "calplot: refusing output directory: %v\n", err)
		os.Exit(1)
	}

	reportHTML, err := calreport.AnchorReport(*channel, anchors, pos, grid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calplot: rendering report: %v\n", err)
		os.Exit(1)
	}

	if err := fs.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "calplot: creating output dir: %v\n", err)
		os.Exit(1)
	}
	reportPath := filepath.Join(*outputDir, "report.html")
	if err := fs.WriteFile(reportPath, []byte(reportHTML), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "calplot: writing report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (light position Lx=%.2f Ly=%.2f h=%.2f)\n", reportPath, pos.Lx, pos.Ly, pos.H)

	if *historyPath != "" {
		history, err := loadHistory(*historyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "calplot: loading history: %v\n", err)
			os.Exit(1)
		}
		count, err := calreport.GenerateHeatmaps(history, *outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "calplot: generating heatmaps: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %d sensor heatmap(s) to %s\n", count, *outputDir)
	}
}

func loadSensorCoords(path string) (map[string]aiming.SensorCoord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var coords map[string]aiming.SensorCoord
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return coords, nil
}

func loadHistory(path string) (map[string][]navigator.ScanRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var history map[string][]navigator.ScanRecord
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return history, nil
}

func sortedKeys(anchors map[string]registry.AnchorRecord) []string {
	keys := make([]string, 0, len(anchors))
	for k := range anchors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
