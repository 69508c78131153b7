package calreport

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/followspot/followspot/internal/navigator"
)

// GenerateHeatmaps renders one PNG per sensor in history: a scatter of
// every LOCATE sample's (pan, tilt) position colored by intensity,
// showing where the sweep found its peak. Returns the number of files
// written. Adapted from the teacher's gridplotter ring-plot renderer
// (plot.New/plotter.XYs/vg.Save), substituting a pan/tilt intensity
// scatter for the teacher's frame-indexed background/foreground lines.
func GenerateHeatmaps(history map[string][]navigator.ScanRecord, outputDir string) (int, error) {
	sensorIDs := make([]string, 0, len(history))
	for id := range history {
		sensorIDs = append(sensorIDs, id)
	}
	sort.Strings(sensorIDs)

	count := 0
	for _, sensorID := range sensorIDs {
		records := history[sensorID]
		if len(records) == 0 {
			continue
		}
		if err := generateSensorHeatmap(sensorID, records, outputDir); err != nil {
			return count, fmt.Errorf("sensor %s: %w", sensorID, err)
		}
		count++
	}
	return count, nil
}

func generateSensorHeatmap(sensorID string, records []navigator.ScanRecord, outputDir string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sensor %s — LOCATE intensity", sensorID)
	p.X.Label.Text = "Pan (deg)"
	p.Y.Label.Text = "Tilt (deg)"

	maxIntensity := 0.0
	var peak navigator.ScanRecord
	for _, r := range records {
		if r.Intensity > maxIntensity {
			maxIntensity = r.Intensity
			peak = r
		}
	}
	if maxIntensity == 0 {
		maxIntensity = 1
	}

	pts := make(plotter.XYs, len(records))
	colors := make([]color.Color, len(records))
	for i, r := range records {
		pts[i] = plotter.XY{X: r.Pan, Y: r.Tilt}
		colors[i] = intensityColor(r.Intensity / maxIntensity)
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("new scatter: %w", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
	}
	p.Add(scatter)

	peakPts := plotter.XYs{{X: peak.Pan, Y: peak.Tilt}}
	peakScatter, err := plotter.NewScatter(peakPts)
	if err != nil {
		return fmt.Errorf("new peak marker: %w", err)
	}
	peakScatter.GlyphStyle = draw.GlyphStyle{Color: color.RGBA{R: 255, A: 255}, Radius: vg.Points(6), Shape: draw.CrossGlyph{}}
	p.Add(peakScatter)
	p.Legend.Add(fmt.Sprintf("peak %.1f", maxIntensity), peakScatter)
	p.Legend.Top = true

	outFile := filepath.Join(outputDir, fmt.Sprintf("sensor_%s_heatmap.png", sensorID))
	if err := p.Save(8*vg.Inch, 6*vg.Inch, outFile); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}

// intensityColor maps a normalized [0, 1] intensity to a viridis-style
// color, matching the palette the teacher's ECharts heatmap handlers
// use for VisualMap.InRange.
func intensityColor(t float64) color.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	stops := []color.RGBA{
		{R: 0x44, G: 0x01, B: 0x54, A: 255},
		{R: 0x3e, G: 0x4a, B: 0x89, A: 255},
		{R: 0x26, G: 0x82, B: 0x8e, A: 255},
		{R: 0x35, G: 0xb7, B: 0x79, A: 255},
		{R: 0xfd, G: 0xe7, B: 0x25, A: 255},
	}
	scaled := t * float64(len(stops)-1)
	i := int(scaled)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	frac := scaled - float64(i)
	a, b := stops[i], stops[i+1]
	return color.RGBA{
		R: lerpByte(a.R, b.R, frac),
		G: lerpByte(a.G, b.G, frac),
		B: lerpByte(a.B, b.B, frac),
		A: 255,
	}
}

func lerpByte(a, b uint8, frac float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*frac)
}
