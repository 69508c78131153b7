// Package calreport renders diagnostic output for one fixture channel's
// calibration run: an HTML report (anchor table, solved light
// position, predicted aim over a sample grid) and PNG heatmaps of the
// LOCATE scan history. Adapted from the teacher's lidar ECharts
// dashboard handlers and grid-plotting tool.
package calreport

import (
	"bytes"
	"fmt"
	"html"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/followspot/followspot/internal/predictor"
	"github.com/followspot/followspot/internal/registry"
)

// SampleGridPoint is one stage (x, y) location and its predicted aim,
// used to render the predicted-aim overlay on the anchor report.
type SampleGridPoint struct {
	X, Y      float64
	Pan, Tilt float64
}

// BuildSampleGrid forward-projects a regular (x, y) grid over
// [xMin, xMax] x [yMin, yMax] through pos, so the report can show what
// the solved light position predicts across the whole stage, not just
// at the calibrated anchors.
func BuildSampleGrid(pos predictor.LightPosition, xMin, xMax, yMin, yMax float64, steps int) []SampleGridPoint {
	if steps < 2 {
		steps = 2
	}
	points := make([]SampleGridPoint, 0, steps*steps)
	dx := (xMax - xMin) / float64(steps-1)
	dy := (yMax - yMin) / float64(steps-1)
	for i := 0; i < steps; i++ {
		x := xMin + float64(i)*dx
		for j := 0; j < steps; j++ {
			y := yMin + float64(j)*dy
			pan, tilt := predictor.Predict(pos, x, y)
			points = append(points, SampleGridPoint{X: x, Y: y, Pan: pan, Tilt: tilt})
		}
	}
	return points
}

// AnchorReport renders the channel report page: a table of the
// calibrated anchors, the solved light position, and a scatter of the
// predicted-aim sample grid colored by predicted tilt.
func AnchorReport(channel string, anchors map[string]registry.AnchorRecord, pos predictor.LightPosition, grid []SampleGridPoint) (string, error) {
	sensorIDs := make([]string, 0, len(anchors))
	for id := range anchors {
		sensorIDs = append(sensorIDs, id)
	}
	sort.Strings(sensorIDs)

	var table bytes.Buffer
	table.WriteString("<table border=\"1\" cellpadding=\"4\" cellspacing=\"0\">\n")
	table.WriteString("<tr><th>Sensor</th><th>Pan</th><th>Tilt</th><th>Direction</th></tr>\n")
	for _, id := range sensorIDs {
		rec := anchors[id]
		fmt.Fprintf(&table, "<tr><td>%s</td><td>%.3f</td><td>%.3f</td><td>%d</td></tr>\n",
			html.EscapeString(id), rec.Pan, rec.Tilt, rec.Direction)
	}
	table.WriteString("</table>\n")

	data := make([]opts.ScatterData, 0, len(grid))
	maxTilt := 0.0
	for _, p := range grid {
		if p.Tilt > maxTilt {
			maxTilt = p.Tilt
		}
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y, p.Tilt}})
	}
	if maxTilt == 0 {
		maxTilt = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Calibration report", Theme: "dark", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Channel %s predicted aim", channel),
			Subtitle: fmt.Sprintf("light position Lx=%.2f Ly=%.2f h=%.2f", pos.Lx, pos.Ly, pos.H),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Stage X (ft)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Stage Y (ft)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxTilt),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("predicted tilt", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	page := components.NewPage()
	page.AddCharts(scatter)

	var chartBuf bytes.Buffer
	if err := page.Render(&chartBuf); err != nil {
		return "", fmt.Errorf("calreport: render predicted-aim chart: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "<html><head><title>Channel %s calibration report</title></head><body>\n", html.EscapeString(channel))
	fmt.Fprintf(&out, "<h1>Channel %s calibration report</h1>\n", html.EscapeString(channel))
	out.WriteString("<h2>Calibrated anchors</h2>\n")
	out.Write(table.Bytes())
	out.WriteString("<h2>Predicted aim grid</h2>\n")
	out.Write(chartBuf.Bytes())
	out.WriteString("</body></html>\n")
	return out.String(), nil
}
