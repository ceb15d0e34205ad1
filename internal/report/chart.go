package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gaitlab/stride.report/internal/kinematics"
)

// chartExcluded filters coordinate columns that are model artifacts rather
// than joint angles of interest (patella beta angles, toe joints).
func chartExcluded(name string) bool {
	return strings.Contains(name, "beta") || strings.Contains(name, "mtp")
}

// ChartCoordinateNames returns the coordinates offered on the curve chart.
func ChartCoordinateNames(trial kinematics.Provider) []string {
	var names []string
	for _, name := range trial.CoordinateNames() {
		if chartExcluded(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// RenderCurveChart writes an HTML line chart of the selected coordinates over
// the analyzed window. An empty coordinates list charts everything except the
// excluded model artifacts.
func RenderCurveChart(w io.Writer, trial kinematics.Provider, window Window, title string, coordinates []string) error {
	if len(coordinates) == 0 {
		coordinates = ChartCoordinateNames(trial)
	}

	timeVec := trial.Time()
	if window.StartIdx < 0 || window.EndIdx >= len(timeVec) || window.StartIdx > window.EndIdx {
		return fmt.Errorf("chart window [%d, %d] out of range", window.StartIdx, window.EndIdx)
	}

	xAxis := make([]string, 0, window.EndIdx-window.StartIdx+1)
	for i := window.StartIdx; i <= window.EndIdx; i++ {
		xAxis = append(xAxis, fmt.Sprintf("%.3f", timeVec[i]))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Angle (deg) / Position (m)"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(xAxis)

	for _, name := range coordinates {
		if chartExcluded(name) {
			continue
		}
		values, err := trial.Coordinate(name)
		if err != nil {
			return fmt.Errorf("chart coordinate %s: %w", name, err)
		}
		data := make([]opts.LineData, 0, window.EndIdx-window.StartIdx+1)
		for i := window.StartIdx; i <= window.EndIdx; i++ {
			data = append(data, opts.LineData{Value: values[i]})
		}
		line.AddSeries(name, data)
	}

	return line.Render(w)
}
