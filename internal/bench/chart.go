package bench

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

var ErrEmptyReport = errors.New("bench: nothing to draw")

// RenderChart draws the recovered rate against the noise level, one line per method, as SVG.
func RenderChart(report Report, w io.Writer) error {
	methods := report.Methods()
	if len(methods) == 0 {
		return ErrEmptyReport
	}

	maxNoise := 0.0
	series := make([]chart.Series, 0, len(methods))

	for _, method := range methods {
		results := report.ByMethod(method)

		xvals := make([]float64, 0, len(results))
		yvals := make([]float64, 0, len(results))
		for _, result := range results {
			xvals = append(xvals, result.Noise)
			yvals = append(yvals, result.RecoveredRate())
			maxNoise = max(maxNoise, result.Noise)
		}

		// a single point cannot be drawn as a line
		if len(xvals) == 1 {
			xvals = append(xvals, xvals[0])
			yvals = append(yvals, yvals[0])
		}

		series = append(series, chart.ContinuousSeries{
			Name: string(method),
			Style: chart.Style{
				StrokeWidth: 2,
				DotWidth:    3,
			},
			XValues: xvals,
			YValues: yvals,
		})
	}

	if maxNoise == 0 {
		maxNoise = 1
	}

	graph := chart.Chart{
		Title: fmt.Sprintf("Recovered %q", report.Text),
		XAxis: chart.XAxis{
			Name:  report.Axis,
			Range: &chart.ContinuousRange{Min: 0, Max: maxNoise},
		},
		YAxis: chart.YAxis{
			Name:  "recovered",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}
