package renderer

import (
	"fmt"
	"io"

	"github.com/etnz/tradebook"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// EquityChart writes a standalone HTML page with the equity curve, one point
// per curve point.
func EquityChart(w io.Writer, title string, points []tradebook.EquityPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("no equity point to chart")
	}
	xAxis := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		xAxis[i] = instant(p.Time)
		v, _ := p.Value.Decimal().Float64()
		data[i] = opts.LineData{Value: v, Name: string(p.Kind)}
	}
	s, _ := tradebook.Summarize(points)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("change %s (%s), peak %s, trough %s", s.Change.SignedString(), s.ChangePercent.SignedString(), s.Peak, s.Trough),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries("Equity", data)
	return line.Render(w)
}
