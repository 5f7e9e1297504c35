package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/v2genv/core/model"
)

// WriteChart renders an HTML page with the battery trajectory and the
// billed prices of the transitions.
func WriteChart(w io.Writer, title string, ts []model.Transition) error {
	xAxis := make([]string, len(ts))
	level := make([]opts.LineData, len(ts))
	action := make([]opts.LineData, len(ts))
	price := make([]opts.LineData, len(ts))
	reward := make([]opts.LineData, len(ts))
	for i, t := range ts {
		xAxis[i] = t.State.Timestamp.Format("2006-01-02 15:04")
		level[i] = opts.LineData{Value: t.State.BatteryLevel}
		action[i] = opts.LineData{Value: t.AppliedAction}
		price[i] = opts.LineData{Value: t.Price}
		reward[i] = opts.LineData{Value: t.CumulativeReward}
	}

	battery := charts.NewLine()
	battery.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Battery"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Units"}),
	)
	battery.SetXAxis(xAxis).
		AddSeries("Battery level", level).
		AddSeries("Applied action", action)

	market := charts.NewLine()
	market.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Price and reward"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
	)
	market.SetXAxis(xAxis).
		AddSeries("Price", price).
		AddSeries("Cumulative reward", reward)

	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(battery, market)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
