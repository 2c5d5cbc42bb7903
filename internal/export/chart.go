// Package export renders spending data into image artifacts.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"kharcha/internal/core"
)

// TrendChart renders a daily spending series as a PNG line chart.
// It returns nil bytes when the series is too short to plot.
func TrendChart(points []core.TrendPoint, currency string) ([]byte, error) {
	if len(points) < 2 {
		return nil, nil
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		day, err := time.Parse(core.DateLayout, p.Date)
		if err != nil {
			return nil, fmt.Errorf("bad trend date %q: %w", p.Date, err)
		}
		xValues[i] = day
		yValues[i] = p.Total
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Daily spending, last %d days", len(points)),
		Width:  800,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 02"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f %s", v.(float64), currency)
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Spent",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render trend chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// CategoryPieChart renders a monthly per-category breakdown as a PNG pie chart.
func CategoryPieChart(totals []core.CategoryTotal, currency string) ([]byte, error) {
	if len(totals) == 0 {
		return nil, nil
	}

	var sum float64
	for _, t := range totals {
		sum += t.Total
	}

	values := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		if sum > 0 && t.Total/sum < 0.01 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %.2f %s", t.Category, t.Total, currency),
			Value: t.Total,
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:  "Spending by category",
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category chart: %w", err)
	}
	return buffer.Bytes(), nil
}
