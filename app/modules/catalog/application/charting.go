package catalogservice

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var errNoCappedCategories = errors.New("no capped categories")

var (
	usedColor      = drawing.ColorFromHex("b45309")
	remainingColor = drawing.ColorFromHex("15803d")
)

// GenerateCapacityChart produces a PNG bar chart with a used and a remaining
// bar for every category that has an early-bird capacity.
func GenerateCapacityChart(views []CategoryView) ([]byte, error) {
	var (
		bars    []chart.Value
		ceiling = 1.0
	)
	for _, v := range views {
		if v.EarlyBirdCapacity == nil || v.EarlyBirdRemaining == nil {
			continue
		}
		capacity := *v.EarlyBirdCapacity
		left := *v.EarlyBirdRemaining
		bars = append(bars,
			chart.Value{
				Label: fmt.Sprintf("%s used", v.Name),
				Value: float64(capacity - left),
				Style: chart.Style{FillColor: usedColor, StrokeColor: usedColor},
			},
			chart.Value{
				Label: fmt.Sprintf("%s left", v.Name),
				Value: float64(left),
				Style: chart.Style{FillColor: remainingColor, StrokeColor: remainingColor},
			},
		)
		ceiling = max(ceiling, float64(capacity))
	}
	if len(bars) == 0 {
		return nil, errNoCappedCategories
	}

	graph := chart.BarChart{
		Title:      "Early-bird capacity",
		Width:      120*len(bars) + 120,
		Height:     400,
		BarWidth:   60,
		BarSpacing: 40,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: ceiling},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
