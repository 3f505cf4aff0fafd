package dashboard

import (
	"fmt"
	"time"

	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

// Figure is a Plotly figure rendered client-side by plotly.js.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type  string     `json:"type"`
	Name  string     `json:"name"`
	Mode  string     `json:"mode,omitempty"`
	X     []string   `json:"x"`
	Y     []*float64 `json:"y,omitempty"`
	Open  []float64  `json:"open,omitempty"`
	High  []float64  `json:"high,omitempty"`
	Low   []float64  `json:"low,omitempty"`
	Close []float64  `json:"close,omitempty"`
}

type Layout struct {
	Height int  `json:"height"`
	XAxis  Axis `json:"xaxis"`
	YAxis  Axis `json:"yaxis"`
}

type Axis struct {
	Title       AxisTitle    `json:"title"`
	RangeSlider *RangeSlider `json:"rangeslider,omitempty"`
}

type AxisTitle struct {
	Text string `json:"text"`
}

type RangeSlider struct {
	Visible bool `json:"visible"`
}

const chartHeight = 600

// Chart builds the candlestick figure of a snapshot with one line per
// moving average.
func Chart(s market.Snapshot) Figure {
	bars := s.History.Bars
	x := make([]string, len(bars))
	open := make([]float64, len(bars))
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		x[i] = b.Time.Format(time.DateOnly)
		open[i], high[i], low[i], closes[i] = b.Open, b.High, b.Low, b.Close
	}

	traces := make([]Trace, 0, 1+len(s.History.Averages))
	traces = append(traces, Trace{
		Type:  "candlestick",
		Name:  "Candlestick",
		X:     x,
		Open:  open,
		High:  high,
		Low:   low,
		Close: closes,
	})
	for _, avg := range s.History.Averages {
		traces = append(traces, Trace{
			Type: "scatter",
			Mode: "lines",
			Name: fmt.Sprintf("MA %d", avg.Window),
			X:    x,
			Y:    avg.Values,
		})
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Height: chartHeight,
			XAxis: Axis{
				Title:       AxisTitle{Text: "Data"},
				RangeSlider: &RangeSlider{Visible: true},
			},
			YAxis: Axis{Title: AxisTitle{Text: "Preço"}},
		},
	}
}
