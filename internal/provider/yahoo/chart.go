package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

// chartResponse represents the Yahoo Finance v8 chart API response.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []any `json:"open"`
	High   []any `json:"high"`
	Low    []any `json:"low"`
	Close  []any `json:"close"`
	Volume []any `json:"volume"`
}

// History fetches daily OHLC bars for symbol over period.
func (c *Client) History(ctx context.Context, symbol string, period market.Period) ([]market.Bar, error) {
	params := map[string]string{
		"range":    period.Code,
		"interval": "1d",
		"events":   "div,splits",
	}

	var resp chartResponse
	if err := c.get(ctx, chartPath, symbol, params, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error: %w", resp.Chart.Error)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}

	bars := toBars(result.Timestamp, result.Indicators.Quote[0])

	slog.Info("retrieved yahoo history", "symbol", symbol, "period", period.Code, "count", len(bars))
	return bars, nil
}

// toBars zips timestamps with quote columns. Sessions without a close
// (holidays, suspended trading) are skipped; a missing open/high/low falls
// back to the close.
func toBars(timestamps []int64, q chartQuote) []market.Bar {
	n := min(len(timestamps), len(q.Close))
	bars := make([]market.Bar, 0, n)
	for i := range n {
		closeVal, ok := toFloat64(q.Close[i])
		if !ok {
			continue
		}
		bars = append(bars, market.Bar{
			Time:   time.Unix(timestamps[i], 0).UTC(),
			Open:   valueAt(q.Open, i, closeVal),
			High:   valueAt(q.High, i, closeVal),
			Low:    valueAt(q.Low, i, closeVal),
			Close:  closeVal,
			Volume: valueAt(q.Volume, i, 0),
		})
	}
	return bars
}

func valueAt(col []any, i int, fallback float64) float64 {
	if i >= len(col) {
		return fallback
	}
	if v, ok := toFloat64(col[i]); ok {
		return v
	}
	return fallback
}

// toFloat64 converts a JSON number (which may be float64 or json.Number) to float64.
// Returns false for nil values (Yahoo uses null for missing data points).
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
