package market

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Period is a history window understood by the provider.
type Period struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var periods = []Period{
	{"1d", "1 Dia"},
	{"5d", "5 Dias"},
	{"1mo", "1 Mês"},
	{"3mo", "3 Meses"},
	{"6mo", "6 Meses"},
	{"ytd", "Ano Atual (YTD)"},
	{"1y", "1 Ano"},
	{"5y", "5 Anos"},
	{"10y", "10 Anos"},
	{"max", "Desde o Início"},
}

// DefaultPeriod is the period preselected on the dashboard.
var DefaultPeriod = periods[6]

// Periods returns the selectable periods in display order.
func Periods() []Period {
	out := make([]Period, len(periods))
	copy(out, periods)
	return out
}

func ParsePeriod(code string) (Period, bool) {
	for _, p := range periods {
		if p.Code == code {
			return p, true
		}
	}
	return Period{}, false
}

var (
	windowOptions  = []int{20, 50, 100, 200}
	defaultWindows = []int{20, 50}
)

// WindowOptions returns the selectable moving-average windows.
func WindowOptions() []int { return append([]int(nil), windowOptions...) }

// DefaultWindows returns the windows selected before the user picks any.
func DefaultWindows() []int { return append([]int(nil), defaultWindows...) }

func ValidWindow(w int) bool {
	for _, o := range windowOptions {
		if o == w {
			return true
		}
	}
	return false
}

const (
	CurrencyBRL = "R$"
	CurrencyUSD = "$"

	b3Suffix = ".SA"
)

// CurrencyUnit returns the display currency for a ticker symbol.
// Symbols listed on B3 carry the ".SA" suffix.
func CurrencyUnit(symbol string) string {
	if strings.HasSuffix(strings.ToUpper(symbol), b3Suffix) {
		return CurrencyBRL
	}
	return CurrencyUSD
}

type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Average is a rolling mean of closes aligned with History.Bars.
// Values[i] is nil until the window is filled.
type Average struct {
	Window int        `json:"window"`
	Values []*float64 `json:"values"`
}

func (a Average) Name() string { return fmt.Sprintf("MA_%d", a.Window) }

type History struct {
	Bars     []Bar     `json:"bars"`
	Averages []Average `json:"averages"`
}

func (h History) Closes() []float64 {
	closes := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		closes[i] = b.Close
	}
	return closes
}

func (h History) Dates() []time.Time {
	dates := make([]time.Time, len(h.Bars))
	for i, b := range h.Bars {
		dates[i] = b.Time
	}
	return dates
}

// Profile holds the quote fields shown in the indicator table.
// Fields the provider does not report are nil.
type Profile struct {
	Name           string   `json:"name,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	Price          *float64 `json:"regularMarketPrice"`
	TrailingPE     *float64 `json:"trailingPE"`
	PriceToBook    *float64 `json:"priceToBook"`
	DividendYield  *float64 `json:"dividendYield"`
	ReturnOnEquity *float64 `json:"returnOnEquity"`
}

// Statement is a financial statement as a numeric matrix:
// Values[i][j] is line item Items[i] for reporting period Periods[j].
type Statement struct {
	Items   []string     `json:"items"`
	Periods []string     `json:"periods"`
	Values  [][]*float64 `json:"values"`
}

type Statements struct {
	Income   Statement `json:"income"`
	Balance  Statement `json:"balance"`
	CashFlow Statement `json:"cashFlow"`
}

type Snapshot struct {
	Symbol     string     `json:"symbol"`
	Currency   string     `json:"currency"`
	Profile    Profile    `json:"profile"`
	History    History    `json:"history"`
	Statements Statements `json:"statements"`
}

// Result is the outcome of fetching a single ticker. Exactly one of Snapshot
// and Err is set.
type Result struct {
	Symbol   string
	Snapshot *Snapshot
	Err      error
}

func (r Result) Failed() bool { return r.Err != nil }

// Provider is the remote market-data source.
type Provider interface {
	Profile(ctx context.Context, symbol string) (Profile, error)
	History(ctx context.Context, symbol string, period Period) ([]Bar, error)
	Statements(ctx context.Context, symbol string) (Statements, error)
}
