package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

// TickerSource resolves company names to ticker symbols.
type TickerSource interface {
	Load(ctx context.Context) error
	Companies(ctx context.Context) ([]string, error)
	Resolve(ctx context.Context, names []string) ([]string, error)
}

// Fetcher builds per-ticker snapshots.
type Fetcher interface {
	Fetch(ctx context.Context, symbols []string, period market.Period, windows []int) []market.Result
}

// ChartView is the figure of one ticker.
type ChartView struct {
	Symbol string `json:"symbol"`
	Figure Figure `json:"figure"`
}

// Page is everything the dashboard shows for one Query.
type Page struct {
	Query      Query           `json:"query"`
	Companies  []string        `json:"-"`
	Periods    []market.Period `json:"-"`
	Windows    []int           `json:"-"`
	Errors     []string        `json:"errors"`
	Indicators Table           `json:"indicators"`
	Charts     []ChartView     `json:"charts"`
	Statements []StatementSet  `json:"statements"`

	// Snapshots backs the page with raw numbers for exports.
	Snapshots []market.Snapshot `json:"-"`
}

// HasResults reports whether at least one ticker was fetched.
func (p Page) HasResults() bool { return len(p.Snapshots) > 0 }

func (p Page) Selected(name string) bool {
	for _, n := range p.Query.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (p Page) WindowSelected(w int) bool {
	for _, s := range p.Query.Windows {
		if s == w {
			return true
		}
	}
	return false
}

type Service struct {
	tickers TickerSource
	market  Fetcher
}

func NewService(tickers TickerSource, market Fetcher) *Service {
	return &Service{tickers: tickers, market: market}
}

// Build runs one full pass: resolve names, fetch every ticker, assemble the
// tables and charts. Failures end up in Page.Errors; Build itself never
// fails.
func (s *Service) Build(ctx context.Context, q Query) Page {
	page := Page{
		Query:      q,
		Periods:    market.Periods(),
		Windows:    market.WindowOptions(),
		Indicators: IndicatorTable(nil),
		Charts:     []ChartView{},
		Statements: []StatementSet{},
		Errors:     []string{},
	}

	if err := s.tickers.Load(ctx); err != nil {
		page.Errors = append(page.Errors, fmt.Sprintf("Erro ao carregar os arquivos de tickers: %v", err))
	}

	companies, err := s.tickers.Companies(ctx)
	if err != nil {
		slog.Error("failed to list companies", "error", err)
		page.Errors = append(page.Errors, fmt.Sprintf("Erro ao listar empresas: %v", err))
	}
	page.Companies = companies

	if len(q.Names) == 0 {
		return page
	}

	symbols, err := s.tickers.Resolve(ctx, q.Names)
	if err != nil {
		slog.Error("failed to resolve tickers", "names", q.Names, "error", err)
		page.Errors = append(page.Errors, fmt.Sprintf("Erro ao buscar os tickers: %v", err))
		return page
	}

	results := s.market.Fetch(ctx, symbols, q.Period, q.Windows)
	for _, r := range results {
		if r.Failed() {
			page.Errors = append(page.Errors, fmt.Sprintf("Erro ao processar o ticker %s: %v", r.Symbol, r.Err))
		}
	}

	page.Snapshots = market.Succeeded(results)
	page.Indicators = IndicatorTable(page.Snapshots)
	for _, snap := range page.Snapshots {
		page.Charts = append(page.Charts, ChartView{Symbol: snap.Symbol, Figure: Chart(snap)})
		page.Statements = append(page.Statements, Statements(snap))
	}

	slog.Info("dashboard built", "names", len(q.Names), "tickers", len(symbols),
		"ok", len(page.Snapshots), "failed", len(results)-len(page.Snapshots), "period", q.Period.Code)
	return page
}
