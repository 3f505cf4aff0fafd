package market

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	provider Provider
	workers  int
}

func NewService(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		workers:  1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Option configures a Service.
type Option func(*Service)

// WithWorkers sets how many tickers are fetched in parallel. One means
// tickers are processed strictly in order.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Fetch builds a snapshot for every symbol. A failing symbol yields a Result
// with Err set and never affects the others. Results are in the same order
// as symbols regardless of completion order.
func (s *Service) Fetch(ctx context.Context, symbols []string, period Period, windows []int) []Result {
	results := make([]Result, len(symbols))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, symbol := range symbols {
		g.Go(func() error {
			snap, err := s.snapshot(ctx, symbol, period, windows)
			if err != nil {
				slog.Error("error processing ticker", "symbol", symbol, "period", period.Code, "error", err)
				results[i] = Result{Symbol: symbol, Err: err}
				return nil
			}
			results[i] = Result{Symbol: symbol, Snapshot: snap}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// History returns bars for one symbol with the requested averages attached.
func (s *Service) History(ctx context.Context, symbol string, period Period, windows []int) (History, error) {
	bars, err := s.provider.History(ctx, symbol, period)
	if err != nil {
		return History{}, fmt.Errorf("history %s: %w", symbol, err)
	}
	return withAverages(bars, windows), nil
}

func (s *Service) snapshot(ctx context.Context, symbol string, period Period, windows []int) (*Snapshot, error) {
	profile, err := s.provider.Profile(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	hist, err := s.History(ctx, symbol, period, windows)
	if err != nil {
		return nil, err
	}

	statements, err := s.provider.Statements(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("statements: %w", err)
	}

	slog.Info("fetched ticker", "symbol", symbol, "period", period.Code, "bars", len(hist.Bars))

	return &Snapshot{
		Symbol:     symbol,
		Currency:   CurrencyUnit(symbol),
		Profile:    profile,
		History:    hist,
		Statements: statements,
	}, nil
}

// Succeeded returns the snapshots of the successful results, in order.
func Succeeded(results []Result) []Snapshot {
	out := make([]Snapshot, 0, len(results))
	for _, r := range results {
		if r.Snapshot != nil {
			out = append(out, *r.Snapshot)
		}
	}
	return out
}
