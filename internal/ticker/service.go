package ticker

import (
	"context"
	"fmt"
)

type Service struct {
	repo   Repository
	loader *Loader
}

func NewService(repo Repository, loader *Loader) *Service {
	return &Service{repo: repo, loader: loader}
}

// Load makes sure the reference tables were read. The returned error is
// meant for display: the service stays usable with an empty table.
func (s *Service) Load(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	return s.loader.Load(ctx)
}

// Companies returns every company name in table order.
func (s *Service) Companies(ctx context.Context) ([]string, error) {
	names, err := s.repo.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return names, nil
}

// Resolve maps company names to the set of their ticker symbols, in table
// order. Names that are not in the table are ignored. A name listed under
// several symbols yields each of them; a symbol listed on several rows
// appears once, at its first position.
func (s *Service) Resolve(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	symbols, err := s.repo.Resolve(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve tickers: %w", err)
	}

	seen := make(map[string]bool, len(symbols))
	out := symbols[:0]
	for _, sym := range symbols {
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out, nil
}

func (s *Service) Records(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}
