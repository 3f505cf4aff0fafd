package ticker

import "context"

type Market string

const (
	MarketB3     Market = "B3"
	MarketNYSE   Market = "NYSE"
	MarketNASDAQ Market = "NASDAQ"
)

// Record maps a company display name to its ticker symbol.
type Record struct {
	Name   string `json:"nome"`
	Symbol string `json:"ticker"`
	Market Market `json:"market"`
}

type Repository interface {
	Save(ctx context.Context, records []Record) (int64, error)
	List(ctx context.Context) ([]Record, error)
	Names(ctx context.Context) ([]string, error)
	Resolve(ctx context.Context, names []string) ([]string, error)
	Count(ctx context.Context) (int64, error)
}
