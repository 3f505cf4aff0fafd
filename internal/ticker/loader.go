package ticker

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	nameColumn   = "Nome"
	symbolColumn = "Ticker"
)

// sources lists the reference files in concatenation order.
var sources = []struct {
	file   string
	market Market
}{
	{"tickers_b3.csv", MarketB3},
	{"tickers_nyse.csv", MarketNYSE},
	{"tickers_nasdaq.csv", MarketNASDAQ},
}

// Loader reads the reference tables into a repository exactly once per
// process. The outcome, failure included, is remembered.
type Loader struct {
	dir  string
	repo Repository

	once sync.Once
	err  error
}

func NewLoader(dir string, repo Repository) *Loader {
	return &Loader{dir: dir, repo: repo}
}

// Load populates the repository on first call. On failure the repository is
// left empty and the same error is returned on every call.
func (l *Loader) Load(ctx context.Context) error {
	l.once.Do(func() {
		l.err = l.load(context.WithoutCancel(ctx))
		if l.err != nil {
			slog.Error("failed to load ticker tables", "dir", l.dir, "error", l.err)
		}
	})
	return l.err
}

func (l *Loader) load(ctx context.Context) error {
	var all []Record
	for _, src := range sources {
		records, err := readFile(filepath.Join(l.dir, src.file), src.market)
		if err != nil {
			return err
		}
		all = append(all, records...)
	}

	n, err := l.repo.Save(ctx, all)
	if err != nil {
		return fmt.Errorf("store tickers: %w", err)
	}
	slog.Info("loaded ticker tables", "dir", l.dir, "records", n)
	return nil
}

func readFile(path string, market Market) ([]Record, error) {
	f, err := os.Open(path) //nolint:gosec // path built from configured directory
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	records, err := parse(f, market)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return records, nil
}

func parse(r io.Reader, market Market) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameIdx, symbolIdx := -1, -1
	for i, col := range header {
		switch strings.TrimPrefix(col, "\ufeff") {
		case nameColumn:
			nameIdx = i
		case symbolColumn:
			symbolIdx = i
		}
	}
	if nameIdx < 0 || symbolIdx < 0 {
		return nil, fmt.Errorf("header must contain %q and %q columns", nameColumn, symbolColumn)
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		records = append(records, Record{
			Name:   field(row, nameIdx),
			Symbol: field(row, symbolIdx),
			Market: market,
		})
	}
	return records, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
