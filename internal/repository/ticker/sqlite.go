package ticker

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domain "github.com/ahmethakanbesel/stock-dashboard/internal/ticker"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts records in order inside a single transaction, so readers see
// either all of them or none.
func (r *Repository) Save(ctx context.Context, records []domain.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const batchSize = 500
	var total int64

	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		batch := records[i:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*3)
		for j, rec := range batch {
			placeholders[j] = "(?, ?, ?)"
			args = append(args, rec.Name, rec.Symbol, string(rec.Market))
		}

		query := fmt.Sprintf( //nolint:gosec // placeholders are not user input
			"INSERT INTO tickers (name, symbol, market) VALUES %s",
			strings.Join(placeholders, ", "),
		)

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("save tickers: %w", err)
		}

		n, _ := res.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Record, error) {
	const query = `SELECT name, symbol, market FROM tickers ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		var market string
		if err := rows.Scan(&rec.Name, &rec.Symbol, &market); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		rec.Market = domain.Market(market)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *Repository) Names(ctx context.Context) ([]string, error) {
	const query = `SELECT name FROM tickers ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Resolve returns the symbol of every row whose name is in names, in table
// order.
func (r *Repository) Resolve(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, n := range names {
		placeholders[i] = "?"
		args[i] = n
	}

	query := fmt.Sprintf( //nolint:gosec // placeholders are not user input
		"SELECT symbol FROM tickers WHERE name IN (%s) ORDER BY id ASC",
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve tickers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}

	return symbols, rows.Err()
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tickers: %w", err)
	}
	return n, nil
}
