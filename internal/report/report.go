// Package report renders a dashboard page as an xlsx workbook.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ahmethakanbesel/stock-dashboard/internal/dashboard"
	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

const (
	indicatorSheet = "Indicadores"
	defaultSheet   = "Sheet1"
	maxSheetName   = 31
)

// ErrEmpty is returned when the page has no successful ticker to export.
var ErrEmpty = errors.New("report: no tickers to export")

// Generate builds the workbook: one indicator sheet followed by one sheet of
// statements per ticker. Values are written as numbers, not display strings.
func Generate(ctx context.Context, page dashboard.Page) ([]byte, error) {
	const op = "report.Generate"

	if len(page.Snapshots) == 0 {
		return nil, ErrEmpty
	}

	slog.DebugContext(ctx, "generate start", "op", op, "tickers", len(page.Snapshots))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close workbook", "op", op, "error", err)
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	names := newSheetNames()
	if err := fillIndicators(f, names.next(indicatorSheet), page.Snapshots, bold); err != nil {
		return nil, err
	}
	for _, snap := range page.Snapshots {
		if err := fillStatements(f, names.next(snap.Symbol), snap, bold); err != nil {
			return nil, err
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		slog.Error("delete default sheet", "op", op, "error", err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	slog.DebugContext(ctx, "generate completed", "op", op, "bytes", buf.Len())
	return buf.Bytes(), nil
}

func fillIndicators(f *excelize.File, sheet string, snaps []market.Snapshot, style int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	for i, col := range dashboard.IndicatorColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellStr(sheet, cell, col)
	}
	last, _ := excelize.CoordinatesToCellName(len(dashboard.IndicatorColumns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, s := range snaps {
		row := i + 2
		p := s.Profile
		roe := 0.0
		if p.ReturnOnEquity != nil {
			roe = *p.ReturnOnEquity * 100
		}
		dy := 0.0
		if p.DividendYield != nil {
			dy = *p.DividendYield
		}

		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", row), s.Symbol)
		setNumber(f, sheet, fmt.Sprintf("B%d", row), p.Price)
		setNumber(f, sheet, fmt.Sprintf("C%d", row), p.TrailingPE)
		setNumber(f, sheet, fmt.Sprintf("D%d", row), p.PriceToBook)
		setNumber(f, sheet, fmt.Sprintf("E%d", row), &dy)
		setNumber(f, sheet, fmt.Sprintf("F%d", row), &roe)
	}
	return nil
}

func fillStatements(f *excelize.File, sheet string, s market.Snapshot, style int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	sections := []struct {
		title string
		st    market.Statement
	}{
		{dashboard.TitleIncome, s.Statements.Income},
		{dashboard.TitleBalance, s.Statements.Balance},
		{dashboard.TitleCashFlow, s.Statements.CashFlow},
	}

	row := 1
	for _, sec := range sections {
		title := fmt.Sprintf("A%d", row)
		_ = f.SetCellStr(sheet, title, sec.title)
		if err := f.SetCellStyle(sheet, title, title, style); err != nil {
			return fmt.Errorf("style heading: %w", err)
		}
		row++

		for j, p := range sec.st.Periods {
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			_ = f.SetCellStr(sheet, cell, p)
		}
		row++

		for i, item := range sec.st.Items {
			_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", row), item)
			if i < len(sec.st.Values) {
				for j, v := range sec.st.Values[i] {
					cell, _ := excelize.CoordinatesToCellName(j+2, row)
					setNumber(f, sheet, cell, v)
				}
			}
			row++
		}
		row++
	}

	return f.SetColWidth(sheet, "A", "A", 40)
}

// setNumber leaves the cell blank for missing values.
func setNumber(f *excelize.File, sheet, cell string, v *float64) {
	if v == nil {
		return
	}
	_ = f.SetCellFloat(sheet, cell, *v, -1, 64)
}

// sheetNames hands out valid, unique worksheet names. Excel compares them
// case-insensitively and caps them at 31 characters.
type sheetNames struct {
	used map[string]bool
}

func newSheetNames() *sheetNames { return &sheetNames{used: map[string]bool{}} }

func (n *sheetNames) next(base string) string {
	base = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, base)
	if base == "" {
		base = "Ticker"
	}

	name := truncate(base, maxSheetName)
	for i := 2; n.used[strings.ToLower(name)] || strings.EqualFold(name, defaultSheet); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	n.used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
