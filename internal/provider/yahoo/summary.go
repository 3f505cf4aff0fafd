package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

var (
	profileModules   = []string{"price", "summaryDetail", "defaultKeyStatistics", "financialData"}
	statementModules = []string{"incomeStatementHistory", "balanceSheetHistory", "cashflowStatementHistory"}
)

// summaryResponse is the v10 quoteSummary envelope; T selects the modules.
type summaryResponse[T any] struct {
	QuoteSummary struct {
		Result []T       `json:"result"`
		Error  *apiError `json:"error"`
	} `json:"quoteSummary"`
}

// rawValue is Yahoo's {raw, fmt} number wrapper. Missing data comes back
// as an empty object, leaving Raw nil.
type rawValue struct {
	Raw *float64
	Fmt string
}

// UnmarshalJSON accepts any object; a raw that is not a number (Yahoo sends
// "Infinity" for some ratios) is treated as missing. Non-objects are errors.
func (v *rawValue) UnmarshalJSON(b []byte) error {
	var obj struct {
		Raw any    `json:"raw"`
		Fmt string `json:"fmt"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	v.Fmt = obj.Fmt
	v.Raw = nil
	if f, ok := obj.Raw.(float64); ok {
		v.Raw = &f
	}
	return nil
}

type profileModulesResult struct {
	Price *struct {
		ShortName          string   `json:"shortName"`
		LongName           string   `json:"longName"`
		Currency           string   `json:"currency"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
	} `json:"price"`
	SummaryDetail *struct {
		TrailingPE    rawValue `json:"trailingPE"`
		DividendYield rawValue `json:"dividendYield"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		PriceToBook rawValue `json:"priceToBook"`
	} `json:"defaultKeyStatistics"`
	FinancialData *struct {
		ReturnOnEquity rawValue `json:"returnOnEquity"`
	} `json:"financialData"`
}

type statementEntries = []map[string]json.RawMessage

type statementModulesResult struct {
	IncomeStatementHistory *struct {
		Statements statementEntries `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	BalanceSheetHistory *struct {
		Statements statementEntries `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	CashflowStatementHistory *struct {
		Statements statementEntries `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
}

func summary[T any](ctx context.Context, c *Client, symbol string, modules []string) (T, error) {
	var zero T
	var resp summaryResponse[T]
	params := map[string]string{"modules": strings.Join(modules, ",")}
	if err := c.get(ctx, summaryPath, symbol, params, &resp); err != nil {
		return zero, err
	}
	if resp.QuoteSummary.Error != nil {
		return zero, fmt.Errorf("yahoo quoteSummary error: %w", resp.QuoteSummary.Error)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return zero, errors.New("no summary data")
	}
	return resp.QuoteSummary.Result[0], nil
}

// Profile returns the quote fields of symbol. DividendYield is reported in
// percent; ReturnOnEquity stays a fraction.
func (c *Client) Profile(ctx context.Context, symbol string) (market.Profile, error) {
	r, err := summary[profileModulesResult](ctx, c, symbol, profileModules)
	if err != nil {
		return market.Profile{}, err
	}

	var p market.Profile
	if r.Price != nil {
		p.Name = r.Price.LongName
		if p.Name == "" {
			p.Name = r.Price.ShortName
		}
		p.Currency = r.Price.Currency
		p.Price = r.Price.RegularMarketPrice.Raw
	}
	if r.SummaryDetail != nil {
		p.TrailingPE = r.SummaryDetail.TrailingPE.Raw
		if dy := r.SummaryDetail.DividendYield.Raw; dy != nil {
			pct := *dy * 100
			p.DividendYield = &pct
		}
	}
	if r.DefaultKeyStatistics != nil {
		p.PriceToBook = r.DefaultKeyStatistics.PriceToBook.Raw
	}
	if r.FinancialData != nil {
		p.ReturnOnEquity = r.FinancialData.ReturnOnEquity.Raw
	}

	slog.Info("retrieved yahoo profile", "symbol", symbol)
	return p, nil
}

// Statements returns the annual income statement, balance sheet and cash
// flow of symbol.
func (c *Client) Statements(ctx context.Context, symbol string) (market.Statements, error) {
	r, err := summary[statementModulesResult](ctx, c, symbol, statementModules)
	if err != nil {
		return market.Statements{}, err
	}

	var st market.Statements
	if r.IncomeStatementHistory != nil {
		st.Income = toStatement(r.IncomeStatementHistory.Statements)
	}
	if r.BalanceSheetHistory != nil {
		st.Balance = toStatement(r.BalanceSheetHistory.Statements)
	}
	if r.CashflowStatementHistory != nil {
		st.CashFlow = toStatement(r.CashflowStatementHistory.Statements)
	}

	slog.Info("retrieved yahoo statements", "symbol", symbol,
		"income", len(st.Income.Items), "balance", len(st.Balance.Items), "cashflow", len(st.CashFlow.Items))
	return st, nil
}

// toStatement turns one statement entry per reporting period into a matrix
// of line items by period. Every object-valued key other than endDate is a
// line item; scalars such as maxAge are ignored.
func toStatement(entries statementEntries) market.Statement {
	st := market.Statement{Periods: make([]string, len(entries))}
	cells := make([]map[string]*float64, len(entries))
	seen := map[string]bool{}

	for j, entry := range entries {
		cells[j] = map[string]*float64{}
		st.Periods[j] = periodLabel(entry["endDate"], j)

		for key, raw := range entry {
			if key == "endDate" {
				continue
			}
			var rv rawValue
			if err := json.Unmarshal(raw, &rv); err != nil {
				continue
			}
			cells[j][key] = rv.Raw
			seen[key] = true
		}
	}

	for key := range seen {
		st.Items = append(st.Items, key)
	}
	slices.Sort(st.Items)

	st.Values = make([][]*float64, len(st.Items))
	for i, item := range st.Items {
		row := make([]*float64, len(entries))
		for j := range entries {
			row[j] = cells[j][item]
		}
		st.Values[i] = row
	}
	return st
}

func periodLabel(raw json.RawMessage, idx int) string {
	var rv rawValue
	if len(raw) > 0 && json.Unmarshal(raw, &rv) == nil {
		if rv.Fmt != "" {
			return rv.Fmt
		}
		if rv.Raw != nil {
			return time.Unix(int64(*rv.Raw), 0).UTC().Format(time.DateOnly)
		}
	}
	return "#" + strconv.Itoa(idx+1)
}
