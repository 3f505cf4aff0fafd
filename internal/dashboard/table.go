package dashboard

import (
	"github.com/ahmethakanbesel/stock-dashboard/internal/format"
	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

// Table is a grid of display strings.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// IndicatorColumns are the headings of the indicator comparison table.
var IndicatorColumns = []string{"Ticker", "Preço Atual", "P/L", "P/VP", "Dividend Yield", "ROE"}

// IndicatorTable has one row per snapshot, in snapshot order. Missing
// dividend yield and ROE count as zero; ROE is a fraction shown as percent.
func IndicatorTable(snapshots []market.Snapshot) Table {
	t := Table{Columns: IndicatorColumns, Rows: make([][]string, 0, len(snapshots))}
	for _, s := range snapshots {
		p := s.Profile
		t.Rows = append(t.Rows, []string{
			s.Symbol,
			format.Value(p.Price, format.KindCurrency, s.Currency),
			format.Value(p.TrailingPE, format.KindPlain, ""),
			format.Value(p.PriceToBook, format.KindPlain, ""),
			format.Value(format.Float(orZero(p.DividendYield)), format.KindPercent, ""),
			format.Value(format.Float(orZero(p.ReturnOnEquity)*100), format.KindPercent, ""),
		})
	}
	return t
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Statement section titles, in display order.
const (
	TitleIncome   = "Demonstração de Resultados (DRE)"
	TitleBalance  = "Balanço Patrimonial"
	TitleCashFlow = "Fluxo de Caixa"
)

// StatementTable is a financial statement with every value abbreviated.
type StatementTable struct {
	Title   string    `json:"title"`
	Periods []string  `json:"periods"`
	Rows    []ItemRow `json:"rows"`
}

type ItemRow struct {
	Item  string   `json:"item"`
	Cells []string `json:"cells"`
}

// FormatStatement passes every cell of st through format.Magnitude.
func FormatStatement(title string, st market.Statement) StatementTable {
	out := StatementTable{Title: title, Periods: st.Periods, Rows: make([]ItemRow, len(st.Items))}
	for i, item := range st.Items {
		var values []*float64
		if i < len(st.Values) {
			values = st.Values[i]
		}
		cells := make([]string, len(st.Periods))
		for j := range cells {
			if j < len(values) {
				cells[j] = format.Magnitude(values[j])
			}
		}
		out.Rows[i] = ItemRow{Item: item, Cells: cells}
	}
	return out
}

// StatementSet groups the three statements of one ticker.
type StatementSet struct {
	Symbol string           `json:"symbol"`
	Tables []StatementTable `json:"tables"`
}

func Statements(s market.Snapshot) StatementSet {
	return StatementSet{
		Symbol: s.Symbol,
		Tables: []StatementTable{
			FormatStatement(TitleIncome, s.Statements.Income),
			FormatStatement(TitleBalance, s.Statements.Balance),
			FormatStatement(TitleCashFlow, s.Statements.CashFlow),
		},
	}
}
