package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

const testCrumb = "test-crumb-123"

type fakeYahoo struct {
	chart    string
	summary  map[string]string // keyed by first requested module
	status   int
	crumbHit atomic.Int32

	unauthorizedOnce atomic.Bool
}

// newTestServer returns a mock Yahoo Finance server that serves cookie, crumb,
// chart and quoteSummary endpoints, along with a Client configured to use it.
func newTestServer(t *testing.T, fy *fakeYahoo) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "test-session"})
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("/crumb", func(w http.ResponseWriter, r *http.Request) {
		fy.crumbHit.Add(1)
		_, _ = w.Write([]byte(testCrumb))
	})

	mux.HandleFunc("/v8/finance/chart/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("crumb") != testCrumb {
			t.Errorf("expected crumb=%s, got %s", testCrumb, q.Get("crumb"))
		}
		if q.Get("interval") != "1d" {
			t.Errorf("expected interval=1d, got %s", q.Get("interval"))
		}
		if fy.unauthorizedOnce.CompareAndSwap(true, false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if fy.status != 0 {
			w.WriteHeader(fy.status)
		}
		_, _ = w.Write([]byte(fy.chart))
	})

	mux.HandleFunc("/v10/finance/quoteSummary/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		if fy.status != 0 {
			w.WriteHeader(fy.status)
		}
		modules := strings.Split(r.URL.Query().Get("modules"), ",")
		_, _ = w.Write([]byte(fy.summary[modules[0]]))
	})

	ts := httptest.NewServer(mux)

	c := New(
		WithHTTPClient(ts.Client()),
		WithBaseURL(ts.URL),
		WithCookieURL(ts.URL+"/cookie"),
		WithCrumbURL(ts.URL+"/crumb"),
	)

	return ts, c
}

const chartBody = `{"chart":{"result":[{
	"timestamp":[1704153600,1704240000,1704326400],
	"indicators":{"quote":[{
		"open":[184.2,null,182.1],
		"high":[186.0,185.0,183.5],
		"low":[183.0,183.9,181.0],
		"close":[185.01,null,184.25],
		"volume":[1000,2000,3000]
	}]}
}],"error":null}}`

func TestHistory(t *testing.T) {
	ts, c := newTestServer(t, &fakeYahoo{chart: chartBody})
	defer ts.Close()

	period, _ := market.ParsePeriod("1mo")
	bars, err := c.History(context.Background(), "AAPL", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bars) != 2 {
		t.Fatalf("expected 2 bars (null close skipped), got %d", len(bars))
	}
	if bars[0].Close != 185.01 || bars[0].Open != 184.2 || bars[0].High != 186.0 || bars[0].Low != 183.0 {
		t.Errorf("unexpected first bar: %+v", bars[0])
	}
	if bars[1].Close != 184.25 {
		t.Errorf("expected close 184.25, got %f", bars[1].Close)
	}
	if got := bars[0].Time.Format("2006-01-02"); got != "2024-01-02" {
		t.Errorf("expected 2024-01-02, got %s", got)
	}
}

func TestHistory_EmptyResult(t *testing.T) {
	ts, c := newTestServer(t, &fakeYahoo{chart: `{"chart":{"result":[],"error":null}}`})
	defer ts.Close()

	bars, err := c.History(context.Background(), "INVALID", market.DefaultPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bars != nil {
		t.Errorf("expected nil bars, got %d", len(bars))
	}
}

func TestHistory_NotFound(t *testing.T) {
	ts, c := newTestServer(t, &fakeYahoo{
		status: http.StatusNotFound,
		chart:  `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
	})
	defer ts.Close()

	_, err := c.History(context.Background(), "BETA", market.DefaultPeriod)
	if err == nil {
		t.Fatal("expected error for unknown symbol")
	}
	if !strings.Contains(err.Error(), "symbol may be delisted") || !strings.Contains(err.Error(), "BETA") {
		t.Errorf("expected error to carry symbol and description, got %v", err)
	}
}

func TestHistory_EmptySymbol(t *testing.T) {
	c := New()
	if _, err := c.History(context.Background(), "", market.DefaultPeriod); err == nil {
		t.Fatal("expected error for empty symbol")
	}
}

func TestCrumbIsCached(t *testing.T) {
	fy := &fakeYahoo{chart: chartBody}
	ts, c := newTestServer(t, fy)
	defer ts.Close()

	for range 3 {
		if _, err := c.History(context.Background(), "AAPL", market.DefaultPeriod); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := fy.crumbHit.Load(); n != 1 {
		t.Errorf("expected crumb to be fetched once, got %d", n)
	}
}

func TestCrumbInvalidatedOnUnauthorized(t *testing.T) {
	fy := &fakeYahoo{chart: chartBody}
	fy.unauthorizedOnce.Store(true)
	ts, c := newTestServer(t, fy)
	defer ts.Close()

	if _, err := c.History(context.Background(), "AAPL", market.DefaultPeriod); err == nil {
		t.Fatal("expected error on 401")
	}
	if _, err := c.History(context.Background(), "AAPL", market.DefaultPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := fy.crumbHit.Load(); n != 2 {
		t.Errorf("expected crumb to be refetched after 401, got %d fetches", n)
	}
}

const profileBody = `{"quoteSummary":{"result":[{
	"price":{"longName":"Petróleo Brasileiro S.A.","currency":"BRL","regularMarketPrice":{"raw":37.5,"fmt":"37.50"}},
	"summaryDetail":{"trailingPE":{"raw":4.1,"fmt":"4.10"},"dividendYield":{"raw":0.125,"fmt":"12.50%"}},
	"defaultKeyStatistics":{"priceToBook":{}},
	"financialData":{"returnOnEquity":{"raw":0.3,"fmt":"30.00%"}}
}],"error":null}}`

func TestProfile(t *testing.T) {
	ts, c := newTestServer(t, &fakeYahoo{summary: map[string]string{"price": profileBody}})
	defer ts.Close()

	p, err := c.Profile(context.Background(), "PETR4.SA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Name != "Petróleo Brasileiro S.A." {
		t.Errorf("unexpected name %q", p.Name)
	}
	if p.Price == nil || *p.Price != 37.5 {
		t.Errorf("expected price 37.5, got %v", p.Price)
	}
	if p.TrailingPE == nil || *p.TrailingPE != 4.1 {
		t.Errorf("expected trailingPE 4.1, got %v", p.TrailingPE)
	}
	if p.PriceToBook != nil {
		t.Errorf("expected empty priceToBook to be nil, got %v", *p.PriceToBook)
	}
	if p.DividendYield == nil || *p.DividendYield != 12.5 {
		t.Errorf("expected dividend yield 12.5 (percent), got %v", p.DividendYield)
	}
	if p.ReturnOnEquity == nil || *p.ReturnOnEquity != 0.3 {
		t.Errorf("expected ROE 0.3, got %v", p.ReturnOnEquity)
	}
}

func TestProfile_NonNumericRaw(t *testing.T) {
	body := `{"quoteSummary":{"result":[{"summaryDetail":{"trailingPE":{"raw":"Infinity","fmt":"∞"}}}],"error":null}}`
	ts, c := newTestServer(t, &fakeYahoo{summary: map[string]string{"price": body}})
	defer ts.Close()

	p, err := c.Profile(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TrailingPE != nil {
		t.Errorf("expected non-numeric raw to be nil, got %v", *p.TrailingPE)
	}
}

func TestProfile_NoResult(t *testing.T) {
	ts, c := newTestServer(t, &fakeYahoo{summary: map[string]string{"price": `{"quoteSummary":{"result":[],"error":null}}`}})
	defer ts.Close()

	if _, err := c.Profile(context.Background(), "XYZ"); err == nil {
		t.Fatal("expected error for empty summary")
	}
}

const statementsBody = `{"quoteSummary":{"result":[{
	"incomeStatementHistory":{"incomeStatementHistory":[
		{"maxAge":1,"endDate":{"raw":1703980800,"fmt":"2023-12-31"},"totalRevenue":{"raw":383285000000,"fmt":"383.29B"},"netIncome":{"raw":96995000000}},
		{"maxAge":1,"endDate":{"raw":1672444800,"fmt":"2022-12-31"},"totalRevenue":{"raw":394328000000},"netIncome":{}}
	],"maxAge":86400},
	"balanceSheetHistory":{"balanceSheetStatements":[
		{"endDate":{"raw":1703980800},"cash":{"raw":29965000000}}
	]},
	"cashflowStatementHistory":{"cashflowStatements":[]}
}],"error":null}}`

func TestStatements(t *testing.T) {
	ts, c := newTestServer(t, &fakeYahoo{summary: map[string]string{"incomeStatementHistory": statementsBody}})
	defer ts.Close()

	st, err := c.Statements(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inc := st.Income
	if len(inc.Periods) != 2 || inc.Periods[0] != "2023-12-31" || inc.Periods[1] != "2022-12-31" {
		t.Fatalf("unexpected periods %v", inc.Periods)
	}
	if len(inc.Items) != 2 || inc.Items[0] != "netIncome" || inc.Items[1] != "totalRevenue" {
		t.Fatalf("expected sorted items [netIncome totalRevenue], got %v", inc.Items)
	}
	if v := inc.Values[1][0]; v == nil || *v != 383285000000 {
		t.Errorf("unexpected totalRevenue 2023: %v", v)
	}
	if v := inc.Values[0][1]; v != nil {
		t.Errorf("expected missing netIncome 2022 to be nil, got %v", *v)
	}

	if len(st.Balance.Periods) != 1 || st.Balance.Periods[0] != "2023-12-31" {
		t.Errorf("expected period derived from raw timestamp, got %v", st.Balance.Periods)
	}
	if len(st.CashFlow.Items) != 0 || len(st.CashFlow.Periods) != 0 {
		t.Errorf("expected empty cash flow, got %+v", st.CashFlow)
	}
}

func TestNew_CopiesHTTPClient(t *testing.T) {
	hc := &http.Client{}
	New(WithHTTPClient(hc), WithTimeout(5*time.Second))

	if hc.Timeout != 0 {
		t.Errorf("expected caller timeout to stay 0, got %s", hc.Timeout)
	}
	if hc.Jar != nil {
		t.Error("expected caller client to stay without a cookie jar")
	}
}
