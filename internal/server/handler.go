package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ahmethakanbesel/stock-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/stock-dashboard/internal/dashboard"
	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
	"github.com/ahmethakanbesel/stock-dashboard/internal/report"
	"github.com/ahmethakanbesel/stock-dashboard/internal/ticker"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type handler struct {
	tickerSvc    *ticker.Service
	marketSvc    *market.Service
	dashboardSvc *dashboard.Service
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	q, appErr := dashboard.ParseQuery(r.URL.Query())
	if appErr != nil {
		page := h.dashboardSvc.Build(r.Context(), dashboard.Query{Period: market.DefaultPeriod, Windows: market.DefaultWindows()})
		page.Errors = append(page.Errors, appErr.Message())
		renderPage(w, appErr.HTTPStatus(), page)
		return
	}

	renderPage(w, http.StatusOK, h.dashboardSvc.Build(r.Context(), q))
}

func (h *handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	if err := h.tickerSvc.Load(r.Context()); err != nil {
		writeAppError(w, apperror.Wrap(apperror.Internal, fmt.Sprintf("Erro ao carregar os arquivos de tickers: %v", err), err))
		return
	}

	names, err := h.tickerSvc.Companies(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

type periodsResponse struct {
	Periods        []market.Period `json:"periods"`
	DefaultPeriod  string          `json:"defaultPeriod"`
	Windows        []int           `json:"windows"`
	DefaultWindows []int           `json:"defaultWindows"`
}

func (h *handler) listPeriods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, periodsResponse{
		Periods:        market.Periods(),
		DefaultPeriod:  market.DefaultPeriod.Code,
		Windows:        market.WindowOptions(),
		DefaultWindows: market.DefaultWindows(),
	})
}

func (h *handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	q, appErr := dashboard.ParseQuery(r.URL.Query())
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, h.dashboardSvc.Build(r.Context(), q))
}

type historyResponse struct {
	Symbol   string         `json:"symbol"`
	Currency string         `json:"currency"`
	Period   market.Period  `json:"period"`
	History  market.History `json:"history"`
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	q, appErr := dashboard.ParseQuery(r.URL.Query())
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be json or csv")
		return
	}

	hist, err := h.marketSvc.History(r.Context(), symbol, q.Period, q.Windows)
	if err != nil {
		writeAppError(w, apperror.Wrap(apperror.Upstream, err.Error(), err))
		return
	}
	if len(hist.Bars) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no history for %s", symbol))
		return
	}

	if format == "csv" {
		writeCSV(w, symbol, hist)
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Symbol:   symbol,
		Currency: market.CurrencyUnit(symbol),
		Period:   q.Period,
		History:  hist,
	})
}

func (h *handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	q, appErr := dashboard.ParseQuery(r.URL.Query())
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	page := h.dashboardSvc.Build(r.Context(), q)
	b, err := report.Generate(r.Context(), page)
	if err != nil {
		if errors.Is(err, report.ErrEmpty) {
			msg := "no tickers to export"
			if len(page.Errors) > 0 {
				msg = strings.Join(page.Errors, "; ")
			}
			writeError(w, http.StatusNotFound, msg)
			return
		}
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=analise_acoes.xlsx")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		slog.Error("write export", "error", err)
	}
}
