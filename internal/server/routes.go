package server

import (
	"net/http"

	"github.com/ahmethakanbesel/stock-dashboard/internal/dashboard"
	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
	"github.com/ahmethakanbesel/stock-dashboard/internal/ticker"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(tickerSvc *ticker.Service, marketSvc *market.Service) http.Handler {
	return newMux(tickerSvc, marketSvc)
}

func newMux(tickerSvc *ticker.Service, marketSvc *market.Service) http.Handler {
	h := &handler{
		tickerSvc:    tickerSvc,
		marketSvc:    marketSvc,
		dashboardSvc: dashboard.NewService(tickerSvc, marketSvc),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /export.xlsx", h.exportXLSX)
	mux.HandleFunc("GET /api/v1/companies", h.listCompanies)
	mux.HandleFunc("GET /api/v1/periods", h.listPeriods)
	mux.HandleFunc("GET /api/v1/dashboard", h.getDashboard)
	mux.HandleFunc("GET /api/v1/history/{symbol}", h.getHistory)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
