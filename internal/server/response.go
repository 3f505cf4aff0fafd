package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmethakanbesel/stock-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[string]{
		Message: message,
		Data:    "",
	})
}

// writeAppError maps err to its status. Errors that are not an AppError are
// logged and reported as internal.
func writeAppError(w http.ResponseWriter, err error) {
	if ae, ok := apperror.As(err); ok {
		if ae.Code() == apperror.Internal || ae.Code() == apperror.Upstream {
			slog.Error("request failed", "code", ae.Code(), "error", err, "cause", ae.Unwrap())
		}
		writeError(w, ae.HTTPStatus(), ae.Message())
		return
	}
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// writeCSV streams one ticker's bars with a column per moving average.
// Averages that are not defined yet are left empty.
func writeCSV(w http.ResponseWriter, symbol string, hist market.History) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", strings.ReplaceAll(symbol, ".", "_")))
	w.WriteHeader(http.StatusOK)

	header := "Symbol,Date,Open,High,Low,Close,Volume"
	for _, a := range hist.Averages {
		header += "," + a.Name()
	}
	_, _ = fmt.Fprintln(w, header)

	for i, b := range hist.Bars {
		_, _ = fmt.Fprintf(w, "%s,%s,%.6f,%.6f,%.6f,%.6f,%.0f", //nolint:gosec // CSV output from internal domain types, not user input
			symbol,
			b.Time.Format(time.DateOnly),
			b.Open,
			b.High,
			b.Low,
			b.Close,
			b.Volume,
		)
		for _, a := range hist.Averages {
			if i < len(a.Values) && a.Values[i] != nil {
				_, _ = fmt.Fprintf(w, ",%.6f", *a.Values[i])
			} else {
				_, _ = fmt.Fprint(w, ",")
			}
		}
		_, _ = fmt.Fprintln(w)
	}
}
