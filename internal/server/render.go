package server

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ahmethakanbesel/stock-dashboard/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").ParseFS(templateFS, "templates/index.html"))

const pageTitle = "Analisador de Ações - Brasil e EUA"

type pageView struct {
	Title string
	dashboard.Page
	ExportURL template.URL
}

// renderPage writes the dashboard HTML. The template is executed into a
// buffer first so a template failure still yields a clean 500.
func renderPage(w http.ResponseWriter, status int, page dashboard.Page) {
	view := pageView{Title: pageTitle, Page: page}
	if page.HasResults() {
		view.ExportURL = template.URL("/export.xlsx?" + page.Query.Values().Encode()) //nolint:gosec // built from parsed, re-encoded form values
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		slog.Error("render dashboard", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
