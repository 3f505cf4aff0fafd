package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmethakanbesel/stock-dashboard/internal/config"
	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
	"github.com/ahmethakanbesel/stock-dashboard/internal/platform/sqlite"
	"github.com/ahmethakanbesel/stock-dashboard/internal/provider/yahoo"
	tickerrepo "github.com/ahmethakanbesel/stock-dashboard/internal/repository/ticker"
	"github.com/ahmethakanbesel/stock-dashboard/internal/server"
	"github.com/ahmethakanbesel/stock-dashboard/internal/ticker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	// Root context: cancelled on SIGINT/SIGTERM so in-flight provider calls
	// stop promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// The reference table lives in memory for the lifetime of the process.
	db, err := sqlite.Open(sqlite.MemoryDSN)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	repo := tickerrepo.NewRepository(db.DB)
	tickerSvc := ticker.NewService(repo, ticker.NewLoader(cfg.DatabaseDir, repo))

	// Load eagerly so a broken table shows up in the logs at startup. The
	// dashboard reports the same remembered error on every request.
	_ = tickerSvc.Load(rootCtx)

	client := yahoo.New(
		yahoo.WithBaseURL(cfg.Yahoo.BaseURL),
		yahoo.WithCookieURL(cfg.Yahoo.CookieURL),
		yahoo.WithCrumbURL(cfg.Yahoo.CrumbURL),
		yahoo.WithTimeout(cfg.Yahoo.Timeout),
		yahoo.WithDebug(cfg.Yahoo.Debug),
	)
	marketSvc := market.NewService(client, market.WithWorkers(cfg.Workers))

	// HTTP server: rootCtx is used as BaseContext so every request context
	// inherits from it and is cancelled on shutdown.
	srv := server.New(rootCtx, cfg.Port, tickerSvc, marketSvc)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "workers", cfg.Workers)
	<-done

	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg config.Config) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(handler))
}
