package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brandpulse/sheetfeed/internal/config"
	"github.com/brandpulse/sheetfeed/internal/httpx"
	"github.com/brandpulse/sheetfeed/internal/ingest"
	"github.com/brandpulse/sheetfeed/internal/sheets"
	"github.com/brandpulse/sheetfeed/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cl := sheets.NewHTTPClient(cfg.HTTPTimeout)
	fetcher := sheets.NewHTTPFetcher(cl, cfg.SheetsBaseURL)
	disc := sheets.NewDiscoverer(fetcher, logger, cfg.ProbeMaxGID)
	st := store.NewMemoryStore()
	pipe := ingest.NewPipeline(fetcher, disc, st, logger)

	r := httpx.NewRouter(logger, pipe, st)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
