package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelcm/adspend-elt-go/internal/config"
	"github.com/angelcm/adspend-elt-go/internal/httpx"
	"github.com/angelcm/adspend-elt-go/internal/ingest"
	"github.com/angelcm/adspend-elt-go/internal/kpi"
	"github.com/angelcm/adspend-elt-go/internal/store"
)

func main() {
	_ = godotenv.Load() // best effort, env wins in real deploys

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()
	pipe := ingest.NewPipeline(cl, st, logger, cfg)
	kpiSvc := kpi.NewService(st)

	r := httpx.NewRouter(logger, pipe, kpiSvc)

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
