package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apiConfig "credit_valuation/pkg/api/config"
	"credit_valuation/pkg/api/valuation"
	"credit_valuation/pkg/core/config"
	"credit_valuation/pkg/core/logger"
	"credit_valuation/pkg/core/metrics"
	"credit_valuation/pkg/core/store"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to valuation.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres when configured, otherwise the local file vault.
	if cfg.Storage.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.Storage.DatabaseURL); err != nil {
			log.Fatal("database init failed", zap.Error(err))
		}
		defer store.Close()
	}
	repo := store.NewValuationRepo(store.GetPool(), cfg.Storage.CacheDir, log.Named("store"))
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("schema init failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	mux := http.NewServeMux()

	configHandler := apiConfig.NewHandler(cfg)
	mux.HandleFunc("/api/config", configHandler.HandleConfig)

	valuation.NewHandler(repo, m, log.Named("api"), cfg.Server.AllowOrigin).Register(mux)

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown failed", zap.Error(err))
		}
	}()

	storage := "file:" + cfg.Storage.CacheDir
	if store.GetPool() != nil {
		storage = "postgres"
	}
	log.Info("valuation API starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("storage", storage),
		zap.Strings("routes", []string{
			"GET  /api/config",
			"POST /api/valuation/dcf",
			"POST /api/valuation/multiples",
			"GET  /api/valuation/get?id=",
			"GET  /api/valuation/list?company_id=",
			"POST /api/valuation/complete?id=",
			"GET  /api/valuation/report?id=&format=md|html",
			"GET  /api/valuation/summary?company_id=",
			"GET  /metrics",
		}))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server failed", zap.Error(err))
	}
}
