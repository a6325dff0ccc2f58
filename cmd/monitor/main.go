package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gauravrohinda/trackprices/internal/config"
	"github.com/gauravrohinda/trackprices/internal/db"
	"github.com/gauravrohinda/trackprices/internal/logger"
	"github.com/gauravrohinda/trackprices/internal/monitor"
	"github.com/gauravrohinda/trackprices/internal/notify"
	"github.com/gauravrohinda/trackprices/internal/scheduler"
	"github.com/gauravrohinda/trackprices/internal/scrape"
	"github.com/gauravrohinda/trackprices/internal/store"
	"github.com/gauravrohinda/trackprices/internal/tracing"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Service: "trackprices-monitor",
		Version: "0.1.0",
	})
}

func main() {
	_ = godotenv.Load() // load .env if present; not fatal if missing

	logger.InitLogger()
	defer logger.Log.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	shutdownTracer, err := tracing.InitTracer()
	if err != nil {
		logger.Log.Warn("tracing disabled", zap.Error(err))
	} else {
		defer shutdownTracer(context.Background())
	}

	repo := store.NewProductRepository(pool)
	history := store.NewHistoryStore(pool, rdb)
	pipeline := scrape.NewPipeline(scrape.NewFetcher(), scrape.NewRegistry())
	notifier := notify.NewRedisNotifier(rdb, cfg.AlertChannel)
	checker := monitor.NewChecker(repo, history, pipeline, notifier, cfg.WorkerCount)

	sched := scheduler.New(repo, checker, cfg.CheckIntervalHours)
	if err := sched.Start(ctx); err != nil {
		logger.Log.Fatal("scheduler start failed", zap.Error(err))
	}
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		logger.Log.Info("monitor listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("http shutdown failed", zap.Error(err))
	}
}
