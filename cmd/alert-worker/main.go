package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartspend/internal/config"
	"smartspend/internal/database"
	"smartspend/internal/logger"
	"smartspend/internal/notify"
	"smartspend/internal/services"
)

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadWorker()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	log := logger.Named("alert-worker")

	dbManager, err := database.NewManager(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPAlertQueue)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := notify.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	db := dbManager.DB()
	budgetService := services.NewBudgetService(db,
		services.WithWriteStrategy(services.WriteStrategy(cfg.BudgetWriteStrategy)),
		services.WithLocation(cfg.Location),
	)
	dispatcher := notify.NewDispatcher(
		services.NewUserService(db),
		budgetService,
		publisher,
		notify.NewSuppressor(notify.DefaultSuppressorSize, cfg.SuppressTTL),
		metrics,
		cfg.Concurrency,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server failed", "error", err)
		}
	}()

	log.Infow("starting alert worker",
		"interval", cfg.PollInterval.String(),
		"suppress_ttl", cfg.SuppressTTL.String(),
		"concurrency", cfg.Concurrency,
		"exchange", cfg.AMQPExchange,
	)
	runErr := dispatcher.Run(ctx, cfg.PollInterval)

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("metrics server shutdown failed", "error", err)
	}
	return runErr
}
