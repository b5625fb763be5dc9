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

	"smartspend/internal/config"
	"smartspend/internal/database"
	"smartspend/internal/logger"
	"smartspend/internal/middleware"
	"smartspend/internal/router"
	"smartspend/internal/services"
	"smartspend/internal/validator"
)

// @title           SmartSpend API
// @version         1.0
// @description     SmartSpend tracks expenses against monthly category budgets and raises alerts as spending approaches or passes each limit.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	dbManager, err := database.NewManager(&appConfig.Database)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	db := dbManager.DB()
	budgetService := services.NewBudgetService(db,
		services.WithWriteStrategy(services.WriteStrategy(appConfig.BudgetWriteStrategy)),
		services.WithLocation(appConfig.Location),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, err := router.New(router.Deps{
		Users:            services.NewUserService(db),
		Expenses:         services.NewExpenseService(db),
		Budgets:          budgetService,
		Audit:            services.NewAuditService(db),
		Tokens:           middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur),
		Location:         appConfig.Location,
		CORSAllowOrigins: appConfig.CORSAllowOrigins,
		InternalAPIKey:   appConfig.InternalAPIKey,
		Registry:         registry,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("starting SmartSpend API",
			"port", appConfig.Port,
			"budget_write_strategy", appConfig.BudgetWriteStrategy,
			"timezone", appConfig.Timezone,
		)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
