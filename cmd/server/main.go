package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/api"
	"github.com/tidemart/storefront/internal/cart"
	"github.com/tidemart/storefront/internal/checkout"
	"github.com/tidemart/storefront/internal/config"
	"github.com/tidemart/storefront/internal/ledger"
	"github.com/tidemart/storefront/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed")

	repos := postgres.NewRepositories(db, logger)
	carts := cart.NewRedisStore(cfg.Redis, logger)

	ledgerClient := ledger.NewClient(cfg.Ledger, logger)
	signer := ledger.NewNodeSigner(ledgerClient)

	pipeline := checkout.NewPipeline(carts, ledgerClient, ledgerClient, signer, repos, cfg.Ledger.GasBudget, logger)

	// Background recovery of reconciliation-failed attempts
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := checkout.NewSweeper(pipeline, repos, cfg.Ledger.SweepInterval, logger)
	go sweeper.Run(sweepCtx)

	router := api.NewRouter(cfg, repos, carts, pipeline, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Storefront API listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
