package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/cart"
	"github.com/tidemart/storefront/internal/checkout"
	"github.com/tidemart/storefront/internal/config"
	"github.com/tidemart/storefront/internal/ledger"
	"github.com/tidemart/storefront/internal/repository/postgres"
)

// Manual recovery for attempts stuck in RECONCILIATION_FAILED: replays the
// order projection for a digest without touching the ledger.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/retry-reconcile/main.go <tx-digest>")
		os.Exit(1)
	}

	digest := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	carts := cart.NewRedisStore(cfg.Redis, logger)

	ledgerClient := ledger.NewClient(cfg.Ledger, logger)
	signer := ledger.NewNodeSigner(ledgerClient)

	pipeline := checkout.NewPipeline(carts, ledgerClient, ledgerClient, signer, repos, cfg.Ledger.GasBudget, logger)

	result, err := pipeline.RetryReconciliation(context.Background(), digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Retry failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Status: %s\n", result.Status)
	for _, order := range result.Orders {
		fmt.Printf("Order %s seller=%s total=%d\n", order.ID, order.SellerAddress, order.Total)
	}
	if result.Reason != "" {
		fmt.Printf("Reason: %s\n", result.Reason)
	}
}
