package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tidemart/storefront/internal/config"
	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run cmd/create-buyer/main.go <ledger-address> <name> <session-token>")
		fmt.Println("Example: go run cmd/create-buyer/main.go 0x5a3f... \"Mia\" \"mia-session-token-12345\"")
		os.Exit(1)
	}

	address := os.Args[1]
	name := os.Args[2]
	token := os.Args[3]

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

	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash session token: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)

	buyer := &domain.Buyer{
		Address:          address,
		Name:             name,
		SessionTokenHash: string(tokenHash),
		IsActive:         true,
	}

	if err := repos.Buyer.Create(context.Background(), buyer); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create buyer: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Buyer created.\n\n")
	fmt.Printf("Address: %s\n", buyer.Address)
	fmt.Printf("Name: %s\n", buyer.Name)
	fmt.Printf("\nUse the session token in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", token)
}
