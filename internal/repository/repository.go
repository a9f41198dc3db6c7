package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tidemart/storefront/internal/domain"
)

// BuyerRepository manages storefront accounts
type BuyerRepository interface {
	GetBySessionToken(ctx context.Context, token string) (*domain.Buyer, error)
	GetByAddress(ctx context.Context, address string) (*domain.Buyer, error)
	Create(ctx context.Context, buyer *domain.Buyer) error
}

// ProductRepository is the read-mostly catalog. The listing subsystem
// writes it; the checkout pipeline only reads display metadata from it.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
}

// OrderRepository persists per-seller order projections of confirmed
// ledger transactions
type OrderRepository interface {
	// CreateWithItems inserts an order and its line items in one database
	// transaction, idempotent on (tx_digest, seller_address): re-inserting
	// an existing key is a no-op that returns the stored order.
	CreateWithItems(ctx context.Context, order *domain.Order, items []*domain.OrderLineItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLineItem, error)
	ListByBuyer(ctx context.Context, buyer string) ([]*domain.Order, error)
	ListByDigest(ctx context.Context, digest string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

// CheckoutAttemptRepository tracks submitted checkouts through
// reconciliation
type CheckoutAttemptRepository interface {
	Create(ctx context.Context, attempt *domain.CheckoutAttempt) error
	GetByDigest(ctx context.Context, digest string) (*domain.CheckoutAttempt, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AttemptStatus) error
	ListByStatus(ctx context.Context, status domain.AttemptStatus, limit int) ([]*domain.CheckoutAttempt, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Buyer           BuyerRepository
	Product         ProductRepository
	Order           OrderRepository
	CheckoutAttempt CheckoutAttemptRepository
}
