package domain

import (
	"time"

	"github.com/google/uuid"
)

// Buyer represents a storefront account bound to a ledger address
type Buyer struct {
	Address          string
	Name             string
	SessionTokenHash string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Product represents a catalog listing. Stock and price here are the
// read-mostly catalog copy; the checkout pipeline always re-queries the
// ledger for the authoritative values.
type Product struct {
	ID               string // ledger object id of the listing
	SellerAddress    string
	Name             string
	ImageURL         string
	Price            int64 // smallest currency unit
	Stock            int64
	KioskID          *string // set when the item is held in a seller kiosk
	TransferPolicyID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CartLine is a selected product plus desired quantity. Name, Price and
// ImageURL are a display snapshot captured at add time; they are never used
// for stock validation or payment arithmetic.
type CartLine struct {
	ID        uuid.UUID `json:"id"`
	ProductID string    `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Order is the durable record of one seller's share of a confirmed
// checkout, keyed by (ledger tx digest, seller)
type Order struct {
	ID            uuid.UUID
	BuyerAddress  string
	SellerAddress string
	TxDigest      string
	Status        OrderStatus
	ShippingRef   string
	Total         int64 // smallest currency unit, equals the sum of its line items
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderLineItem is one purchased product within an Order
type OrderLineItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID string
	Name      string
	Price     int64
	Quantity  int64
	CreatedAt time.Time
}

// CheckoutAttempt records one submitted checkout so reconciliation can be
// observed, retried and swept. LineSnapshot holds the purchasable lines as
// they were priced at build time.
type CheckoutAttempt struct {
	ID           uuid.UUID
	BuyerAddress string
	TxDigest     string
	Status       AttemptStatus
	ShippingRef  string
	LineSnapshot []AttemptLine // JSONB
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AttemptLine is the per-line snapshot persisted with a CheckoutAttempt.
// CartLineID ties the snapshot back to the cart so a retried reconciliation
// can remove exactly the purchased lines.
type AttemptLine struct {
	CartLineID    uuid.UUID `json:"cart_line_id"`
	ProductID     string    `json:"product_id"`
	SellerAddress string    `json:"seller_address"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	Quantity      int64     `json:"quantity"`
}
