package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithItems inserts the order and its line items atomically.
// (tx_digest, seller_address) is unique, so replaying reconciliation for a
// digest never double-inserts: on conflict the existing order is loaded
// into the passed struct and the items insert is skipped.
func (r *orderRepository) CreateWithItems(ctx context.Context, order *domain.Order, items []*domain.OrderLineItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	insertOrder := `
		INSERT INTO orders (id, buyer_address, seller_address, tx_digest, status, shipping_ref, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tx_digest, seller_address) DO NOTHING
	`

	res, err := tx.ExecContext(ctx, insertOrder,
		order.ID,
		order.BuyerAddress,
		order.SellerAddress,
		order.TxDigest,
		order.Status,
		order.ShippingRef,
		order.Total,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert order", zap.Error(err))
		return err
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		// Already reconciled for this (digest, seller); load the stored id
		existing := `SELECT id FROM orders WHERE tx_digest = $1 AND seller_address = $2`
		if err := tx.QueryRowContext(ctx, existing, order.TxDigest, order.SellerAddress).Scan(&order.ID); err != nil {
			r.logger.Error("Failed to load existing order", zap.Error(err))
			return err
		}
		return tx.Commit()
	}

	insertItem := `
		INSERT INTO order_line_items (id, order_id, product_id, name, price, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}

		_, err := tx.ExecContext(ctx, insertItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
			item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert order line item", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, buyer_address, seller_address, tx_digest, status, shipping_ref, total, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLineItem, error) {
	query := `
		SELECT id, order_id, product_id, name, price, quantity, created_at
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderLineItem
	for rows.Next() {
		var item domain.OrderLineItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			continue
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyer string) ([]*domain.Order, error) {
	query := `
		SELECT id, buyer_address, seller_address, tx_digest, status, shipping_ref, total, created_at, updated_at
		FROM orders
		WHERE buyer_address = $1
		ORDER BY created_at DESC
	`
	return r.listOrders(ctx, query, buyer)
}

func (r *orderRepository) ListByDigest(ctx context.Context, digest string) ([]*domain.Order, error) {
	query := `
		SELECT id, buyer_address, seller_address, tx_digest, status, shipping_ref, total, created_at, updated_at
		FROM orders
		WHERE tx_digest = $1
		ORDER BY seller_address
	`
	return r.listOrders(ctx, query, digest)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, arg interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order

	err := row.Scan(
		&order.ID,
		&order.BuyerAddress,
		&order.SellerAddress,
		&order.TxDigest,
		&order.Status,
		&order.ShippingRef,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &order, nil
}
