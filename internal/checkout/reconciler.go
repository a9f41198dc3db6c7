package checkout

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/repository"
	"github.com/tidemart/storefront/pkg/errors"
)

// Reconciler projects a confirmed ledger transaction into durable order
// records, one per seller. The ledger transfer is irreversible, so there is
// no compensating rollback: partitions already written stay written even
// when a later one fails.
type Reconciler struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewReconciler creates a new order reconciler
func NewReconciler(repos *repository.Repositories, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repos:  repos,
		logger: logger,
	}
}

// Reconcile writes one Order plus line items per seller, all tagged with
// the shared digest. Idempotent: replaying for the same digest never
// double-inserts. Returns the orders written (or already present) and an
// ErrReconciliationFailed naming the sellers whose writes failed.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	digest string,
	buyer string,
	shippingRef string,
	lines []domain.AttemptLine,
) ([]*domain.Order, error) {
	bySeller := make(map[string][]domain.AttemptLine)
	for _, line := range lines {
		bySeller[line.SellerAddress] = append(bySeller[line.SellerAddress], line)
	}

	sellers := make([]string, 0, len(bySeller))
	for seller := range bySeller {
		sellers = append(sellers, seller)
	}
	sort.Strings(sellers)

	var orders []*domain.Order
	var failed []string

	for _, seller := range sellers {
		sellerLines := bySeller[seller]

		var total int64
		items := make([]*domain.OrderLineItem, 0, len(sellerLines))
		for _, line := range sellerLines {
			total += line.Price * line.Quantity
			items = append(items, &domain.OrderLineItem{
				ProductID: line.ProductID,
				Name:      line.Name,
				Price:     line.Price,
				Quantity:  line.Quantity,
			})
		}

		order := &domain.Order{
			BuyerAddress:  buyer,
			SellerAddress: seller,
			TxDigest:      digest,
			Status:        domain.OrderStatusPaid,
			ShippingRef:   shippingRef,
			Total:         total,
		}

		if err := r.repos.Order.CreateWithItems(ctx, order, items); err != nil {
			r.logger.Error("Failed to persist seller order",
				zap.String("tx_digest", digest),
				zap.String("seller", seller),
				zap.Error(err))
			failed = append(failed, seller)
			continue
		}

		orders = append(orders, order)
	}

	if len(failed) > 0 {
		return orders, &errors.ErrReconciliationFailed{
			TxDigest:      digest,
			FailedSellers: failed,
		}
	}

	return orders, nil
}
