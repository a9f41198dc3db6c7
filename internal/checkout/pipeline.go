package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/cart"
	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/ledger"
	"github.com/tidemart/storefront/internal/repository"
	"github.com/tidemart/storefront/pkg/errors"
)

// StockSource provides fresh authoritative stock and price for a set of
// products. Never served from a client-side cache.
type StockSource interface {
	GetListings(ctx context.Context, productIDs []string) (map[string]ledger.ListingState, error)
}

// StatusSource re-queries finality for a known digest
type StatusSource interface {
	GetTransactionStatus(ctx context.Context, digest string) (*ledger.SubmissionResult, error)
}

// Status is the terminal outcome of a checkout attempt
type Status string

const (
	StatusValidationFailed     Status = "VALIDATION_FAILED"
	StatusRejected             Status = "REJECTED"
	StatusIndeterminate        Status = "INDETERMINATE"
	StatusReconciled           Status = "RECONCILED"
	StatusReconciliationFailed Status = "RECONCILIATION_FAILED"
)

// Result is the outcome of one pass through the pipeline
type Result struct {
	Status     Status
	TxDigest   string
	Reason     string
	Validation *StockValidationResult // set when Status is VALIDATION_FAILED
	Orders     []*domain.Order
	Warnings   []string
}

// Pipeline runs the checkout stages in order, each a hard gate: stock
// validation, path selection, transaction construction, submission,
// reconciliation, cart mutation. At most one attempt is in flight per
// buyer; a concurrent attempt is rejected, not queued.
type Pipeline struct {
	carts      cart.Store
	stock      StockSource
	status     StatusSource
	signer     ledger.Signer
	repos      *repository.Repositories
	reconciler *Reconciler
	logger     *zap.Logger
	gasBudget  int64

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewPipeline creates a new checkout pipeline
func NewPipeline(
	carts cart.Store,
	stock StockSource,
	status StatusSource,
	signer ledger.Signer,
	repos *repository.Repositories,
	gasBudget int64,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		carts:      carts,
		stock:      stock,
		status:     status,
		signer:     signer,
		repos:      repos,
		reconciler: NewReconciler(repos, logger),
		logger:     logger,
		gasBudget:  gasBudget,
		inflight:   make(map[string]struct{}),
	}
}

// InFlight reports whether a checkout attempt is pending for the buyer.
// Cart mutations must be fenced while this is true.
func (p *Pipeline) InFlight(buyer string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.inflight[buyer]
	return ok
}

func (p *Pipeline) acquire(buyer string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.inflight[buyer]; ok {
		return false
	}
	p.inflight[buyer] = struct{}{}
	return true
}

func (p *Pipeline) release(buyer string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, buyer)
}

// Checkout runs one end-to-end attempt over the buyer's current selection.
// On validation failure the cart is auto-adjusted (unavailable lines
// pruned, insufficient quantities clamped) and no transaction is built. On
// any non-reconciled terminal outcome the cart lines are left untouched so
// a retry can reuse the same selection.
func (p *Pipeline) Checkout(ctx context.Context, buyer, shippingRef string) (*Result, error) {
	if !p.acquire(buyer) {
		return nil, &errors.ErrCheckoutInFlight{BuyerAddress: buyer}
	}
	defer p.release(buyer)

	lines, err := p.selectedLines(ctx, buyer)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &errors.ErrBuildFailure{Reason: "no cart lines selected"}
	}

	productIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
	}

	fresh, err := p.stock.GetListings(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fresh stock: %w", err)
	}

	validation := Validate(lines, fresh)
	if !validation.Valid() {
		if err := p.adjustCart(ctx, buyer, validation); err != nil {
			p.logger.Warn("Failed to adjust cart after validation", zap.Error(err))
		}
		return &Result{Status: StatusValidationFailed, Validation: &validation}, nil
	}

	attemptID := uuid.New()
	tx, warnings, err := BuildTransaction(buyer, validation.Purchasable, p.gasBudget, attemptID.String())
	if err != nil {
		return nil, err
	}

	// Cancellation is possible up to here; once submitted we wait out a
	// terminal outcome
	submission, err := p.signer.SignAndSubmit(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transaction: %w", err)
	}

	switch submission.Status {
	case ledger.StatusRejected:
		// Atomic rejection: nothing applied on-chain, cart untouched
		return &Result{Status: StatusRejected, Reason: submission.Reason}, nil

	case ledger.StatusIndeterminate:
		if submission.TxDigest != "" {
			attempt := p.newAttempt(attemptID, buyer, submission.TxDigest, shippingRef, validation.Purchasable)
			attempt.Status = domain.AttemptStatusSubmitted
			if err := p.repos.CheckoutAttempt.Create(ctx, attempt); err != nil {
				p.logger.Warn("Failed to record indeterminate attempt", zap.Error(err))
			}
		}
		p.logger.Warn("Transaction finality unconfirmed",
			zap.String("buyer", buyer),
			zap.String("tx_digest", submission.TxDigest))
		return &Result{Status: StatusIndeterminate, TxDigest: submission.TxDigest}, nil

	case ledger.StatusConfirmed:
		return p.reconcileConfirmed(ctx, attemptID, buyer, submission.TxDigest, shippingRef, validation.Purchasable, warnings)

	default:
		return nil, fmt.Errorf("unknown submission status %q", submission.Status)
	}
}

func (p *Pipeline) reconcileConfirmed(
	ctx context.Context,
	attemptID uuid.UUID,
	buyer, digest, shippingRef string,
	purchasable []PricedLine,
	warnings []string,
) (*Result, error) {
	attempt := p.newAttempt(attemptID, buyer, digest, shippingRef, purchasable)
	attempt.Status = domain.AttemptStatusReconciling
	if err := p.repos.CheckoutAttempt.Create(ctx, attempt); err != nil {
		// Reconciliation still proceeds; the orders are the projection that
		// matters, the attempt row only drives retry and the sweep
		p.logger.Warn("Failed to record checkout attempt", zap.String("tx_digest", digest), zap.Error(err))
	}

	orders, err := p.reconciler.Reconcile(ctx, digest, buyer, shippingRef, attempt.LineSnapshot)
	if err != nil {
		if uerr := p.repos.CheckoutAttempt.UpdateStatus(ctx, attempt.ID, domain.AttemptStatusReconciliationFailed); uerr != nil {
			p.logger.Warn("Failed to mark attempt reconciliation-failed", zap.Error(uerr))
		}
		p.logger.Error("Order reconciliation failed: funds moved, order records missing",
			zap.String("tx_digest", digest),
			zap.Error(err))
		return &Result{
			Status:   StatusReconciliationFailed,
			TxDigest: digest,
			Reason:   err.Error(),
			Orders:   orders,
			Warnings: warnings,
		}, nil
	}

	if err := p.repos.CheckoutAttempt.UpdateStatus(ctx, attempt.ID, domain.AttemptStatusReconciled); err != nil {
		p.logger.Warn("Failed to mark attempt reconciled", zap.Error(err))
	}

	p.removePurchased(ctx, buyer, attempt.LineSnapshot)

	return &Result{
		Status:   StatusReconciled,
		TxDigest: digest,
		Orders:   orders,
		Warnings: warnings,
	}, nil
}

// RetryReconciliation replays the order projection for a known digest
// without resubmitting anything to the ledger. Safe to call repeatedly:
// reconciliation is idempotent on (digest, seller).
func (p *Pipeline) RetryReconciliation(ctx context.Context, digest string) (*Result, error) {
	attempt, err := p.repos.CheckoutAttempt.GetByDigest(ctx, digest)
	if err != nil {
		return nil, err
	}

	if attempt.Status == domain.AttemptStatusReconciled {
		orders, err := p.repos.Order.ListByDigest(ctx, digest)
		if err != nil {
			return nil, err
		}
		return &Result{Status: StatusReconciled, TxDigest: digest, Orders: orders}, nil
	}

	// Attempts recorded as SUBMITTED were indeterminate; only a confirmed
	// re-query may enter reconciliation
	if attempt.Status == domain.AttemptStatusSubmitted {
		status, err := p.status.GetTransactionStatus(ctx, digest)
		if err != nil {
			return nil, fmt.Errorf("failed to re-query transaction status: %w", err)
		}
		switch status.Status {
		case ledger.StatusRejected:
			return &Result{Status: StatusRejected, TxDigest: digest, Reason: status.Reason}, nil
		case ledger.StatusIndeterminate:
			return &Result{Status: StatusIndeterminate, TxDigest: digest}, nil
		}
	}

	if err := p.repos.CheckoutAttempt.UpdateStatus(ctx, attempt.ID, domain.AttemptStatusReconciling); err != nil {
		p.logger.Warn("Failed to mark attempt reconciling", zap.Error(err))
	}

	orders, err := p.reconciler.Reconcile(ctx, digest, attempt.BuyerAddress, attempt.ShippingRef, attempt.LineSnapshot)
	if err != nil {
		if uerr := p.repos.CheckoutAttempt.UpdateStatus(ctx, attempt.ID, domain.AttemptStatusReconciliationFailed); uerr != nil {
			p.logger.Warn("Failed to mark attempt reconciliation-failed", zap.Error(uerr))
		}
		return &Result{
			Status:   StatusReconciliationFailed,
			TxDigest: digest,
			Reason:   err.Error(),
			Orders:   orders,
		}, nil
	}

	if err := p.repos.CheckoutAttempt.UpdateStatus(ctx, attempt.ID, domain.AttemptStatusReconciled); err != nil {
		p.logger.Warn("Failed to mark attempt reconciled", zap.Error(err))
	}

	p.removePurchased(ctx, attempt.BuyerAddress, attempt.LineSnapshot)

	return &Result{Status: StatusReconciled, TxDigest: digest, Orders: orders}, nil
}

// selectedLines returns the cart lines named by the buyer's selection
func (p *Pipeline) selectedLines(ctx context.Context, buyer string) ([]domain.CartLine, error) {
	selection, err := p.carts.Selection(ctx, buyer)
	if err != nil {
		return nil, err
	}
	if len(selection) == 0 {
		return nil, nil
	}

	selected := make(map[uuid.UUID]bool, len(selection))
	for _, id := range selection {
		selected[id] = true
	}

	all, err := p.carts.Lines(ctx, buyer)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(selection))
	for _, line := range all {
		if selected[line.ID] {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// adjustCart applies the caller-side validation policy: unavailable lines
// are removed, insufficient lines are clamped to the available amount
func (p *Pipeline) adjustCart(ctx context.Context, buyer string, validation StockValidationResult) error {
	if len(validation.Unavailable) > 0 {
		ids := make([]uuid.UUID, 0, len(validation.Unavailable))
		for _, line := range validation.Unavailable {
			ids = append(ids, line.ID)
		}
		if err := p.carts.RemoveLines(ctx, buyer, ids); err != nil {
			return err
		}
	}
	for _, ins := range validation.Insufficient {
		if err := p.carts.SetQuantity(ctx, buyer, ins.Line.ID, ins.Available); err != nil {
			return err
		}
	}
	return nil
}

// removePurchased clears exactly the purchased lines; lines outside the
// selection are untouched. Only reached from a reconciled outcome.
func (p *Pipeline) removePurchased(ctx context.Context, buyer string, lines []domain.AttemptLine) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.CartLineID != uuid.Nil {
			ids = append(ids, line.CartLineID)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := p.carts.RemoveLines(ctx, buyer, ids); err != nil {
		p.logger.Warn("Failed to remove purchased lines from cart",
			zap.String("buyer", buyer),
			zap.Error(err))
	}
}

func (p *Pipeline) newAttempt(
	id uuid.UUID,
	buyer, digest, shippingRef string,
	purchasable []PricedLine,
) *domain.CheckoutAttempt {
	snapshot := make([]domain.AttemptLine, 0, len(purchasable))
	for _, pl := range purchasable {
		snapshot = append(snapshot, domain.AttemptLine{
			CartLineID:    pl.Line.ID,
			ProductID:     pl.Line.ProductID,
			SellerAddress: pl.Listing.SellerAddress,
			Name:          pl.Line.Name,
			Price:         pl.Listing.Price,
			Quantity:      pl.Line.Quantity,
		})
	}
	return &domain.CheckoutAttempt{
		ID:           id,
		BuyerAddress: buyer,
		TxDigest:     digest,
		ShippingRef:  shippingRef,
		LineSnapshot: snapshot,
	}
}
