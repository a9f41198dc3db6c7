package domain

// OrderStatus represents the fulfillment status of an order. Orders are
// created at PAID only after ledger confirmation; later transitions belong
// to the fulfillment workflow.
type OrderStatus string

const (
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPaid:
		return newStatus == OrderStatusShipped || newStatus == OrderStatusCancelled
	case OrderStatusShipped:
		return newStatus == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// AttemptStatus represents the reconciliation state of a checkout attempt.
// SUBMITTED covers both awaiting-confirmation and indeterminate outcomes:
// the digest is known but reconciliation has not started.
type AttemptStatus string

const (
	AttemptStatusSubmitted            AttemptStatus = "SUBMITTED"
	AttemptStatusReconciling          AttemptStatus = "RECONCILING"
	AttemptStatusReconciled           AttemptStatus = "RECONCILED"
	AttemptStatusReconciliationFailed AttemptStatus = "RECONCILIATION_FAILED"
)

// IsTerminal reports whether the attempt needs no further work
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusReconciled
}

// CanTransitionTo checks if an attempt status transition is valid.
// RECONCILIATION_FAILED is re-enterable: retry moves it back to RECONCILING.
func (s AttemptStatus) CanTransitionTo(newStatus AttemptStatus) bool {
	switch s {
	case AttemptStatusSubmitted:
		return newStatus == AttemptStatusReconciling
	case AttemptStatusReconciling:
		return newStatus == AttemptStatusReconciled || newStatus == AttemptStatusReconciliationFailed
	case AttemptStatusReconciliationFailed:
		return newStatus == AttemptStatusReconciling
	case AttemptStatusReconciled:
		return false
	default:
		return false
	}
}

func (s AttemptStatus) String() string {
	return string(s)
}
