package errors

import (
	"fmt"
	"strings"
)

// ErrNotFound indicates a resource was not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized indicates an authentication failure
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrInvalidStateTransition indicates an illegal status change
type ErrInvalidStateTransition struct {
	From interface{}
	To   interface{}
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %v to %v", e.From, e.To)
}

// ErrCheckoutInFlight indicates a second checkout attempt was made while
// one is already pending for the same cart
type ErrCheckoutInFlight struct {
	BuyerAddress string
}

func (e *ErrCheckoutInFlight) Error() string {
	return fmt.Sprintf("checkout already in flight for buyer %s", e.BuyerAddress)
}

// ErrBuildFailure indicates the transaction builder could not produce a
// complete transaction; no partial transaction exists and the cart is untouched
type ErrBuildFailure struct {
	Reason string
}

func (e *ErrBuildFailure) Error() string {
	return fmt.Sprintf("transaction build failed: %s", e.Reason)
}

// ErrReconciliationFailed indicates the ledger moved funds but one or more
// order records could not be written. Recoverable via retryReconciliation.
type ErrReconciliationFailed struct {
	TxDigest      string
	FailedSellers []string
}

func (e *ErrReconciliationFailed) Error() string {
	return fmt.Sprintf("order reconciliation failed for tx %s (sellers: %s): funds moved, order records missing",
		e.TxDigest, strings.Join(e.FailedSellers, ", "))
}
