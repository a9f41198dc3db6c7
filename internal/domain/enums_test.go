package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusIsValid(t *testing.T) {
	assert.True(t, OrderStatusPaid.IsValid())
	assert.True(t, OrderStatusShipped.IsValid())
	assert.True(t, OrderStatusDelivered.IsValid())
	assert.True(t, OrderStatusCancelled.IsValid())
	assert.False(t, OrderStatus("PENDING").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusDelivered))

	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusCancelled))

	// Terminal states
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPaid))
}

func TestAttemptStatusTransitions(t *testing.T) {
	assert.True(t, AttemptStatusSubmitted.CanTransitionTo(AttemptStatusReconciling))
	assert.False(t, AttemptStatusSubmitted.CanTransitionTo(AttemptStatusReconciled))

	assert.True(t, AttemptStatusReconciling.CanTransitionTo(AttemptStatusReconciled))
	assert.True(t, AttemptStatusReconciling.CanTransitionTo(AttemptStatusReconciliationFailed))

	// Failed attempts re-enter reconciliation on retry
	assert.True(t, AttemptStatusReconciliationFailed.CanTransitionTo(AttemptStatusReconciling))
	assert.False(t, AttemptStatusReconciliationFailed.CanTransitionTo(AttemptStatusReconciled))

	assert.False(t, AttemptStatusReconciled.CanTransitionTo(AttemptStatusReconciling))
}

func TestAttemptStatusIsTerminal(t *testing.T) {
	assert.True(t, AttemptStatusReconciled.IsTerminal())
	assert.False(t, AttemptStatusSubmitted.IsTerminal())
	assert.False(t, AttemptStatusReconciling.IsTerminal())
	assert.False(t, AttemptStatusReconciliationFailed.IsTerminal())
}
