package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemart/storefront/internal/ledger"
)

func TestPathForSharedListing(t *testing.T) {
	path := PathFor(ledger.ListingState{ProductID: "p1", Price: 100, Stock: 5})

	shared, ok := path.(SharedListing)
	require.True(t, ok)
	assert.Equal(t, "p1", shared.ProductID)
}

func TestPathForKioskWithdrawal(t *testing.T) {
	kiosk := "kiosk-9"
	policy := "policy-1"
	path := PathFor(ledger.ListingState{
		ProductID:        "p2",
		Price:            100,
		Stock:            1,
		KioskID:          &kiosk,
		TransferPolicyID: &policy,
	})

	withdrawal, ok := path.(KioskWithdrawal)
	require.True(t, ok)
	assert.Equal(t, "kiosk-9", withdrawal.KioskID)
	assert.Equal(t, "p2", withdrawal.ProductID)
	assert.Equal(t, "policy-1", withdrawal.TransferPolicyID)
}

func TestPathForKioskWithoutPolicy(t *testing.T) {
	kiosk := "kiosk-9"
	path := PathFor(ledger.ListingState{ProductID: "p3", KioskID: &kiosk})

	withdrawal, ok := path.(KioskWithdrawal)
	require.True(t, ok)
	assert.Empty(t, withdrawal.TransferPolicyID)
}
