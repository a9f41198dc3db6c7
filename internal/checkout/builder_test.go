package checkout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemart/storefront/internal/ledger"
	"github.com/tidemart/storefront/pkg/errors"
)

const gasBudget = int64(50_000_000)

func purchasableLine(productID, seller string, price, qty int64) PricedLine {
	l := line(productID, qty)
	return PricedLine{
		Line:    l,
		Listing: listing(productID, seller, price, qty),
	}
}

func kioskLine(productID, seller string, price int64, kioskID, policyID string) PricedLine {
	l := line(productID, 1)
	return PricedLine{
		Line: l,
		Listing: ledger.ListingState{
			ProductID:        productID,
			SellerAddress:    seller,
			Price:            price,
			Stock:            1,
			KioskID:          &kioskID,
			TransferPolicyID: &policyID,
		},
	}
}

func TestBuildTransactionEmptySetFails(t *testing.T) {
	_, _, err := BuildTransaction("0xbuyer", nil, gasBudget, "t1")

	var buildErr *errors.ErrBuildFailure
	require.ErrorAs(t, err, &buildErr)
}

func TestBuildTransactionPaymentSumIsExact(t *testing.T) {
	purchasable := []PricedLine{
		purchasableLine("p1", "s1", 199, 3),
		purchasableLine("p2", "s2", 1_000_000, 2),
		kioskLine("p3", "s2", 777, "kiosk-1", "policy-1"),
	}

	tx, warnings, err := BuildTransaction("0xbuyer", purchasable, gasBudget, "t1")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	var splitSum int64
	for _, cmd := range tx.Commands {
		if cmd.Kind == ledger.CommandSplitPayment {
			splitSum += cmd.Amount
		}
	}

	want := int64(199*3 + 1_000_000*2 + 777)
	assert.Equal(t, want, splitSum)

	total, err := PaymentTotal(purchasable)
	require.NoError(t, err)
	assert.Equal(t, want, total)
}

func TestBuildTransactionSharedListingShape(t *testing.T) {
	tx, _, err := BuildTransaction("0xbuyer", []PricedLine{purchasableLine("p1", "s1", 100, 2)}, gasBudget, "t1")
	require.NoError(t, err)

	require.Len(t, tx.Commands, 2)
	assert.Equal(t, ledger.CommandSplitPayment, tx.Commands[0].Kind)
	assert.Equal(t, int64(200), tx.Commands[0].Amount)
	assert.Equal(t, ledger.CommandBuyListing, tx.Commands[1].Kind)
	assert.Equal(t, "p1", tx.Commands[1].ProductID)
	assert.Equal(t, int64(2), tx.Commands[1].Quantity)
	assert.Equal(t, "0xbuyer", tx.Sender)
	assert.Equal(t, gasBudget, tx.GasBudget)
}

func TestBuildTransactionKioskShape(t *testing.T) {
	tx, warnings, err := BuildTransaction("0xbuyer", []PricedLine{kioskLine("p2", "s2", 500, "kiosk-1", "policy-1")}, gasBudget, "track-9")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	kinds := make([]ledger.CommandKind, 0, len(tx.Commands))
	for _, cmd := range tx.Commands {
		kinds = append(kinds, cmd.Kind)
	}
	assert.Equal(t, []ledger.CommandKind{
		ledger.CommandSplitPayment,
		ledger.CommandKioskWithdraw,
		ledger.CommandConfirmTransferPolicy,
		ledger.CommandMintReceipt,
		ledger.CommandTransferToBuyer,
	}, kinds)

	var receipt *ledger.ReceiptInput
	for _, cmd := range tx.Commands {
		if cmd.Kind == ledger.CommandMintReceipt {
			receipt = cmd.Receipt
		}
	}
	require.NotNil(t, receipt)
	assert.Equal(t, "p2", receipt.ProductID)
	assert.Equal(t, "s2", receipt.SellerAddress)
	assert.Equal(t, int64(500), receipt.Price)
	assert.Equal(t, "track-9", receipt.Tracking)
}

func TestBuildTransactionReceiptSkippedWithoutName(t *testing.T) {
	pl := kioskLine("p2", "s2", 500, "kiosk-1", "policy-1")
	pl.Line.Name = ""

	tx, warnings, err := BuildTransaction("0xbuyer", []PricedLine{pl}, gasBudget, "t1")
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	for _, cmd := range tx.Commands {
		assert.NotEqual(t, ledger.CommandMintReceipt, cmd.Kind)
	}
	// The purchase itself still goes through
	assert.Len(t, tx.Commands, 4)
}

func TestBuildTransactionUnresolvablePriceFails(t *testing.T) {
	pl := purchasableLine("p1", "s1", 100, 1)
	pl.Listing.Price = 0

	_, _, err := BuildTransaction("0xbuyer", []PricedLine{pl}, gasBudget, "t1")

	var buildErr *errors.ErrBuildFailure
	require.ErrorAs(t, err, &buildErr)
}

func TestBuildTransactionAmountOverflowFails(t *testing.T) {
	pl := purchasableLine("p1", "s1", math.MaxInt64, 2)

	_, _, err := BuildTransaction("0xbuyer", []PricedLine{pl}, gasBudget, "t1")

	var buildErr *errors.ErrBuildFailure
	require.ErrorAs(t, err, &buildErr)
}

func TestBuildTransactionTotalOverflowFails(t *testing.T) {
	purchasable := []PricedLine{
		purchasableLine("p1", "s1", math.MaxInt64-1, 1),
		purchasableLine("p2", "s1", 2, 1),
	}

	_, _, err := BuildTransaction("0xbuyer", purchasable, gasBudget, "t1")

	var buildErr *errors.ErrBuildFailure
	require.ErrorAs(t, err, &buildErr)
}
