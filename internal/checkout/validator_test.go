package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/ledger"
)

func line(productID string, qty int64) domain.CartLine {
	return domain.CartLine{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  qty,
		Name:      "product " + productID,
		AddedAt:   time.Now(),
	}
}

func listing(productID, seller string, price, stock int64) ledger.ListingState {
	return ledger.ListingState{
		ProductID:     productID,
		SellerAddress: seller,
		Price:         price,
		Stock:         stock,
	}
}

func TestValidatePartitionIsExhaustiveAndDisjoint(t *testing.T) {
	lines := []domain.CartLine{
		line("p1", 2),  // purchasable
		line("p2", 5),  // insufficient, 3 available
		line("p3", 1),  // vanished
		line("p4", 1),  // zero stock
		line("p5", 10), // purchasable, exact stock
	}
	fresh := map[string]ledger.ListingState{
		"p1": listing("p1", "s1", 100, 5),
		"p2": listing("p2", "s1", 200, 3),
		"p4": listing("p4", "s2", 50, 0),
		"p5": listing("p5", "s2", 10, 10),
	}

	result := Validate(lines, fresh)

	total := len(result.Purchasable) + len(result.Insufficient) + len(result.Unavailable)
	require.Equal(t, len(lines), total, "every line lands in exactly one set")

	seen := make(map[uuid.UUID]int)
	for _, pl := range result.Purchasable {
		seen[pl.Line.ID]++
	}
	for _, il := range result.Insufficient {
		seen[il.Line.ID]++
	}
	for _, ul := range result.Unavailable {
		seen[ul.ID]++
	}
	for _, l := range lines {
		assert.Equal(t, 1, seen[l.ID], "line %s classified exactly once", l.ProductID)
	}

	assert.False(t, result.Valid())
}

func TestValidateInsufficientCarriesAvailable(t *testing.T) {
	lines := []domain.CartLine{line("p1", 2)}
	fresh := map[string]ledger.ListingState{
		"p1": listing("p1", "s1", 100, 1),
	}

	result := Validate(lines, fresh)

	require.Len(t, result.Insufficient, 1)
	assert.Equal(t, int64(1), result.Insufficient[0].Available)
	assert.Equal(t, int64(2), result.Insufficient[0].Line.Quantity)
	assert.Empty(t, result.Purchasable)
	assert.Empty(t, result.Unavailable)
}

func TestValidateMixedSharedAndKiosk(t *testing.T) {
	// A shared-inventory, stock dropped to 1 against requested 2;
	// B kiosk-held single item, purchasable
	a := line("A", 2)
	b := line("B", 1)

	kiosk := "kiosk-1"
	fresh := map[string]ledger.ListingState{
		"A": listing("A", "s1", 100, 1),
		"B": {ProductID: "B", SellerAddress: "s2", Price: 500, Stock: 1, KioskID: &kiosk},
	}

	result := Validate([]domain.CartLine{a, b}, fresh)

	require.Len(t, result.Insufficient, 1)
	assert.Equal(t, "A", result.Insufficient[0].Line.ProductID)
	assert.Equal(t, int64(1), result.Insufficient[0].Available)

	require.Len(t, result.Purchasable, 1)
	assert.Equal(t, "B", result.Purchasable[0].Line.ProductID)

	assert.False(t, result.Valid())
}

func TestValidateFullyPurchasable(t *testing.T) {
	lines := []domain.CartLine{line("p1", 1), line("p2", 3)}
	fresh := map[string]ledger.ListingState{
		"p1": listing("p1", "s1", 100, 1),
		"p2": listing("p2", "s2", 200, 3),
	}

	result := Validate(lines, fresh)

	assert.True(t, result.Valid())
	assert.Len(t, result.Purchasable, 2)
}

func TestValidateEmptySelection(t *testing.T) {
	result := Validate(nil, map[string]ledger.ListingState{})
	assert.True(t, result.Valid())
	assert.Empty(t, result.Purchasable)
}
