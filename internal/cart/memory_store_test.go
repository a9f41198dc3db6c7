package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemart/storefront/internal/domain"
)

func newLine(productID string, qty int64, addedAt time.Time) domain.CartLine {
	return domain.CartLine{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  qty,
		Name:      "product " + productID,
		Price:     100,
		AddedAt:   addedAt,
	}
}

func TestMemoryStoreLinesSortedByAge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	newest := newLine("p3", 1, now)
	oldest := newLine("p1", 1, now.Add(-2*time.Hour))
	middle := newLine("p2", 1, now.Add(-time.Hour))

	require.NoError(t, store.Add(ctx, "0xbuyer", &newest))
	require.NoError(t, store.Add(ctx, "0xbuyer", &oldest))
	require.NoError(t, store.Add(ctx, "0xbuyer", &middle))

	lines, err := store.Lines(ctx, "0xbuyer")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, "p2", lines[1].ProductID)
	assert.Equal(t, "p3", lines[2].ProductID)
}

func TestMemoryStoreCartsAreIsolatedPerBuyer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	mine := newLine("p1", 1, time.Now())
	require.NoError(t, store.Add(ctx, "0xme", &mine))

	lines, err := store.Lines(ctx, "0xother")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMemoryStoreSetQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	l := newLine("p1", 1, time.Now())
	require.NoError(t, store.Add(ctx, "0xbuyer", &l))
	require.NoError(t, store.SetQuantity(ctx, "0xbuyer", l.ID, 4))

	got, err := store.Get(ctx, "0xbuyer", l.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(4), got.Quantity)

	err = store.SetQuantity(ctx, "0xbuyer", uuid.New(), 2)
	assert.Error(t, err)
}

func TestMemoryStoreGetMissingLine(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Get(context.Background(), "0xbuyer", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreRemoveLinesPrunesSelection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a := newLine("p1", 1, time.Now())
	b := newLine("p2", 1, time.Now())
	require.NoError(t, store.Add(ctx, "0xbuyer", &a))
	require.NoError(t, store.Add(ctx, "0xbuyer", &b))
	require.NoError(t, store.SetSelection(ctx, "0xbuyer", []uuid.UUID{a.ID, b.ID}))

	require.NoError(t, store.RemoveLines(ctx, "0xbuyer", []uuid.UUID{a.ID}))

	selection, err := store.Selection(ctx, "0xbuyer")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, selection)

	lines, err := store.Lines(ctx, "0xbuyer")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, b.ID, lines[0].ID)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	l := newLine("p1", 1, time.Now())
	require.NoError(t, store.Add(ctx, "0xbuyer", &l))
	require.NoError(t, store.SetSelection(ctx, "0xbuyer", []uuid.UUID{l.ID}))

	require.NoError(t, store.Clear(ctx, "0xbuyer"))

	lines, err := store.Lines(ctx, "0xbuyer")
	require.NoError(t, err)
	assert.Empty(t, lines)

	selection, err := store.Selection(ctx, "0xbuyer")
	require.NoError(t, err)
	assert.Empty(t, selection)
}
