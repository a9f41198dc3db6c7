package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/tidemart/storefront/internal/domain"
)

// Store holds a buyer's cart lines and checkout selection across sessions.
// The selection has its own lifecycle: a line can exist unselected. All
// cart mutation flows through this interface; there is no ambient access.
type Store interface {
	Lines(ctx context.Context, buyer string) ([]domain.CartLine, error)
	Get(ctx context.Context, buyer string, lineID uuid.UUID) (*domain.CartLine, error)
	Add(ctx context.Context, buyer string, line *domain.CartLine) error
	SetQuantity(ctx context.Context, buyer string, lineID uuid.UUID, quantity int64) error
	Remove(ctx context.Context, buyer string, lineID uuid.UUID) error
	// RemoveLines removes the given lines and drops them from the selection
	RemoveLines(ctx context.Context, buyer string, lineIDs []uuid.UUID) error
	Selection(ctx context.Context, buyer string) ([]uuid.UUID, error)
	SetSelection(ctx context.Context, buyer string, lineIDs []uuid.UUID) error
	Clear(ctx context.Context, buyer string) error
}
