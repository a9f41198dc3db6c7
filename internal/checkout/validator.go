package checkout

import (
	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/ledger"
)

// PricedLine pairs a cart line with the fresh ledger state it was validated
// against. Payment arithmetic uses Listing.Price, never the cart snapshot.
type PricedLine struct {
	Line    domain.CartLine
	Listing ledger.ListingState
}

// InsufficientLine is a cart line requesting more than the ledger has
type InsufficientLine struct {
	Line      domain.CartLine
	Available int64
}

// StockValidationResult partitions a selection against fresh stock. Every
// validated line lands in exactly one of the three sets.
type StockValidationResult struct {
	Purchasable  []PricedLine
	Insufficient []InsufficientLine
	Unavailable  []domain.CartLine
}

// Valid reports whether every line is purchasable as requested
func (r StockValidationResult) Valid() bool {
	return len(r.Insufficient) == 0 && len(r.Unavailable) == 0
}

// Validate classifies each selected line against freshly queried ledger
// state. It performs no mutation; pruning unavailable lines and clamping
// insufficient quantities is the caller's responsibility.
func Validate(lines []domain.CartLine, fresh map[string]ledger.ListingState) StockValidationResult {
	var result StockValidationResult

	for _, line := range lines {
		listing, ok := fresh[line.ProductID]
		if !ok || listing.Stock == 0 {
			result.Unavailable = append(result.Unavailable, line)
			continue
		}
		if listing.Stock < line.Quantity {
			result.Insufficient = append(result.Insufficient, InsufficientLine{
				Line:      line,
				Available: listing.Stock,
			})
			continue
		}
		result.Purchasable = append(result.Purchasable, PricedLine{
			Line:    line,
			Listing: listing,
		})
	}

	return result
}
