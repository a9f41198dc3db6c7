package checkout

import (
	"fmt"
	"math"

	"github.com/tidemart/storefront/internal/ledger"
	"github.com/tidemart/storefront/pkg/errors"
)

// BuildTransaction assembles one atomic ledger transaction covering every
// purchasable line, regardless of how many sellers or purchase paths are
// involved. Payment amounts are derived exactly once from the purchasable
// set; any condition that would require re-validation fails the build
// before a single payment fragment is emitted.
//
// The returned warnings report best-effort steps that were skipped (receipt
// mints with unresolvable metadata); they never indicate a partial
// transaction.
func BuildTransaction(buyer string, purchasable []PricedLine, gasBudget int64, tracking string) (*ledger.Transaction, []string, error) {
	if len(purchasable) == 0 {
		return nil, nil, &errors.ErrBuildFailure{Reason: "empty purchasable set"}
	}

	// Compute and check all payment amounts before emitting any command
	amounts := make([]int64, len(purchasable))
	var total int64
	for i, pl := range purchasable {
		price := pl.Listing.Price
		qty := pl.Line.Quantity
		if price <= 0 {
			return nil, nil, &errors.ErrBuildFailure{
				Reason: fmt.Sprintf("no resolvable price for product %s", pl.Line.ProductID),
			}
		}
		if qty <= 0 {
			return nil, nil, &errors.ErrBuildFailure{
				Reason: fmt.Sprintf("non-positive quantity for product %s", pl.Line.ProductID),
			}
		}
		if price > math.MaxInt64/qty {
			return nil, nil, &errors.ErrBuildFailure{
				Reason: fmt.Sprintf("payment amount overflow for product %s", pl.Line.ProductID),
			}
		}
		amount := price * qty
		if total > math.MaxInt64-amount {
			return nil, nil, &errors.ErrBuildFailure{Reason: "total payment overflow"}
		}
		amounts[i] = amount
		total += amount
	}

	var commands []ledger.Command
	var warnings []string

	for i, pl := range purchasable {
		commands = append(commands, ledger.Command{
			Kind:   ledger.CommandSplitPayment,
			Amount: amounts[i],
		})

		switch path := PathFor(pl.Listing).(type) {
		case SharedListing:
			commands = append(commands, ledger.Command{
				Kind:      ledger.CommandBuyListing,
				ProductID: path.ProductID,
				Quantity:  pl.Line.Quantity,
				Amount:    amounts[i],
			})

		case KioskWithdrawal:
			commands = append(commands,
				ledger.Command{
					Kind:      ledger.CommandKioskWithdraw,
					KioskID:   path.KioskID,
					ProductID: path.ProductID,
					Amount:    amounts[i],
				},
				ledger.Command{
					Kind:             ledger.CommandConfirmTransferPolicy,
					TransferPolicyID: path.TransferPolicyID,
					ProductID:        path.ProductID,
				},
			)

			// Receipt minting is best-effort: without resolvable metadata
			// the purchase proceeds and the skip is surfaced as a warning
			if pl.Line.Name == "" {
				warnings = append(warnings, fmt.Sprintf("receipt mint skipped for product %s: missing name", path.ProductID))
			} else {
				commands = append(commands, ledger.Command{
					Kind: ledger.CommandMintReceipt,
					Receipt: &ledger.ReceiptInput{
						ProductID:     path.ProductID,
						Name:          pl.Line.Name,
						SellerAddress: pl.Listing.SellerAddress,
						Price:         amounts[i],
						Tracking:      tracking,
					},
				})
			}

			commands = append(commands, ledger.Command{
				Kind:      ledger.CommandTransferToBuyer,
				ProductID: path.ProductID,
				Recipient: buyer,
			})

		default:
			return nil, nil, &errors.ErrBuildFailure{
				Reason: fmt.Sprintf("unknown purchase path for product %s", pl.Line.ProductID),
			}
		}
	}

	return &ledger.Transaction{
		Sender:    buyer,
		Commands:  commands,
		GasBudget: gasBudget,
	}, warnings, nil
}

// PaymentTotal returns the exact payment sum the builder derives for the
// purchasable set, without constructing a transaction
func PaymentTotal(purchasable []PricedLine) (int64, error) {
	var total int64
	for _, pl := range purchasable {
		if pl.Listing.Price <= 0 || pl.Line.Quantity <= 0 {
			return 0, &errors.ErrBuildFailure{
				Reason: fmt.Sprintf("no resolvable price for product %s", pl.Line.ProductID),
			}
		}
		if pl.Listing.Price > math.MaxInt64/pl.Line.Quantity {
			return 0, &errors.ErrBuildFailure{
				Reason: fmt.Sprintf("payment amount overflow for product %s", pl.Line.ProductID),
			}
		}
		amount := pl.Listing.Price * pl.Line.Quantity
		if total > math.MaxInt64-amount {
			return 0, &errors.ErrBuildFailure{Reason: "total payment overflow"}
		}
		total += amount
	}
	return total, nil
}
