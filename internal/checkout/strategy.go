package checkout

import "github.com/tidemart/storefront/internal/ledger"

// PurchasePath is the sealed union of the two purchase mechanisms. The tag
// is resolved once, before transaction construction; the two paths require
// structurally different commands and cannot be chosen mid-transaction.
type PurchasePath interface {
	isPurchasePath()
}

// SharedListing buys from a listing whose stock lives in a shared ledger
// object decremented directly by the purchase call
type SharedListing struct {
	ProductID string
}

// KioskWithdrawal buys an item held in a seller kiosk: withdraw with
// payment, confirm against the global transfer policy, then transfer the
// item (and its minted receipt) to the buyer
type KioskWithdrawal struct {
	KioskID          string
	ProductID        string
	TransferPolicyID string
}

func (SharedListing) isPurchasePath()   {}
func (KioskWithdrawal) isPurchasePath() {}

// PathFor resolves the purchase path from listing metadata: a kiosk id
// marks the escrow path, its absence the shared-listing path.
func PathFor(listing ledger.ListingState) PurchasePath {
	if listing.KioskID != nil {
		policyID := ""
		if listing.TransferPolicyID != nil {
			policyID = *listing.TransferPolicyID
		}
		return KioskWithdrawal{
			KioskID:          *listing.KioskID,
			ProductID:        listing.ProductID,
			TransferPolicyID: policyID,
		}
	}
	return SharedListing{ProductID: listing.ProductID}
}
