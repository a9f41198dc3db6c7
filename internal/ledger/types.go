package ledger

// ListingState is the authoritative on-chain state of a product listing.
// Stock and Price come from the ledger at query time, never from the
// catalog cache.
type ListingState struct {
	ProductID        string  `json:"product_id"`
	SellerAddress    string  `json:"seller_address"`
	Price            int64   `json:"price"`
	Stock            int64   `json:"stock"`
	KioskID          *string `json:"kiosk_id,omitempty"`
	TransferPolicyID *string `json:"transfer_policy_id,omitempty"`
}

// CommandKind identifies one sub-operation within a transaction
type CommandKind string

const (
	CommandSplitPayment          CommandKind = "split_payment"
	CommandBuyListing            CommandKind = "buy_listing"
	CommandKioskWithdraw         CommandKind = "kiosk_withdraw"
	CommandConfirmTransferPolicy CommandKind = "confirm_transfer_policy"
	CommandMintReceipt           CommandKind = "mint_receipt"
	CommandTransferToBuyer       CommandKind = "transfer_to_buyer"
)

// Command is one sub-operation of an atomic transaction. Only the fields
// relevant to its Kind are set.
type Command struct {
	Kind             CommandKind   `json:"kind"`
	ProductID        string        `json:"product_id,omitempty"`
	KioskID          string        `json:"kiosk_id,omitempty"`
	TransferPolicyID string        `json:"transfer_policy_id,omitempty"`
	Quantity         int64         `json:"quantity,omitempty"`
	Amount           int64         `json:"amount,omitempty"`
	Recipient        string        `json:"recipient,omitempty"`
	Receipt          *ReceiptInput `json:"receipt,omitempty"`
}

// ReceiptInput carries the metadata for a minted proof-of-purchase object
type ReceiptInput struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	SellerAddress string `json:"seller_address"`
	Price         int64  `json:"price"`
	Tracking      string `json:"tracking"`
}

// Transaction is an ordered sequence of commands executed atomically by the
// ledger: either every command applies or none do.
type Transaction struct {
	Sender    string    `json:"sender"`
	Commands  []Command `json:"commands"`
	GasBudget int64     `json:"gas_budget"`
}

// SubmissionStatus is the terminal outcome reported by the ledger
type SubmissionStatus string

const (
	StatusConfirmed     SubmissionStatus = "confirmed"
	StatusRejected      SubmissionStatus = "rejected"
	StatusIndeterminate SubmissionStatus = "indeterminate"
)

// SubmissionResult is the outcome of a submitted transaction. TxDigest is
// set for confirmed and indeterminate outcomes; Reason for rejected ones.
type SubmissionResult struct {
	Status   SubmissionStatus `json:"status"`
	TxDigest string           `json:"tx_digest,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}
