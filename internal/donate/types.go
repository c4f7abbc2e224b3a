package donate

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// DonationRequest is the user-supplied transfer input. Amounts are in token
// display units (6-decimal USDC). A fresh request is required per attempt;
// nothing here is resubmitted automatically.
type DonationRequest struct {
	Recipient string
	Principal decimal.Decimal
}

// TransferState tracks a submitted transfer. Confirmed and Failed are
// terminal.
type TransferState int

const (
	Pending TransferState = iota
	Confirmed
	Failed
)

func (s TransferState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// TransferResult is the outcome of a submission.
type TransferResult struct {
	State  TransferState
	TxHash common.Hash
	Fee    decimal.Decimal
	Total  decimal.Decimal
	Reason string // set for Failed
}
