package donate

import "github.com/ethereum/go-ethereum/common"

// ValidationError is a pre-flight, client-side rejection. No network call
// was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// SubmissionError means the signing handle or the node rejected the
// transfer. Reason carries the revert string when the node supplied one.
type SubmissionError struct {
	Op     string
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Reason != "" {
		return "submit (" + e.Op + "): " + e.Reason
	}
	return "submit (" + e.Op + "): " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ConfirmationError means the network reported a revert or the wait hit its
// deadline. The transfer is never resubmitted on this path.
type ConfirmationError struct {
	TxHash common.Hash
	Reason string
	Err    error
}

func (e *ConfirmationError) Error() string {
	return "confirm " + e.TxHash.Hex() + ": " + e.Reason
}

func (e *ConfirmationError) Unwrap() error { return e.Err }
