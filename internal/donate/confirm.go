package donate

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptReader is the receipt slice of ethclient.Client.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Tracker waits for a broadcast transaction to reach a terminal state. It
// polls under an explicit deadline; it never resubmits.
type Tracker struct {
	client   ReceiptReader
	timeout  time.Duration
	interval time.Duration
	logf     func(format string, a ...any)
}

func NewTracker(client ReceiptReader, timeout, interval time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	return &Tracker{client: client, timeout: timeout, interval: interval}
}

func (t *Tracker) SetLogf(f func(format string, a ...any)) { t.logf = f }

func (t *Tracker) log(format string, a ...any) {
	if t.logf != nil {
		t.logf(format, a...)
	}
}

// AwaitConfirmation blocks until the transaction is mined, reverted, or the
// deadline passes. A reverted or timed-out wait is a ConfirmationError.
func (t *Tracker) AwaitConfirmation(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		receipt, err := t.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return nil, &ConfirmationError{TxHash: txHash, Reason: "transaction reverted on-chain"}
			}
			t.log("confirmed %s in block %s", txHash.Hex(), receipt.BlockNumber.String())
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			// transient RPC failure; keep polling until the deadline
			t.log("receipt poll error for %s: %v", txHash.Hex(), err)
		}
		select {
		case <-ctx.Done():
			return nil, &ConfirmationError{TxHash: txHash, Reason: "confirmation wait timed out after " + t.timeout.String(), Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}
