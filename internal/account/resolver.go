// Package account derives the user-facing address and token balance from
// the active signing session. Pull-based only: callers re-invoke after any
// balance-affecting event (login, confirmed transfer).
package account

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pennyfund/donate-gateway/internal/session"
)

// ContractCaller is the read slice of ethclient.Client the resolver needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// BalanceQueryError wraps an RPC failure or malformed contract response.
type BalanceQueryError struct {
	Op  string
	Err error
}

func (e *BalanceQueryError) Error() string { return "balance query (" + e.Op + "): " + e.Err.Error() }
func (e *BalanceQueryError) Unwrap() error { return e.Err }

// Resolver reads balanceOf on the token contract for the session address.
type Resolver struct {
	client   ContractCaller
	token    common.Address
	decimals int32
	retries  int
}

func NewResolver(client ContractCaller, token common.Address, decimals, retries int) *Resolver {
	if retries <= 0 {
		retries = 3
	}
	return &Resolver{client: client, token: token, decimals: int32(decimals), retries: retries}
}

// ResolveAddress returns the controlling address of the signing handle.
func (r *Resolver) ResolveAddress(h session.Handle) (string, error) {
	if h == nil {
		return "", session.ErrNoActiveSession
	}
	return h.Address().Hex(), nil
}

// ResolveBalance queries balanceOf(owner) and renders the raw integer at
// the token's declared precision as a fixed decimal string.
func (r *Resolver) ResolveBalance(ctx context.Context, h session.Handle) (string, error) {
	if h == nil {
		return "", session.ErrNoActiveSession
	}
	// balanceOf(address): 0x70a08231
	data := append(common.FromHex("0x70a08231"), common.LeftPadBytes(h.Address().Bytes(), 32)...)
	res, err := r.callWithRetry(ctx, ethereum.CallMsg{To: &r.token, Data: data})
	if err != nil {
		return "", &BalanceQueryError{Op: "balanceOf", Err: err}
	}
	if len(res) == 0 {
		return FormatUnits(big.NewInt(0), r.decimals), nil
	}
	return FormatUnits(new(big.Int).SetBytes(res), r.decimals), nil
}

// callWithRetry performs eth_call with small exponential backoff on
// provider rate limits (429 / -32005).
func (r *Resolver) callWithRetry(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	backoff := 200 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= r.retries; attempt++ {
		out, err := r.client.CallContract(ctx, msg, nil)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt < r.retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			if isRateLimitError(err) {
				backoff *= 2
			}
		}
	}
	return nil, lastErr
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Too Many Requests") || strings.Contains(s, "-32005")
}

// FormatUnits renders base units at the given precision, e.g. 50000000 at
// 6 decimals -> "50.000000". The fixed fractional width is deliberate: the
// displayed string and on-chain encoding share one representation.
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		v = big.NewInt(0)
	}
	return decimal.NewFromBigInt(v, -decimals).StringFixed(decimals)
}
