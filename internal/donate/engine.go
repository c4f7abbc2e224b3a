// Package donate drives the fee-inclusive transfer: fee math, pre-flight
// validation, on-chain submission through the fee-routing contract, and
// confirmation tracking.
package donate

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/pennyfund/donate-gateway/internal/session"
)

// FeeRate is the platform cut, fixed at 5%. Not a runtime knob.
var FeeRate = decimal.New(5, -2)

var feeABI abi.ABI

func init() {
	const feeRouting = `[{"inputs":[{"internalType":"address","name":"recipient","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"uint256","name":"fee","type":"uint256"}],"name":"transferWithPlatformFee","outputs":[],"stateMutability":"nonpayable","type":"function"}]`
	ab, _ := abi.JSON(strings.NewReader(feeRouting))
	feeABI = ab
}

// ComputeFee returns (fee, total) for a principal amount. All arithmetic is
// fixed-point decimal; the same values feed both display and base-unit
// encoding so the shown fee always equals the submitted fee.
func ComputeFee(principal decimal.Decimal) (fee, total decimal.Decimal) {
	fee = principal.Mul(FeeRate)
	total = principal.Add(fee)
	return fee, total
}

// ToBaseUnits shifts a display amount to on-chain integer units, rounding
// toward zero.
func ToBaseUnits(d decimal.Decimal, decimals int32) *big.Int {
	return d.Shift(decimals).Truncate(0).BigInt()
}

// TxBackend is the write slice of ethclient.Client the engine needs.
type TxBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Engine submits fee-inclusive transfers through the fee-routing contract.
type Engine struct {
	client      TxBackend
	chainID     *big.Int
	feeContract common.Address
	decimals    int32
	bufferPct   int64
	logf        func(format string, a ...any)
}

func NewEngine(client TxBackend, chainID *big.Int, feeContract common.Address, decimals int, bufferPct int64) *Engine {
	if bufferPct <= 0 {
		bufferPct = 15
	}
	return &Engine{
		client:      client,
		chainID:     chainID,
		feeContract: feeContract,
		decimals:    int32(decimals),
		bufferPct:   bufferPct,
	}
}

// SetLogf installs an optional progress logger (UI surfaces render it).
func (e *Engine) SetLogf(f func(format string, a ...any)) { e.logf = f }

func (e *Engine) log(format string, a ...any) {
	if e.logf != nil {
		e.logf(format, a...)
	}
}

// Validate is the client-side pre-flight check against the cached balance.
// It does not guarantee the on-chain call will succeed.
func (e *Engine) Validate(req DonationRequest, cachedBalance string) error {
	if req.Principal.Sign() <= 0 {
		return &ValidationError{Reason: "amount must be positive"}
	}
	if req.Principal.Exponent() < -e.decimals {
		return &ValidationError{Reason: "too many fractional digits for token precision"}
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return &ValidationError{Reason: "recipient address is empty"}
	}
	if !common.IsHexAddress(req.Recipient) {
		return &ValidationError{Reason: "recipient is not a valid address"}
	}
	bal, err := decimal.NewFromString(strings.TrimSpace(cachedBalance))
	if err != nil {
		return &ValidationError{Reason: "balance unavailable, refresh first"}
	}
	_, total := ComputeFee(req.Principal)
	if total.GreaterThan(bal) {
		return &ValidationError{Reason: "insufficient balance: total " + total.StringFixed(e.decimals) + " exceeds " + bal.StringFixed(e.decimals)}
	}
	return nil
}

// Submit encodes principal and fee into base units, signs an EIP-1559
// transaction invoking transferWithPlatformFee and broadcasts it. The
// returned result is Pending; confirmation is the Tracker's job.
func (e *Engine) Submit(ctx context.Context, req DonationRequest, h session.Handle) (*TransferResult, error) {
	if h == nil {
		return nil, session.ErrNoActiveSession
	}
	fee, total := ComputeFee(req.Principal)
	amountWei := ToBaseUnits(req.Principal, e.decimals)
	feeWei := ToBaseUnits(fee, e.decimals)

	data, err := feeABI.Pack("transferWithPlatformFee", common.HexToAddress(req.Recipient), amountWei, feeWei)
	if err != nil {
		return nil, &SubmissionError{Op: "encode", Err: err}
	}

	from := h.Address()
	nonce, err := e.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, &SubmissionError{Op: "nonce", Err: err}
	}
	head, err := e.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, &SubmissionError{Op: "head", Err: err}
	}
	baseFee := head.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(0)
	}
	tip, err := e.client.SuggestGasTipCap(ctx)
	if err != nil {
		tip = big.NewInt(1_000_000_000) // 1 gwei fallback
	}
	feeCap := new(big.Int).Mul(baseFee, big.NewInt(2))
	feeCap.Add(feeCap, tip)

	msg := ethereum.CallMsg{From: from, To: &e.feeContract, Data: data, Value: big.NewInt(0)}
	gas, err := e.client.EstimateGas(ctx, msg)
	if err != nil {
		if reason := revertReason(err); reason != "" {
			return nil, &SubmissionError{Op: "estimate", Reason: reason, Err: err}
		}
		// fee-routing call moves principal + fee, roughly two transfers
		e.log("estimateGas failed (%v), fallback to 120000", err)
		gas = 120_000
	}
	gas = uint64(float64(gas) * (1.0 + float64(e.bufferPct)/100.0))

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   e.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &e.feeContract,
		Value:     big.NewInt(0),
		Data:      data,
	})
	signed, err := h.SignTx(tx)
	if err != nil {
		return nil, &SubmissionError{Op: "sign", Err: err}
	}
	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return nil, &SubmissionError{Op: "broadcast", Reason: revertReason(err), Err: err}
	}
	e.log("submitted %s: amount=%s fee=%s gas=%d", signed.Hash().Hex(),
		req.Principal.StringFixed(e.decimals), fee.StringFixed(e.decimals), gas)
	return &TransferResult{State: Pending, TxHash: signed.Hash(), Fee: fee, Total: total}, nil
}

// revertReason extracts the "execution reverted..." tail if present, else "".
func revertReason(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if i := strings.Index(s, "execution reverted"); i >= 0 {
		return s[i:]
	}
	return ""
}
