// Package gateway coordinates the donation pipeline: one owner for session
// state, the cached account snapshot and the in-flight transfer guard.
// Every UI surface (CLI, GUI, HTTP) calls this and nothing else, so
// overlapping triggers are serialized instead of racing.
package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/pennyfund/donate-gateway/internal/donate"
	"github.com/pennyfund/donate-gateway/internal/session"
)

// ErrTransferInFlight rejects a second submission while one is pending.
// Overlapping submissions would race on the nonce and confuse the user into
// a double transfer.
var ErrTransferInFlight = errors.New("a transfer is already in flight")

// Account is the derived, non-authoritative snapshot. Stale until refreshed
// after any session or balance-affecting event.
type Account struct {
	Address      string
	TokenBalance string
}

// AccountResolver is the read side of the pipeline.
type AccountResolver interface {
	ResolveAddress(h session.Handle) (string, error)
	ResolveBalance(ctx context.Context, h session.Handle) (string, error)
}

// TransferEngine validates and submits fee-inclusive transfers.
type TransferEngine interface {
	Validate(req donate.DonationRequest, cachedBalance string) error
	Submit(ctx context.Context, req donate.DonationRequest, h session.Handle) (*donate.TransferResult, error)
}

// ConfirmationTracker awaits a terminal on-chain state.
type ConfirmationTracker interface {
	AwaitConfirmation(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Coordinator wires the session manager, resolver, engine and tracker. The
// provider handle is re-fetched from the manager inside every operation and
// never cached across a login/logout boundary.
type Coordinator struct {
	sessions *session.Manager
	resolver AccountResolver
	engine   TransferEngine
	tracker  ConfirmationTracker
	log      zerolog.Logger

	guard  chan struct{} // size-1 gate: one transfer in flight
	acctMu sync.Mutex
	acct   Account
}

func New(sessions *session.Manager, resolver AccountResolver, engine TransferEngine, tracker ConfirmationTracker, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		sessions: sessions,
		resolver: resolver,
		engine:   engine,
		tracker:  tracker,
		log:      log,
		guard:    make(chan struct{}, 1),
	}
}

// Initialize performs the one-time session setup.
func (c *Coordinator) Initialize(ctx context.Context) error {
	if err := c.sessions.Initialize(ctx); err != nil {
		c.log.Error().Err(err).Msg("session init failed")
		return err
	}
	c.log.Info().Msg("session manager ready")
	return nil
}

// Login connects and refreshes the account snapshot before reporting
// success, so the caller never enables the transfer action against a blank
// balance. A failed login leaves the snapshot empty and the state Ready.
func (c *Coordinator) Login(ctx context.Context) (Account, error) {
	h, err := c.sessions.Connect(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("login rejected")
		return Account{}, err
	}
	if err := c.refresh(ctx, h); err != nil {
		// connected, but the snapshot could not be derived; surface it so
		// the UI shows an error state instead of a stale balance
		return Account{}, err
	}
	acct := c.Account()
	c.log.Info().Str("address", acct.Address).Msg("logged in")
	return acct, nil
}

// Logout tears the session down and clears all cached account data.
func (c *Coordinator) Logout(ctx context.Context) error {
	err := c.sessions.Disconnect(ctx)
	c.acctMu.Lock()
	c.acct = Account{}
	c.acctMu.Unlock()
	c.log.Info().Msg("logged out")
	return err
}

// Refresh re-derives the account snapshot from the current session.
func (c *Coordinator) Refresh(ctx context.Context) error {
	h, err := c.sessions.Handle()
	if err != nil {
		return err
	}
	return c.refresh(ctx, h)
}

func (c *Coordinator) refresh(ctx context.Context, h session.Handle) error {
	addr, err := c.resolver.ResolveAddress(h)
	if err != nil {
		return err
	}
	bal, err := c.resolver.ResolveBalance(ctx, h)
	if err != nil {
		c.log.Warn().Err(err).Msg("balance refresh failed")
		return err
	}
	c.acctMu.Lock()
	c.acct = Account{Address: addr, TokenBalance: bal}
	c.acctMu.Unlock()
	return nil
}

// Account returns the cached snapshot. Empty until a login refresh lands.
func (c *Coordinator) Account() Account {
	c.acctMu.Lock()
	defer c.acctMu.Unlock()
	return c.acct
}

func (c *Coordinator) Connected() bool { return c.sessions.Connected() }

// Donate runs the full pipeline: validate against the cached balance,
// submit, await confirmation, then refresh the snapshot exactly once.
// Only one donation may be in flight; a concurrent call fails fast with
// ErrTransferInFlight rather than queueing.
func (c *Coordinator) Donate(ctx context.Context, req donate.DonationRequest) (*donate.TransferResult, error) {
	select {
	case c.guard <- struct{}{}:
	default:
		return nil, ErrTransferInFlight
	}
	defer func() { <-c.guard }()

	h, err := c.sessions.Handle()
	if err != nil {
		return nil, err
	}
	if err := c.engine.Validate(req, c.Account().TokenBalance); err != nil {
		return nil, err
	}
	res, err := c.engine.Submit(ctx, req, h)
	if err != nil {
		c.log.Warn().Err(err).Msg("submission failed")
		return nil, err
	}
	c.log.Info().Str("tx", res.TxHash.Hex()).Msg("transfer pending")

	if _, err := c.tracker.AwaitConfirmation(ctx, res.TxHash); err != nil {
		res.State = donate.Failed
		res.Reason = err.Error()
		c.log.Warn().Err(err).Str("tx", res.TxHash.Hex()).Msg("transfer failed")
		return res, err
	}
	res.State = donate.Confirmed
	c.log.Info().Str("tx", res.TxHash.Hex()).Msg("transfer confirmed")

	// exactly one refresh per confirmed transfer; a refresh failure does
	// not demote the confirmed result, the snapshot just stays stale
	if err := c.refresh(ctx, h); err != nil {
		c.log.Warn().Err(err).Msg("post-confirmation refresh failed")
	}
	return res, nil
}
