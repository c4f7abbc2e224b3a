// Package session owns the lifecycle of the authenticated signing session.
// Everything downstream (account reads, transfer submission) receives a
// Handle from the Manager per operation and must never cache it across a
// login/logout boundary.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// State is the manager's lifecycle position.
type State int

const (
	Uninitialized State = iota
	Ready
	Connected
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Connected:
		return "connected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Handle is the signing capability handed to downstream components.
type Handle interface {
	Address() common.Address
	SignTx(tx *types.Transaction) (*types.Transaction, error)
}

// Provider is the external wallet/auth SDK boundary. Implementations drive
// the actual login flow; the Manager only sequences it.
type Provider interface {
	// Setup prepares the provider. Called exactly once per Manager.
	Setup(ctx context.Context) error
	// Connect runs the auth flow and returns a usable signing handle.
	Connect(ctx context.Context) (Handle, error)
	// Logout tears the provider session down.
	Logout(ctx context.Context) error
	Connected() bool
}

// ErrNoActiveSession is returned when a signing handle is requested and
// nobody is logged in.
var ErrNoActiveSession = errors.New("no active session")

// InitializationError wraps a failed provider setup.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string { return "session init: " + e.Err.Error() }
func (e *InitializationError) Unwrap() error { return e.Err }

// AuthenticationError wraps a rejected or abandoned login.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string { return "authentication: " + e.Err.Error() }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// Manager is the single owner of session state. Transitions are serialized
// by the internal mutex; Uninitialized -> Ready -> Connected -> Ready.
type Manager struct {
	mu       sync.Mutex
	provider Provider
	state    State
	handle   Handle
}

func NewManager(p Provider) *Manager {
	return &Manager{provider: p}
}

// Initialize performs the one-time provider setup. A second call on an
// already initialized manager is a no-op.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Uninitialized {
		return nil
	}
	if err := m.provider.Setup(ctx); err != nil {
		return &InitializationError{Err: err}
	}
	m.state = Ready
	return nil
}

// Connect runs the login flow. Calling while already connected returns the
// existing handle without re-prompting. A failed or abandoned login leaves
// the manager in Ready with no partial handle retained.
func (m *Manager) Connect(ctx context.Context) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Uninitialized:
		return nil, &AuthenticationError{Err: errors.New("session not initialized")}
	case Connected:
		return m.handle, nil
	}
	h, err := m.provider.Connect(ctx)
	if err != nil {
		m.handle = nil
		return nil, &AuthenticationError{Err: err}
	}
	if h == nil {
		return nil, &AuthenticationError{Err: errors.New("provider returned no handle")}
	}
	m.handle = h
	m.state = Connected
	return h, nil
}

// Disconnect tears the session down. Safe to call when not connected.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Connected {
		return nil
	}
	err := m.provider.Logout(ctx)
	m.handle = nil
	m.state = Ready
	return err
}

// Handle returns the current signing handle or ErrNoActiveSession.
func (m *Manager) Handle() (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Connected || m.handle == nil {
		return nil, ErrNoActiveSession
	}
	return m.handle, nil
}

func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Connected
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
