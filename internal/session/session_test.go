package session

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct{ addr common.Address }

func (h *stubHandle) Address() common.Address { return h.addr }

func (h *stubHandle) SignTx(tx *types.Transaction) (*types.Transaction, error) { return tx, nil }

type stubProvider struct {
	setupErr    error
	connectErr  error // consumed by the next Connect, then cleared
	connected   bool
	setupCalls  int
	promptCalls int
}

func (p *stubProvider) Setup(ctx context.Context) error {
	p.setupCalls++
	return p.setupErr
}

func (p *stubProvider) Connect(ctx context.Context) (Handle, error) {
	p.promptCalls++
	if p.connectErr != nil {
		err := p.connectErr
		p.connectErr = nil
		return nil, err
	}
	p.connected = true
	return &stubHandle{addr: common.HexToAddress("0x4444444444444444444444444444444444444444")}, nil
}

func (p *stubProvider) Logout(ctx context.Context) error {
	p.connected = false
	return nil
}

func (p *stubProvider) Connected() bool { return p.connected }

func TestInitializeFailure(t *testing.T) {
	p := &stubProvider{setupErr: errors.New("modal could not be constructed")}
	m := NewManager(p)

	err := m.Initialize(context.Background())
	var iErr *InitializationError
	require.ErrorAs(t, err, &iErr)
	assert.Equal(t, Uninitialized, m.State())
}

func TestInitializeOnce(t *testing.T) {
	p := &stubProvider{}
	m := NewManager(p)

	require.NoError(t, m.Initialize(context.Background()))
	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, 1, p.setupCalls)
	assert.Equal(t, Ready, m.State())
}

func TestConnectBeforeInitialize(t *testing.T) {
	m := NewManager(&stubProvider{})
	_, err := m.Connect(context.Background())
	var aErr *AuthenticationError
	require.ErrorAs(t, err, &aErr)
}

func TestConnectIsIdempotentWhileConnected(t *testing.T) {
	p := &stubProvider{}
	m := NewManager(p)
	require.NoError(t, m.Initialize(context.Background()))

	h1, err := m.Connect(context.Background())
	require.NoError(t, err)
	h2, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, 1, p.promptCalls, "second connect must not re-prompt")
}

func TestSessionRoundTrip(t *testing.T) {
	p := &stubProvider{}
	m := NewManager(p)
	require.NoError(t, m.Initialize(context.Background()))

	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, m.Connected())

	require.NoError(t, m.Disconnect(context.Background()))
	assert.Equal(t, Ready, m.State())

	_, err = m.Handle()
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestDisconnectWhenNotConnected(t *testing.T) {
	m := NewManager(&stubProvider{})
	assert.NoError(t, m.Disconnect(context.Background()))
	require.NoError(t, m.Initialize(context.Background()))
	assert.NoError(t, m.Disconnect(context.Background()))
}

func TestAbandonedConnectLeavesReady(t *testing.T) {
	p := &stubProvider{connectErr: errors.New("user closed the modal")}
	m := NewManager(p)
	require.NoError(t, m.Initialize(context.Background()))

	_, err := m.Connect(context.Background())
	var aErr *AuthenticationError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, Ready, m.State())
	_, err = m.Handle()
	assert.ErrorIs(t, err, ErrNoActiveSession)

	// retry succeeds without re-initializing
	h, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Equal(t, Connected, m.State())
	assert.Equal(t, 1, p.setupCalls)
}
