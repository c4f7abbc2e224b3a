package session

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// KeyedProvider signs with a local hex private key. It stands in for the
// hosted wallet SDK in non-interactive deployments and in tests.
type KeyedProvider struct {
	mu        sync.Mutex
	keyHex    string
	chainID   *big.Int
	key       *ecdsa.PrivateKey
	connected bool
}

func NewKeyedProvider(keyHex string, chainID *big.Int) *KeyedProvider {
	return &KeyedProvider{keyHex: keyHex, chainID: chainID}
}

func (p *KeyedProvider) Setup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := strings.TrimPrefix(strings.TrimSpace(p.keyHex), "0x")
	if h == "" {
		return errors.New("wallet private key is empty")
	}
	if p.chainID == nil || p.chainID.Sign() <= 0 {
		return errors.New("chain id is not set")
	}
	key, err := gethcrypto.HexToECDSA(h)
	if err != nil {
		return err
	}
	p.key = key
	return nil
}

func (p *KeyedProvider) Connect(ctx context.Context) (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key == nil {
		return nil, errors.New("provider not set up")
	}
	p.connected = true
	return &keyedHandle{
		key:    p.key,
		addr:   gethcrypto.PubkeyToAddress(p.key.PublicKey),
		signer: types.LatestSignerForChainID(p.chainID),
	}, nil
}

func (p *KeyedProvider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	return nil
}

func (p *KeyedProvider) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

type keyedHandle struct {
	key    *ecdsa.PrivateKey
	addr   common.Address
	signer types.Signer
}

func (h *keyedHandle) Address() common.Address { return h.addr }

func (h *keyedHandle) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, h.signer, h.key)
}
