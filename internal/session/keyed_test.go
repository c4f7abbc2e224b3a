package session

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// well-known throwaway test key
const testKeyHex = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

func TestKeyedProviderSetupValidation(t *testing.T) {
	assert.Error(t, NewKeyedProvider("", big.NewInt(1)).Setup(context.Background()))
	assert.Error(t, NewKeyedProvider("zz", big.NewInt(1)).Setup(context.Background()))
	assert.Error(t, NewKeyedProvider(testKeyHex, nil).Setup(context.Background()))
	assert.NoError(t, NewKeyedProvider(testKeyHex, big.NewInt(80002)).Setup(context.Background()))
}

func TestKeyedProviderSignsForChain(t *testing.T) {
	chainID := big.NewInt(80002)
	p := NewKeyedProvider(testKeyHex, chainID)
	require.NoError(t, p.Setup(context.Background()))

	h, err := p.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Connected())

	key, _ := gethcrypto.HexToECDSA(testKeyHex[2:])
	assert.Equal(t, gethcrypto.PubkeyToAddress(key.PublicKey), h.Address())

	to := h.Address()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
	})
	signed, err := h.SignTx(tx)
	require.NoError(t, err)
	assert.Equal(t, chainID, signed.ChainId())

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, h.Address(), sender)

	require.NoError(t, p.Logout(context.Background()))
	assert.False(t, p.Connected())
}
