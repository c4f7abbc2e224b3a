package chaincfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonAmoyDefaults(t *testing.T) {
	n := PolygonAmoy()
	assert.Equal(t, "eip155", n.Namespace)
	assert.Equal(t, "0x13882", n.ChainIDHex)
	require.NotNil(t, n.ChainID())
	assert.Equal(t, int64(80002), n.ChainID().Int64())
}

func TestChainIDParsing(t *testing.T) {
	assert.Equal(t, int64(80002), Network{ChainIDHex: "80002"}.ChainID().Int64())
	assert.Equal(t, int64(1), Network{ChainIDHex: "0x1"}.ChainID().Int64())
	assert.Nil(t, Network{ChainIDHex: "zzz"}.ChainID())
	assert.Nil(t, Network{ChainIDHex: ""}.ChainID())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RPC_URL", "http://localhost:8545")
	t.Setenv("CHAIN_ID", "0x1")
	n := Load()
	assert.Equal(t, "http://localhost:8545", n.RPCURL)
	assert.Equal(t, int64(1), n.ChainID().Int64())
	assert.Equal(t, "eip155", n.Namespace)
}
