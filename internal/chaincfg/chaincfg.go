package chaincfg

import (
	"math/big"
	"os"
	"strings"
)

// Network is a static description of the target chain. Pure data.
type Network struct {
	Namespace   string
	ChainIDHex  string
	RPCURL      string
	DisplayName string
	Ticker      string
	TickerName  string
}

// PolygonAmoy is the default network the gateway targets.
func PolygonAmoy() Network {
	return Network{
		Namespace:   "eip155",
		ChainIDHex:  "0x13882",
		RPCURL:      "https://rpc.ankr.com/polygon_amoy",
		DisplayName: "Polygon Amoy Testnet",
		Ticker:      "MATIC",
		TickerName:  "Matic",
	}
}

// Load returns the default network with environment overrides applied.
func Load() Network {
	n := PolygonAmoy()
	get := func(k, def string) string {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
		return def
	}
	n.Namespace = get("CHAIN_NAMESPACE", n.Namespace)
	n.ChainIDHex = get("CHAIN_ID", n.ChainIDHex)
	n.RPCURL = get("RPC_URL", n.RPCURL)
	n.DisplayName = get("CHAIN_NAME", n.DisplayName)
	n.Ticker = get("CHAIN_TICKER", n.Ticker)
	n.TickerName = get("CHAIN_TICKER_NAME", n.TickerName)
	return n
}

// ChainID parses ChainIDHex ("0x..." or decimal). Returns nil on garbage;
// callers fall back to eth_chainId in that case.
func (n Network) ChainID() *big.Int {
	s := strings.TrimSpace(n.ChainIDHex)
	z := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		z, ok = z.SetString(s[2:], 16)
	} else {
		z, ok = z.SetString(s, 10)
	}
	if !ok {
		return nil
	}
	return z
}
