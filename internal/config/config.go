package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings keeps all process-level options for the donation pipeline.
// Chain description lives in chaincfg; these are the gateway's own knobs.
type Settings struct {
	TokenAddress    string // stablecoin (USDC) contract
	TokenDecimals   int
	FeeContract     string // fee-routing contract (transferWithPlatformFee)
	WalletKeyHex    string // signing key for the keyed provider
	ConfirmTimeout  time.Duration
	ReceiptInterval time.Duration
	CallRetries     int
	GasBufferPct    int64
	ListenAddr      string // gatewayd only
}

// Load reads settings from environment supporting both UPPER_CASE and lower_case keys.
func Load() Settings {
	get := func(keys []string, def string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				return v
			}
		}
		return def
	}
	getInt := func(keys []string, def int) int {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
		return def
	}
	getInt64 := func(keys []string, def int64) int64 {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}
		return def
	}

	st := Settings{}
	st.TokenAddress = get([]string{"usdc_contract", "USDC_CONTRACT"}, "0x41e94eb019c0762f9bfcf9fb1e58725bfb0e7582")
	st.TokenDecimals = getInt([]string{"token_decimals", "TOKEN_DECIMALS"}, 6)
	st.FeeContract = get([]string{"fee_contract", "FEE_CONTRACT"}, "")
	st.WalletKeyHex = get([]string{"wallet_private_key", "WALLET_PRIVATE_KEY"}, "")
	st.ConfirmTimeout = time.Duration(getInt64([]string{"confirm_timeout_sec", "CONFIRM_TIMEOUT_SEC"}, 180)) * time.Second
	st.ReceiptInterval = time.Duration(getInt64([]string{"receipt_poll_ms", "RECEIPT_POLL_MS"}, 1500)) * time.Millisecond
	st.CallRetries = getInt([]string{"call_retries", "CALL_RETRIES"}, 3)
	st.GasBufferPct = getInt64([]string{"gas_buffer_pct", "GAS_BUFFER_PCT"}, 15)
	st.ListenAddr = get([]string{"listen_addr", "LISTEN_ADDR"}, ":8080")

	return st
}
