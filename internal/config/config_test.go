package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	st := Load()
	assert.Equal(t, 6, st.TokenDecimals)
	assert.Equal(t, 3*time.Minute, st.ConfirmTimeout)
	assert.Equal(t, 1500*time.Millisecond, st.ReceiptInterval)
	assert.Equal(t, 3, st.CallRetries)
	assert.Equal(t, int64(15), st.GasBufferPct)
	assert.Equal(t, ":8080", st.ListenAddr)
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("CONFIRM_TIMEOUT_SEC", "60")
	t.Setenv("TOKEN_DECIMALS", "not-a-number")
	t.Setenv("FEE_CONTRACT", "0x2222222222222222222222222222222222222222")
	st := Load()
	assert.Equal(t, time.Minute, st.ConfirmTimeout)
	assert.Equal(t, 6, st.TokenDecimals, "bad value falls back to default")
	assert.Equal(t, "0x2222222222222222222222222222222222222222", st.FeeContract)
}

func TestLowercaseKeysWin(t *testing.T) {
	t.Setenv("listen_addr", ":9090")
	st := Load()
	assert.Equal(t, ":9090", st.ListenAddr)
}
