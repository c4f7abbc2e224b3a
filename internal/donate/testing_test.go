package donate

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// fakeHandle is a signing handle that returns transactions unsigned; the
// engine only needs a stable hash and an address.
type fakeHandle struct {
	addr common.Address
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{addr: common.HexToAddress("0x3333333333333333333333333333333333333333")}
}

func (h *fakeHandle) Address() common.Address { return h.addr }

func (h *fakeHandle) SignTx(tx *types.Transaction) (*types.Transaction, error) { return tx, nil }
