// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"

	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/state"
)

func M(a ...any) []any {
	return a
}

func TestBalance(t *testing.T) {
	st := state.New()
	addr := kroma.BytesToAddress([]byte("a1"))

	assert.Equal(t, M(new(big.Int), nil), M(st.GetBalance(addr)))

	assert.Nil(t, st.SetBalance(addr, big.NewInt(100)))
	assert.Equal(t, M(big.NewInt(100), nil), M(st.GetBalance(addr)))

	// the stored value must not alias the caller's big.Int
	v := big.NewInt(7)
	assert.Nil(t, st.SetBalance(addr, v))
	v.SetInt64(8)
	assert.Equal(t, M(big.NewInt(7), nil), M(st.GetBalance(addr)))
}

func TestStorage(t *testing.T) {
	st := state.New()
	addr := kroma.BytesToAddress([]byte("c1"))
	key := kroma.Blake2b([]byte("k1"))

	var got string
	assert.Nil(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		assert.Zero(t, len(raw))
		return nil
	}))

	assert.Nil(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes("value")
	}))
	assert.Nil(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, "value", got)
}

func TestRevert(t *testing.T) {
	st := state.New()
	addr := kroma.BytesToAddress([]byte("a1"))
	key := kroma.Blake2b([]byte("k1"))

	assert.Nil(t, st.SetBalance(addr, big.NewInt(10)))

	rev := st.NewCheckpoint()
	assert.Nil(t, st.SetBalance(addr, big.NewInt(20)))
	st.SetRawStorage(addr, key, rlp.RawValue{0x01})

	st.RevertTo(rev)
	assert.Equal(t, M(big.NewInt(10), nil), M(st.GetBalance(addr)))
	assert.Equal(t, M(rlp.RawValue(nil), nil), M(st.GetRawStorage(addr, key)))
}

func TestNestedCheckpoint(t *testing.T) {
	st := state.New()
	addr := kroma.BytesToAddress([]byte("a1"))

	rev0 := st.NewCheckpoint()
	assert.Nil(t, st.SetBalance(addr, big.NewInt(1)))

	rev1 := st.NewCheckpoint()
	assert.Nil(t, st.SetBalance(addr, big.NewInt(2)))

	st.RevertTo(rev1)
	assert.Equal(t, M(big.NewInt(1), nil), M(st.GetBalance(addr)))

	st.RevertTo(rev0)
	assert.Equal(t, M(new(big.Int), nil), M(st.GetBalance(addr)))
}
