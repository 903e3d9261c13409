// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/state"
)

var (
	nextReleaseKey = kroma.Blake2b([]byte("next-release-index"))
	nextCreateKey  = kroma.Blake2b([]byte("next-create-index"))
)

func bondKey(index uint64) kroma.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return kroma.BytesToBytes32(append([]byte("d"), b[:]...))
}

// Bond is the stake locked behind an accepted checkpoint, keyed by the
// checkpoint's index.
type Bond struct {
	Amount    *big.Int
	ExpiresAt uint64
	Submitter kroma.Address
}

// IsEmpty returns whether the bond record is absent.
func (b *Bond) IsEmpty() bool {
	return b.Amount == nil
}

// registry stores bond records. Bonds are created at consecutive checkpoint
// indices and released in the same order, so the live bonds are exactly the
// interval [nextReleaseIndex, nextCreateIndex).
type registry struct {
	addr  kroma.Address
	state *state.State
}

func newRegistry(addr kroma.Address, st *state.State) *registry {
	return &registry{addr, st}
}

func (r *registry) get(index uint64) (*Bond, error) {
	var bond Bond
	err := r.state.DecodeStorage(r.addr, bondKey(index), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &bond)
	})
	if err != nil {
		return nil, err
	}
	return &bond, nil
}

// set stores a bond record. A nil bond deletes the record.
func (r *registry) set(index uint64, bond *Bond) error {
	return r.state.EncodeStorage(r.addr, bondKey(index), func() ([]byte, error) {
		if bond == nil {
			return nil, nil
		}
		return rlp.EncodeToBytes(bond)
	})
}

// nextReleaseIndex returns the index of the oldest bond not yet released.
func (r *registry) nextReleaseIndex() (uint64, error) {
	var v uint64
	err := r.state.DecodeStorage(r.addr, nextReleaseKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	return v, err
}

func (r *registry) setNextReleaseIndex(v uint64) error {
	return r.state.EncodeStorage(r.addr, nextReleaseKey, func() ([]byte, error) {
		if v == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(v)
	})
}

// nextCreateIndex returns the checkpoint index the next bond must target.
func (r *registry) nextCreateIndex() (uint64, error) {
	var v uint64
	err := r.state.DecodeStorage(r.addr, nextCreateKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	return v, err
}

func (r *registry) setNextCreateIndex(v uint64) error {
	return r.state.EncodeStorage(r.addr, nextCreateKey, func() ([]byte, error) {
		if v == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(v)
	})
}
