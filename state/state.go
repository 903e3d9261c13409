// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides the owned, journaled state the pool components
// program against. All mutations go through a stacked map, so an entry
// point can snapshot the state and revert every change on failure.
package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/stackedmap"
)

type (
	balanceKey kroma.Address

	storageKey struct {
		addr kroma.Address
		key  kroma.Bytes32
	}
)

// State manages account balances and per-component structured storage.
type State struct {
	sm *stackedmap.StackedMap
}

// New creates an empty state.
func New() *State {
	sm := stackedmap.New(func(_ any) (any, bool, error) {
		return nil, false, nil
	})
	// base layer, never popped
	sm.Push()
	return &State{sm}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// GetBalance returns unstaked balance of an account.
func (s *State) GetBalance(addr kroma.Address) (*big.Int, error) {
	v, ok, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, err
	}
	if !ok {
		return new(big.Int), nil
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

// SetBalance sets unstaked balance of an account.
func (s *State) SetBalance(addr kroma.Address, balance *big.Int) error {
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
	return nil
}

// GetRawStorage returns raw storage of the given key.
func (s *State) GetRawStorage(addr kroma.Address, key kroma.Bytes32) (rlp.RawValue, error) {
	v, ok, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage sets raw storage for the given key.
// An empty raw deletes the entry.
func (s *State) SetRawStorage(addr kroma.Address, key kroma.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage sets storage to the encoded value of the given key.
// The empty encoded value deletes the entry.
func (s *State) EncodeStorage(addr kroma.Address, key kroma.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage decodes the stored value of the given key.
// The decoder always runs; an absent entry is presented as empty raw.
func (s *State) DecodeStorage(addr kroma.Address, key kroma.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}
