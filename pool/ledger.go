// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/state"
)

var (
	countKey   = kroma.Blake2b([]byte("validator-count"))
	pointerKey = kroma.Blake2b([]byte("rotation-pointer"))
)

func balanceKey(addr kroma.Address) kroma.Bytes32 {
	return kroma.BytesToBytes32(append([]byte("b"), addr.Bytes()...))
}

// positionKey stores 1-based positions; zero means not in the set.
func positionKey(addr kroma.Address) kroma.Bytes32 {
	return kroma.BytesToBytes32(append([]byte("p"), addr.Bytes()...))
}

func validatorKey(position uint64) kroma.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], position)
	return kroma.BytesToBytes32(append([]byte("v"), b[:]...))
}

// ledger tracks staked balances and derives the eligible validator set from
// them. The set is kept as a dense array plus a position index, so membership
// checks, appends and swap-removals are all O(1).
type ledger struct {
	addr    kroma.Address
	state   *state.State
	minBond *big.Int
}

func newLedger(addr kroma.Address, st *state.State, minBond *big.Int) *ledger {
	return &ledger{addr, st, minBond}
}

func (l *ledger) getUint64(key kroma.Bytes32) (uint64, error) {
	var v uint64
	err := l.state.DecodeStorage(l.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			v = 0
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	return v, err
}

func (l *ledger) setUint64(key kroma.Bytes32, v uint64) error {
	return l.state.EncodeStorage(l.addr, key, func() ([]byte, error) {
		if v == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(v)
	})
}

func (l *ledger) getAddress(key kroma.Bytes32) (kroma.Address, error) {
	var addr kroma.Address
	err := l.state.DecodeStorage(l.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			addr = kroma.Address{}
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return addr, err
}

func (l *ledger) setAddress(key kroma.Bytes32, addr kroma.Address, exists bool) error {
	return l.state.EncodeStorage(l.addr, key, func() ([]byte, error) {
		if !exists {
			return nil, nil
		}
		return rlp.EncodeToBytes(&addr)
	})
}

// balance returns the staked balance of addr. Absent accounts read as zero.
func (l *ledger) balance(addr kroma.Address) (*big.Int, error) {
	v := new(big.Int)
	err := l.state.DecodeStorage(l.addr, balanceKey(addr), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, v)
	})
	return v, err
}

func (l *ledger) setBalance(addr kroma.Address, balance *big.Int) error {
	return l.state.EncodeStorage(l.addr, balanceKey(addr), func() ([]byte, error) {
		if balance.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(balance)
	})
}

// credit adds amount to addr's staked balance and updates set membership.
func (l *ledger) credit(addr kroma.Address, amount *big.Int) error {
	balance, err := l.balance(addr)
	if err != nil {
		return err
	}
	balance.Add(balance, amount)
	if err := l.setBalance(addr, balance); err != nil {
		return err
	}
	return l.syncMembership(addr, balance)
}

// debit subtracts amount from addr's staked balance and updates set
// membership. ErrInsufficientFunds if the balance would go negative.
func (l *ledger) debit(addr kroma.Address, amount *big.Int) error {
	balance, err := l.balance(addr)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errors.WithMessagef(ErrInsufficientFunds, "balance %v, want %v", balance, amount)
	}
	balance.Sub(balance, amount)
	if err := l.setBalance(addr, balance); err != nil {
		return err
	}
	return l.syncMembership(addr, balance)
}

// syncMembership reconciles set membership with the eligibility rule:
// a validator is exactly an account whose staked balance reaches minBond.
func (l *ledger) syncMembership(addr kroma.Address, balance *big.Int) error {
	pos, err := l.getUint64(positionKey(addr))
	if err != nil {
		return err
	}
	eligible := balance.Cmp(l.minBond) >= 0

	switch {
	case eligible && pos == 0:
		return l.append(addr)
	case !eligible && pos != 0:
		return l.remove(addr, pos-1)
	default:
		return nil
	}
}

// append puts addr at the tail of the set. Re-entering validators start a
// fresh wait for their turn.
func (l *ledger) append(addr kroma.Address) error {
	count, err := l.count()
	if err != nil {
		return err
	}
	if err := l.setAddress(validatorKey(count), addr, true); err != nil {
		return err
	}
	if err := l.setUint64(positionKey(addr), count+1); err != nil {
		return err
	}
	return l.setUint64(countKey, count+1)
}

// remove deletes addr from the set by swapping the last element into its
// slot, so positions of everyone else stay put.
func (l *ledger) remove(addr kroma.Address, pos uint64) error {
	count, err := l.count()
	if err != nil {
		return err
	}
	last := count - 1
	if pos != last {
		moved, err := l.getAddress(validatorKey(last))
		if err != nil {
			return err
		}
		if err := l.setAddress(validatorKey(pos), moved, true); err != nil {
			return err
		}
		if err := l.setUint64(positionKey(moved), pos+1); err != nil {
			return err
		}
	}
	if err := l.setAddress(validatorKey(last), kroma.Address{}, false); err != nil {
		return err
	}
	if err := l.setUint64(positionKey(addr), 0); err != nil {
		return err
	}
	return l.setUint64(countKey, last)
}

func (l *ledger) isValidator(addr kroma.Address) (bool, error) {
	pos, err := l.getUint64(positionKey(addr))
	if err != nil {
		return false, err
	}
	return pos != 0, nil
}

func (l *ledger) count() (uint64, error) {
	return l.getUint64(countKey)
}

// validators returns the set in position order.
func (l *ledger) validators() ([]kroma.Address, error) {
	count, err := l.count()
	if err != nil {
		return nil, err
	}
	set := make([]kroma.Address, 0, count)
	for i := uint64(0); i < count; i++ {
		addr, err := l.getAddress(validatorKey(i))
		if err != nil {
			return nil, err
		}
		set = append(set, addr)
	}
	return set, nil
}

// pointer returns the stored rotation pointer. It is not reduced modulo the
// set size here; readers do that at lookup time.
func (l *ledger) pointer() (uint64, error) {
	return l.getUint64(pointerKey)
}

func (l *ledger) setPointer(v uint64) error {
	return l.setUint64(pointerKey, v)
}
