// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/event"

	"github.com/selcuktann/kroma/kroma"
)

// BondEventKind tags the lifecycle transition a BondEvent reports.
type BondEventKind byte

const (
	BondCreated BondEventKind = iota
	BondIncreased
	BondReleased
)

func (k BondEventKind) String() string {
	switch k {
	case BondCreated:
		return "created"
	case BondIncreased:
		return "increased"
	case BondReleased:
		return "released"
	default:
		return "unknown"
	}
}

// BondEvent reports a bond lifecycle transition. Events are published only
// after the whole operation committed.
type BondEvent struct {
	Kind            BondEventKind
	CheckpointIndex uint64

	// Party is the submitter for created and released events, the
	// challenger for increased events.
	Party kroma.Address

	// Amount is the bonded amount for created events, the added amount
	// for increased events, the returned principal for released events.
	Amount *big.Int

	// ExpiresAt is set on created events only.
	ExpiresAt uint64

	// Penalty is set on released events only.
	Penalty uint64
}

// SubscribeBondEvent registers a subscriber for bond lifecycle events.
func (p *Pool) SubscribeBondEvent(ch chan *BondEvent) event.Subscription {
	return p.scope.Track(p.bondFeed.Subscribe(ch))
}
