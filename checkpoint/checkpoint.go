// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoint defines the checkpoint storage collaborator surface
// consumed by the bond pool, plus an in-process store implementation.
package checkpoint

import "github.com/selcuktann/kroma/kroma"

// Checkpoint is a periodic commitment of L2 state.
type Checkpoint struct {
	Submitter   kroma.Address
	BlockNumber uint64
	Timestamp   uint64
	Root        kroma.Bytes32
}

// Oracle is the checkpoint storage collaborator as seen by the pool.
type Oracle interface {
	// NextIndex returns the index the next accepted checkpoint will get.
	NextIndex() uint64

	// NextBlockNumber returns the L2 block number the next checkpoint
	// is expected to commit to.
	NextBlockNumber() uint64

	// LatestIndex returns the index of the most recently accepted
	// checkpoint. ok is false when none has been accepted yet.
	LatestIndex() (index uint64, ok bool)

	// Get returns the checkpoint accepted at the given index.
	Get(index uint64) (*Checkpoint, error)
}

// Schedule derives expected submission deadlines from genesis time and the
// fixed L2 block interval.
type Schedule struct {
	GenesisTime   uint64
	BlockInterval uint64
}

// Deadline returns the expected submission deadline of the checkpoint
// committing to the given L2 block number.
func (s Schedule) Deadline(blockNumber uint64) uint64 {
	return s.GenesisTime + blockNumber*s.BlockInterval
}
