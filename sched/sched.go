// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sched decides which validator is on turn for the next checkpoint
// submission window, and how late submissions translate into penalties.
package sched

import "github.com/selcuktann/kroma/kroma"

// Assignment is the result of asking who may submit the next checkpoint.
// When PublicRound is set no specific validator is on turn and any address
// may submit.
type Assignment struct {
	Validator   kroma.Address
	PublicRound bool
}

// Scheduler maps a point in time onto the validator responsible for the
// current submission window. It is a pure value; the mutable rotation
// pointer lives in pool state.
type Scheduler struct {
	validators    []kroma.Address
	pointer       uint64
	deadline      uint64
	roundDuration uint64
}

// New creates a Scheduler.
// `validators` is the ordered validator set, `pointer` the stored rotation
// pointer, `deadline` the expected deadline of the next checkpoint and
// `roundDuration` the length of one full submission round.
func New(validators []kroma.Address, pointer, deadline, roundDuration uint64) *Scheduler {
	return &Scheduler{
		validators,
		pointer,
		deadline,
		roundDuration,
	}
}

// Assignee returns the assignment for time `now`.
// A full round elapsed past the deadline, or an empty validator set, yields
// the public round.
func (s *Scheduler) Assignee(now uint64) Assignment {
	if len(s.validators) == 0 {
		return Assignment{PublicRound: true}
	}
	if now > s.deadline+s.roundDuration {
		return Assignment{PublicRound: true}
	}
	// the pointer may exceed the set size after removals, wrap on read
	index := s.pointer % uint64(len(s.validators))
	return Assignment{Validator: s.validators[index]}
}

// NextPointer returns the rotation pointer value after a checkpoint has been
// accepted for the current turn. The pointer advances on acceptance only,
// never on mere time passage.
func NextPointer(pointer, setSize uint64) uint64 {
	if setSize == 0 {
		return 0
	}
	return (pointer + 1) % setSize
}
