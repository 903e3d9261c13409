// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sched_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/sched"
)

var (
	v1 = kroma.BytesToAddress([]byte("v1"))
	v2 = kroma.BytesToAddress([]byte("v2"))
	v3 = kroma.BytesToAddress([]byte("v3"))
)

func TestAssignee(t *testing.T) {
	validators := []kroma.Address{v1, v2, v3}
	const (
		deadline = 1000
		round    = 100
	)

	tests := []struct {
		name     string
		pointer  uint64
		now      uint64
		expected sched.Assignment
	}{
		{"on turn at deadline", 0, deadline, sched.Assignment{Validator: v1}},
		{"pointer selects second", 1, deadline, sched.Assignment{Validator: v2}},
		{"pointer wraps past set size", 4, deadline, sched.Assignment{Validator: v2}},
		{"still assigned within one round", 0, deadline + round, sched.Assignment{Validator: v1}},
		{"public once a full round missed", 0, deadline + round + 1, sched.Assignment{PublicRound: true}},
		{"assigned well before deadline", 2, deadline - 500, sched.Assignment{Validator: v3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sched.New(validators, tt.pointer, deadline, round)
			assert.Equal(t, tt.expected, s.Assignee(tt.now))
		})
	}
}

func TestAssigneeEmptySet(t *testing.T) {
	s := sched.New(nil, 0, 1000, 100)
	assert.Equal(t, sched.Assignment{PublicRound: true}, s.Assignee(0))
	assert.Equal(t, sched.Assignment{PublicRound: true}, s.Assignee(2000))
}

func TestNextPointer(t *testing.T) {
	assert.Equal(t, uint64(1), sched.NextPointer(0, 3))
	assert.Equal(t, uint64(0), sched.NextPointer(2, 3))
	assert.Equal(t, uint64(0), sched.NextPointer(5, 1))
	assert.Equal(t, uint64(0), sched.NextPointer(7, 0))
}

func TestPenalty(t *testing.T) {
	const (
		deadline   = 10000
		nonPenalty = 1200
		penalty    = 2400
		round      = nonPenalty + penalty
	)

	tests := []struct {
		name     string
		actual   uint64
		expected uint64
	}{
		{"early submission", deadline - 1, 0},
		{"exactly on deadline", deadline, 0},
		{"within grace window", deadline + nonPenalty, 0},
		{"one past grace", deadline + nonPenalty + 1, 1},
		{"linear growth", deadline + nonPenalty + 1000, 1000},
		{"full penalty period", deadline + round, penalty},
		{"wraparound collapses one round", deadline + round + nonPenalty + 5, 5},
		{"wrapped but still in grace", deadline + round + nonPenalty, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sched.Penalty(tt.actual, deadline, nonPenalty, penalty))
		})
	}
}

func TestRoundDuration(t *testing.T) {
	assert.Equal(t, uint64(3600), sched.RoundDuration(1200, 2400))
}
