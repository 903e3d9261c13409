// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sched

// RoundDuration returns the length of one full submission round.
func RoundDuration(nonPenaltyPeriod, penaltyPeriod uint64) uint64 {
	return nonPenaltyPeriod + penaltyPeriod
}

// Penalty converts the delay of a checkpoint submission into a penalty
// magnitude. `actual` is the time the checkpoint was accepted, `deadline`
// its expected deadline. Validators get a grace window of
// `nonPenaltyPeriod` past the deadline; beyond it the penalty grows
// linearly. At most one full round of wraparound is collapsed, since past
// that point the public round has taken over.
func Penalty(actual, deadline, nonPenaltyPeriod, penaltyPeriod uint64) uint64 {
	if actual <= deadline {
		return 0
	}
	elapsed := actual - deadline
	if round := RoundDuration(nonPenaltyPeriod, penaltyPeriod); elapsed > round {
		elapsed -= round
	}
	if elapsed <= nonPenaltyPeriod {
		return 0
	}
	return elapsed - nonPenaltyPeriod
}
