// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kroma

import "math/big"

// Constants of the rollup.
const (
	// L2BlockInterval time interval between two consecutive L2 blocks, in seconds.
	L2BlockInterval uint64 = 2

	// DefaultSubmissionInterval number of L2 blocks between two consecutive checkpoints.
	DefaultSubmissionInterval uint64 = 1800

	// DefaultNonPenaltyPeriod grace window after a checkpoint deadline before penalties accrue, in seconds.
	DefaultNonPenaltyPeriod uint64 = 1200

	// DefaultPenaltyPeriod window during which penalties grow linearly, in seconds.
	DefaultPenaltyPeriod uint64 = 2400

	// DefaultFinalizationPeriod time until a submitted checkpoint's bond can be released, in seconds.
	DefaultFinalizationPeriod uint64 = 7 * 24 * 3600
)

// DefaultMinBondAmount minimum stake required to join the validator set.
var DefaultMinBondAmount = new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))

// Well-known component addresses, derived from names.
var (
	// ValidatorPoolAddress storage root of the bond pool state.
	ValidatorPoolAddress = BytesToAddress([]byte("ValidatorPool"))

	// CheckpointOracleAddress identity of the checkpoint storage collaborator.
	CheckpointOracleAddress = BytesToAddress([]byte("CheckpointOracle"))

	// DisputeAddress identity of the dispute/challenge collaborator.
	DisputeAddress = BytesToAddress([]byte("Colosseum"))

	// ValidatorRewardAddress cross-layer recipient of reward notifications.
	ValidatorRewardAddress = BytesToAddress([]byte("ValidatorReward"))

	// PublicRoundAddress sentinel presented to callers when no validator is on turn.
	PublicRoundAddress = MustParseAddress("0x0000000000000000000000000000000000000006")
)
