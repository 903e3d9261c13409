// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/selcuktann/kroma/kroma"
)

func math256(v *big.Int) math.HexOrDecimal256 {
	return math.HexOrDecimal256(*v)
}

// Balance is the staked balance of an account.
type Balance struct {
	Balance math.HexOrDecimal256 `json:"balance"`
}

// ValidatorSet is the eligible validator set in rotation order.
type ValidatorSet struct {
	Validators []kroma.Address `json:"validators"`
	Count      uint64          `json:"count"`
}

// NextValidator reports who may submit the next checkpoint. During a public
// round Validator holds the configured public round sentinel address.
type NextValidator struct {
	Validator   kroma.Address `json:"validator"`
	PublicRound bool          `json:"publicRound"`
	Now         uint64        `json:"now"`
}

// Bond is a live bond record.
type Bond struct {
	CheckpointIndex uint64               `json:"checkpointIndex"`
	Amount          math.HexOrDecimal256 `json:"amount"`
	ExpiresAt       uint64               `json:"expiresAt"`
	Submitter       kroma.Address        `json:"submitter"`
}
