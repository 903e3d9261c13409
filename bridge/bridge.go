// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bridge forwards reward notifications across the cross-layer
// message portal. Delivery is fire-and-forget: the engine never awaits an
// acknowledgement from the other layer.
package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/log"
)

var logger = log.WithContext("pkg", "bridge")

// RewardGasLimit gas forwarded with a reward notification message.
const RewardGasLimit uint64 = 100_000

// Portal is the cross-layer messenger.
type Portal interface {
	Send(to kroma.Address, gasLimit uint64, data []byte) error
}

var rewardArgs abi.Arguments

func init() {
	addressTy, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	rewardArgs = abi.Arguments{
		{Name: "beneficiary", Type: addressTy},
		{Name: "l2BlockNumber", Type: uint256Ty},
		{Name: "penalty", Type: uint256Ty},
		{Name: "penaltyPeriod", Type: uint256Ty},
	}
}

// rewardSelector is the 4-byte selector of the reward distribution call.
var rewardSelector = kroma.Keccak256([]byte("reward(address,uint256,uint256,uint256)")).Bytes()[:4]

// RewardNotifier packages reward notifications and forwards them to the
// reward distribution contract on the other layer.
type RewardNotifier struct {
	portal    Portal
	recipient kroma.Address
}

// NewRewardNotifier creates a notifier sending to `recipient` through `portal`.
func NewRewardNotifier(portal Portal, recipient kroma.Address) *RewardNotifier {
	return &RewardNotifier{
		portal:    portal,
		recipient: recipient,
	}
}

// NotifyReward forwards (beneficiary, checkpoint block number, penalty,
// penalty period) to the reward distribution contract.
func (n *RewardNotifier) NotifyReward(beneficiary kroma.Address, l2BlockNumber, penalty, penaltyPeriod uint64) error {
	packed, err := rewardArgs.Pack(
		common.Address(beneficiary),
		new(big.Int).SetUint64(l2BlockNumber),
		new(big.Int).SetUint64(penalty),
		new(big.Int).SetUint64(penaltyPeriod),
	)
	if err != nil {
		return errors.WithMessage(err, "pack reward notification")
	}

	data := make([]byte, 0, len(rewardSelector)+len(packed))
	data = append(data, rewardSelector...)
	data = append(data, packed...)

	if err := n.portal.Send(n.recipient, RewardGasLimit, data); err != nil {
		return errors.WithMessage(err, "send reward notification")
	}

	logger.Debug("reward notification sent",
		"beneficiary", beneficiary,
		"l2BlockNumber", l2BlockNumber,
		"penalty", penalty,
	)
	return nil
}

// DryRunPortal logs outgoing messages instead of delivering them. It backs
// the solo runner, which has no L2 to talk to.
type DryRunPortal struct{}

// Send implements Portal.
func (DryRunPortal) Send(to kroma.Address, gasLimit uint64, data []byte) error {
	logger.Info("portal message (dry run)", "to", to, "gasLimit", gasLimit, "size", len(data))
	return nil
}
