// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/selcuktann/kroma/checkpoint"
	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/sched"
)

// Config carries the pool parameters fixed at construction.
type Config struct {
	// MinBondAmount minimum stake required to join the validator set,
	// also the floor for bond amounts.
	MinBondAmount *big.Int

	// NonPenaltyPeriod grace window past a deadline before penalties accrue.
	NonPenaltyPeriod uint64

	// PenaltyPeriod window during which penalties grow linearly.
	PenaltyPeriod uint64

	// FinalizationPeriod time until a submitted checkpoint's bond expires.
	FinalizationPeriod uint64

	// GenesisTime timestamp of the L2 genesis block.
	GenesisTime uint64

	// L2BlockInterval fixed time between two consecutive L2 blocks.
	L2BlockInterval uint64

	// OracleAddress identity of the checkpoint storage collaborator,
	// the only caller allowed to create bonds.
	OracleAddress kroma.Address

	// DisputeAddress identity of the dispute collaborator, the only
	// caller allowed to increase bonds.
	DisputeAddress kroma.Address

	// PublicRoundAddress sentinel presented to callers during a public round.
	PublicRoundAddress kroma.Address
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		MinBondAmount:      new(big.Int).Set(kroma.DefaultMinBondAmount),
		NonPenaltyPeriod:   kroma.DefaultNonPenaltyPeriod,
		PenaltyPeriod:      kroma.DefaultPenaltyPeriod,
		FinalizationPeriod: kroma.DefaultFinalizationPeriod,
		L2BlockInterval:    kroma.L2BlockInterval,
		OracleAddress:      kroma.CheckpointOracleAddress,
		DisputeAddress:     kroma.DisputeAddress,
		PublicRoundAddress: kroma.PublicRoundAddress,
	}
}

// RoundDuration returns the length of one full submission round.
func (c Config) RoundDuration() uint64 {
	return sched.RoundDuration(c.NonPenaltyPeriod, c.PenaltyPeriod)
}

// Schedule returns the deadline schedule derived from the config.
func (c Config) Schedule() checkpoint.Schedule {
	return checkpoint.Schedule{
		GenesisTime:   c.GenesisTime,
		BlockInterval: c.L2BlockInterval,
	}
}

// Validate checks the config for completeness.
func (c Config) Validate() error {
	if c.MinBondAmount == nil || c.MinBondAmount.Sign() <= 0 {
		return errors.New("min bond amount must be positive")
	}
	if c.RoundDuration() == 0 {
		return errors.New("round duration must be positive")
	}
	if c.L2BlockInterval == 0 {
		return errors.New("l2 block interval must be positive")
	}
	if c.OracleAddress.IsZero() {
		return errors.New("oracle address not set")
	}
	if c.DisputeAddress.IsZero() {
		return errors.New("dispute address not set")
	}
	return nil
}

type fileConfig struct {
	MinBondAmount      string `yaml:"minBondAmount"`
	NonPenaltyPeriod   uint64 `yaml:"nonPenaltyPeriod"`
	PenaltyPeriod      uint64 `yaml:"penaltyPeriod"`
	FinalizationPeriod uint64 `yaml:"finalizationPeriod"`
	GenesisTime        uint64 `yaml:"genesisTime"`
	L2BlockInterval    uint64 `yaml:"l2BlockInterval"`
	OracleAddress      string `yaml:"oracleAddress"`
	DisputeAddress     string `yaml:"disputeAddress"`
	PublicRoundAddress string `yaml:"publicRoundAddress"`
}

// ConfigFromFile loads a config from a yaml file. Absent fields keep their
// defaults.
func ConfigFromFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WithMessage(err, "read config file")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, errors.WithMessage(err, "parse config file")
	}

	if fc.MinBondAmount != "" {
		amount, ok := math.ParseBig256(fc.MinBondAmount)
		if !ok {
			return Config{}, errors.Errorf("invalid min bond amount %q", fc.MinBondAmount)
		}
		cfg.MinBondAmount = amount
	}
	if fc.NonPenaltyPeriod != 0 {
		cfg.NonPenaltyPeriod = fc.NonPenaltyPeriod
	}
	if fc.PenaltyPeriod != 0 {
		cfg.PenaltyPeriod = fc.PenaltyPeriod
	}
	if fc.FinalizationPeriod != 0 {
		cfg.FinalizationPeriod = fc.FinalizationPeriod
	}
	if fc.GenesisTime != 0 {
		cfg.GenesisTime = fc.GenesisTime
	}
	if fc.L2BlockInterval != 0 {
		cfg.L2BlockInterval = fc.L2BlockInterval
	}
	if fc.OracleAddress != "" {
		addr, err := kroma.ParseAddress(fc.OracleAddress)
		if err != nil {
			return Config{}, errors.WithMessage(err, "oracle address")
		}
		cfg.OracleAddress = *addr
	}
	if fc.DisputeAddress != "" {
		addr, err := kroma.ParseAddress(fc.DisputeAddress)
		if err != nil {
			return Config{}, errors.WithMessage(err, "dispute address")
		}
		cfg.DisputeAddress = *addr
	}
	if fc.PublicRoundAddress != "" {
		addr, err := kroma.ParseAddress(fc.PublicRoundAddress)
		if err != nil {
			return Config{}, errors.WithMessage(err, "public round address")
		}
		cfg.PublicRoundAddress = *addr
	}

	return cfg, cfg.Validate()
}
