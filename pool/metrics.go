// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import "github.com/selcuktann/kroma/metrics"

var (
	metricDeposits       = metrics.LazyLoadCounter("pool_deposits_total")
	metricWithdrawals    = metrics.LazyLoadCounter("pool_withdrawals_total")
	metricBondOps        = metrics.LazyLoadCounterVec("pool_bond_ops_total", []string{"op"})
	metricValidatorCount = metrics.LazyLoadGauge("pool_validator_count")
	metricPenaltySeconds = metrics.LazyLoadCounter("pool_penalty_seconds_total")
)
