// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import "github.com/pkg/errors"

// Errors reported by pool entry points. All are detected synchronously and
// leave the state untouched; callers match them with errors.Is.
var (
	ErrUnauthorized       = errors.New("unauthorized caller")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrZeroOrBelowMinimum = errors.New("bond amount zero or below minimum")
	ErrBondAlreadyExists  = errors.New("bond already exists")
	ErrNoSuchBond         = errors.New("no such bond")
	ErrNotYetExpired      = errors.New("bond not yet expired")
)
