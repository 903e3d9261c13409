// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the stake-bonded validator pool: a staked balance
// ledger, the eligible validator set derived from it, round-robin submission
// rotation with a public-round fallback, and the FIFO bond lifecycle backing
// accepted checkpoints.
package pool

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/selcuktann/kroma/checkpoint"
	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/log"
	"github.com/selcuktann/kroma/sched"
	"github.com/selcuktann/kroma/state"
)

var logger = log.WithContext("pkg", "pool")

// RewardNotifier forwards the reward share of a released bond to the other
// layer. Delivery failures do not fail the release.
type RewardNotifier interface {
	NotifyReward(beneficiary kroma.Address, l2BlockNumber, penalty, penaltyPeriod uint64) error
}

// Pool is the validator pool engine. All entry points are safe for
// concurrent use and take effect atomically: on error the state is exactly
// as it was before the call.
type Pool struct {
	cfg      Config
	st       *state.State
	oracle   checkpoint.Oracle
	notifier RewardNotifier

	mu       sync.Mutex
	ledger   *ledger
	registry *registry

	bondFeed event.Feed
	scope    event.SubscriptionScope
}

// New creates a pool over the given state, bound to the checkpoint oracle
// and the reward notifier.
func New(cfg Config, st *state.State, oracle checkpoint.Oracle, notifier RewardNotifier) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "pool config")
	}
	return &Pool{
		cfg:      cfg,
		st:       st,
		oracle:   oracle,
		notifier: notifier,
		ledger:   newLedger(kroma.ValidatorPoolAddress, st, cfg.MinBondAmount),
		registry: newRegistry(kroma.ValidatorPoolAddress, st),
	}, nil
}

// Config returns a copy of the pool's configuration.
func (p *Pool) Config() Config {
	cfg := p.cfg
	cfg.MinBondAmount = new(big.Int).Set(p.cfg.MinBondAmount)
	return cfg
}

// Close unsubscribes all event subscribers.
func (p *Pool) Close() {
	p.scope.Close()
}

type rewardNotification struct {
	beneficiary   kroma.Address
	l2BlockNumber uint64
	penalty       uint64
}

// effects are the outward consequences an operation accumulates while its
// state checkpoint is still open. They are acted on only after the commit,
// so a reverted operation leaves no trace outside the state either.
type effects struct {
	events        []*BondEvent
	notifications []rewardNotification
}

// runAtomically runs fn under the pool lock within a state checkpoint.
// On error every state change fn made is reverted and none of its effects
// leak out; on success notifications are dispatched and events published
// in order.
func (p *Pool) runAtomically(fn func(fx *effects) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var fx effects
	rev := p.st.NewCheckpoint()
	if err := fn(&fx); err != nil {
		p.st.RevertTo(rev)
		return err
	}

	if count, err := p.ledger.count(); err == nil {
		metricValidatorCount().Set(int64(count))
	}
	for _, n := range fx.notifications {
		// a failed notification must not fail the committed release
		if err := p.notifier.NotifyReward(n.beneficiary, n.l2BlockNumber, n.penalty, p.cfg.PenaltyPeriod); err != nil {
			logger.Warn("reward notification failed", "beneficiary", n.beneficiary, "err", err)
		}
	}
	for _, ev := range fx.events {
		metricBondOps().AddWithLabel(1, map[string]string{"op": ev.Kind.String()})
		if ev.Kind == BondReleased {
			metricPenaltySeconds().Add(int64(ev.Penalty))
		}
		p.bondFeed.Send(ev)
	}
	return nil
}

// Deposit moves amount from addr's unstaked account balance into its staked
// balance. Crossing the eligibility threshold appends addr to the tail of
// the validator set.
func (p *Pool) Deposit(addr kroma.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("negative deposit amount")
	}
	err := p.runAtomically(func(_ *effects) error {
		balance, err := p.st.GetBalance(addr)
		if err != nil {
			return err
		}
		if balance.Cmp(amount) < 0 {
			return errors.WithMessagef(ErrInsufficientFunds, "deposit from %v", addr)
		}
		if err := p.st.SetBalance(addr, new(big.Int).Sub(balance, amount)); err != nil {
			return err
		}
		return p.ledger.credit(addr, amount)
	})
	if err != nil {
		return err
	}
	metricDeposits().Add(1)
	logger.Debug("deposit", "addr", addr, "amount", amount)
	return nil
}

// Withdraw moves amount from addr's staked balance back to its unstaked
// account balance. Falling below the eligibility threshold removes addr
// from the validator set.
func (p *Pool) Withdraw(addr kroma.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("negative withdrawal amount")
	}
	err := p.runAtomically(func(_ *effects) error {
		if err := p.ledger.debit(addr, amount); err != nil {
			return errors.WithMessagef(err, "withdraw from %v", addr)
		}
		balance, err := p.st.GetBalance(addr)
		if err != nil {
			return err
		}
		return p.st.SetBalance(addr, new(big.Int).Add(balance, amount))
	})
	if err != nil {
		return err
	}
	metricWithdrawals().Add(1)
	logger.Debug("withdraw", "addr", addr, "amount", amount)
	return nil
}

// BalanceOf returns addr's staked balance.
func (p *Pool) BalanceOf(addr kroma.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.balance(addr)
}

// IsValidator returns whether addr is in the validator set.
func (p *Pool) IsValidator(addr kroma.Address) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.isValidator(addr)
}

// ValidatorCount returns the size of the validator set.
func (p *Pool) ValidatorCount() (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.count()
}

// Validators returns the validator set in position order.
func (p *Pool) Validators() ([]kroma.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.validators()
}

// NextValidator resolves who may submit the next checkpoint at time now.
func (p *Pool) NextValidator(now uint64) (sched.Assignment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.assignee(now)
}

// assignee builds the scheduler view from the current set, the stored
// rotation pointer and the next submission deadline. Caller holds p.mu.
func (p *Pool) assignee(now uint64) (sched.Assignment, error) {
	validators, err := p.ledger.validators()
	if err != nil {
		return sched.Assignment{}, err
	}
	pointer, err := p.ledger.pointer()
	if err != nil {
		return sched.Assignment{}, err
	}
	deadline := p.cfg.Schedule().Deadline(p.oracle.NextBlockNumber())
	return sched.New(validators, pointer, deadline, p.cfg.RoundDuration()).Assignee(now), nil
}

// CreateBond locks amount of the submitter's stake behind the accepted
// checkpoint at checkpointIndex. Only the checkpoint oracle may call it,
// and bond indices are consecutive: each call must target the checkpoint
// right after the last bonded one. The oldest bond is lazily released first
// if it already expired, so the stake it returns can fund the new bond.
// Acceptance advances the rotation pointer by one.
func (p *Pool) CreateBond(caller kroma.Address, checkpointIndex uint64, amount *big.Int, expiresAt, now uint64) error {
	if caller != p.cfg.OracleAddress {
		return errors.WithMessagef(ErrUnauthorized, "create bond from %v", caller)
	}
	return p.runAtomically(func(fx *effects) error {
		if amount == nil || amount.Cmp(p.cfg.MinBondAmount) < 0 {
			return errors.WithMessagef(ErrZeroOrBelowMinimum, "checkpoint %d", checkpointIndex)
		}
		existing, err := p.registry.get(checkpointIndex)
		if err != nil {
			return err
		}
		if !existing.IsEmpty() {
			return errors.WithMessagef(ErrBondAlreadyExists, "checkpoint %d", checkpointIndex)
		}
		nextCreate, err := p.registry.nextCreateIndex()
		if err != nil {
			return err
		}
		if checkpointIndex != nextCreate {
			return errors.Errorf("bond indices must be consecutive, want %d got %d", nextCreate, checkpointIndex)
		}

		if err := p.tryReleaseOldest(now, fx); err != nil {
			return err
		}

		ck, err := p.oracle.Get(checkpointIndex)
		if err != nil {
			return errors.WithMessagef(err, "checkpoint %d", checkpointIndex)
		}
		if err := p.ledger.debit(ck.Submitter, amount); err != nil {
			return errors.WithMessagef(err, "bond for checkpoint %d", checkpointIndex)
		}
		bonded := new(big.Int).Set(amount)
		if err := p.registry.set(checkpointIndex, &Bond{
			Amount:    bonded,
			ExpiresAt: expiresAt,
			Submitter: ck.Submitter,
		}); err != nil {
			return err
		}
		if err := p.registry.setNextCreateIndex(checkpointIndex + 1); err != nil {
			return err
		}

		count, err := p.ledger.count()
		if err != nil {
			return err
		}
		pointer, err := p.ledger.pointer()
		if err != nil {
			return err
		}
		if err := p.ledger.setPointer(sched.NextPointer(pointer, count)); err != nil {
			return err
		}

		fx.events = append(fx.events, &BondEvent{
			Kind:            BondCreated,
			CheckpointIndex: checkpointIndex,
			Party:           ck.Submitter,
			Amount:          bonded,
			ExpiresAt:       expiresAt,
		})
		logger.Info("bond created",
			"checkpoint", checkpointIndex,
			"submitter", ck.Submitter,
			"amount", bonded,
			"expiresAt", expiresAt,
		)
		return nil
	})
}

// Unbond releases the oldest live bond. ErrNoSuchBond when no bond is live,
// ErrNotYetExpired before the bond's expiry.
func (p *Pool) Unbond(now uint64) error {
	return p.runAtomically(func(fx *effects) error {
		index, err := p.registry.nextReleaseIndex()
		if err != nil {
			return err
		}
		bond, err := p.registry.get(index)
		if err != nil {
			return err
		}
		if bond.IsEmpty() {
			return errors.WithMessage(ErrNoSuchBond, "unbond")
		}
		if now < bond.ExpiresAt {
			return errors.WithMessagef(ErrNotYetExpired, "bond %d expires at %d", index, bond.ExpiresAt)
		}
		return p.release(index, bond, fx)
	})
}

// IncreaseBond doubles the bond at checkpointIndex, funding the added half
// from the challenger's stake. Only the dispute collaborator may call it.
func (p *Pool) IncreaseBond(caller, challenger kroma.Address, checkpointIndex uint64) error {
	if caller != p.cfg.DisputeAddress {
		return errors.WithMessagef(ErrUnauthorized, "increase bond from %v", caller)
	}
	return p.runAtomically(func(fx *effects) error {
		bond, err := p.registry.get(checkpointIndex)
		if err != nil {
			return err
		}
		if bond.IsEmpty() {
			return errors.WithMessagef(ErrNoSuchBond, "checkpoint %d", checkpointIndex)
		}
		added := new(big.Int).Set(bond.Amount)
		if err := p.ledger.debit(challenger, added); err != nil {
			return errors.WithMessagef(err, "challenger %v", challenger)
		}
		bond.Amount = new(big.Int).Add(bond.Amount, added)
		if err := p.registry.set(checkpointIndex, bond); err != nil {
			return err
		}

		fx.events = append(fx.events, &BondEvent{
			Kind:            BondIncreased,
			CheckpointIndex: checkpointIndex,
			Party:           challenger,
			Amount:          added,
		})
		logger.Info("bond increased",
			"checkpoint", checkpointIndex,
			"challenger", challenger,
			"added", added,
			"total", bond.Amount,
		)
		return nil
	})
}

// GetBond returns the live bond at checkpointIndex.
func (p *Pool) GetBond(checkpointIndex uint64) (*Bond, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bond, err := p.registry.get(checkpointIndex)
	if err != nil {
		return nil, err
	}
	if bond.IsEmpty() {
		return nil, errors.WithMessagef(ErrNoSuchBond, "checkpoint %d", checkpointIndex)
	}
	return bond, nil
}

// tryReleaseOldest releases the oldest live bond if it expired. A missing or
// unexpired bond is not an error here.
func (p *Pool) tryReleaseOldest(now uint64, fx *effects) error {
	index, err := p.registry.nextReleaseIndex()
	if err != nil {
		return err
	}
	bond, err := p.registry.get(index)
	if err != nil {
		return err
	}
	if bond.IsEmpty() || now < bond.ExpiresAt {
		return nil
	}
	return p.release(index, bond, fx)
}

// release returns the full principal to the submitter's stake and computes
// the timeliness penalty for the reward share. The notification to the
// other layer is only queued on fx; it leaves the process when the whole
// operation commits. Caller holds p.mu and an open state checkpoint.
func (p *Pool) release(index uint64, bond *Bond, fx *effects) error {
	ck, err := p.oracle.Get(index)
	if err != nil {
		return errors.WithMessagef(err, "checkpoint %d", index)
	}
	deadline := p.cfg.Schedule().Deadline(ck.BlockNumber)
	penalty := sched.Penalty(ck.Timestamp, deadline, p.cfg.NonPenaltyPeriod, p.cfg.PenaltyPeriod)

	if err := p.ledger.credit(bond.Submitter, bond.Amount); err != nil {
		return err
	}
	if err := p.registry.set(index, nil); err != nil {
		return err
	}
	if err := p.registry.setNextReleaseIndex(index + 1); err != nil {
		return err
	}

	fx.notifications = append(fx.notifications, rewardNotification{
		beneficiary:   bond.Submitter,
		l2BlockNumber: ck.BlockNumber,
		penalty:       penalty,
	})
	fx.events = append(fx.events, &BondEvent{
		Kind:            BondReleased,
		CheckpointIndex: index,
		Party:           bond.Submitter,
		Amount:          bond.Amount,
		Penalty:         penalty,
	})
	logger.Info("bond released",
		"checkpoint", index,
		"submitter", bond.Submitter,
		"amount", bond.Amount,
		"penalty", penalty,
	)
	return nil
}
