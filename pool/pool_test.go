// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selcuktann/kroma/checkpoint"
	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/state"
)

var (
	addrA = kroma.BytesToAddress([]byte("a1"))
	addrB = kroma.BytesToAddress([]byte("b1"))
	addrC = kroma.BytesToAddress([]byte("c1"))
)

type fakeOracle struct {
	checkpoints []*checkpoint.Checkpoint
	nextBlock   uint64
	blockStep   uint64
}

func (o *fakeOracle) NextIndex() uint64 {
	return uint64(len(o.checkpoints))
}

func (o *fakeOracle) NextBlockNumber() uint64 {
	return o.nextBlock
}

func (o *fakeOracle) LatestIndex() (uint64, bool) {
	if len(o.checkpoints) == 0 {
		return 0, false
	}
	return uint64(len(o.checkpoints)) - 1, true
}

func (o *fakeOracle) Get(index uint64) (*checkpoint.Checkpoint, error) {
	if index >= uint64(len(o.checkpoints)) {
		return nil, errors.Errorf("checkpoint %d not accepted", index)
	}
	return o.checkpoints[index], nil
}

func (o *fakeOracle) accept(submitter kroma.Address, timestamp uint64) uint64 {
	index := uint64(len(o.checkpoints))
	o.checkpoints = append(o.checkpoints, &checkpoint.Checkpoint{
		Submitter:   submitter,
		BlockNumber: o.nextBlock,
		Timestamp:   timestamp,
	})
	o.nextBlock += o.blockStep
	return index
}

type rewardCall struct {
	beneficiary   kroma.Address
	l2BlockNumber uint64
	penalty       uint64
	penaltyPeriod uint64
}

type fakeNotifier struct {
	calls []rewardCall
	err   error
}

func (n *fakeNotifier) NotifyReward(beneficiary kroma.Address, l2BlockNumber, penalty, penaltyPeriod uint64) error {
	if n.err != nil {
		return n.err
	}
	n.calls = append(n.calls, rewardCall{beneficiary, l2BlockNumber, penalty, penaltyPeriod})
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinBondAmount = big.NewInt(100)
	cfg.NonPenaltyPeriod = 300
	cfg.PenaltyPeriod = 300
	cfg.FinalizationPeriod = 1000
	cfg.GenesisTime = 0
	cfg.L2BlockInterval = 2
	return cfg
}

func newTestPool(t *testing.T) (*Pool, *state.State, *fakeOracle, *fakeNotifier) {
	st := state.New()
	oracle := &fakeOracle{nextBlock: 1800, blockStep: 1800}
	notifier := &fakeNotifier{}
	p, err := New(testConfig(), st, oracle, notifier)
	require.NoError(t, err)
	return p, st, oracle, notifier
}

func fund(t *testing.T, st *state.State, addr kroma.Address, amount int64) {
	require.NoError(t, st.SetBalance(addr, big.NewInt(amount)))
}

func deposit(t *testing.T, p *Pool, addr kroma.Address, amount int64) {
	require.NoError(t, p.Deposit(addr, big.NewInt(amount)))
}

func stakedBalance(t *testing.T, p *Pool, addr kroma.Address) int64 {
	balance, err := p.BalanceOf(addr)
	require.NoError(t, err)
	return balance.Int64()
}

func TestDepositWithdraw(t *testing.T) {
	p, st, _, _ := newTestPool(t)
	fund(t, st, addrA, 1000)

	deposit(t, p, addrA, 150)
	assert.Equal(t, int64(150), stakedBalance(t, p, addrA))

	unstaked, err := st.GetBalance(addrA)
	require.NoError(t, err)
	assert.Equal(t, int64(850), unstaked.Int64())

	ok, err := p.IsValidator(addrA)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, p.Withdraw(addrA, big.NewInt(100)))
	assert.Equal(t, int64(50), stakedBalance(t, p, addrA))

	unstaked, err = st.GetBalance(addrA)
	require.NoError(t, err)
	assert.Equal(t, int64(950), unstaked.Int64())

	ok, err = p.IsValidator(addrA)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, errors.Is(p.Withdraw(addrA, big.NewInt(100)), ErrInsufficientFunds))
	assert.True(t, errors.Is(p.Deposit(addrA, big.NewInt(10_000)), ErrInsufficientFunds))
	// both failures left balances untouched
	assert.Equal(t, int64(50), stakedBalance(t, p, addrA))
}

func TestEligibilityThreshold(t *testing.T) {
	p, st, _, _ := newTestPool(t)
	fund(t, st, addrA, 1000)

	deposit(t, p, addrA, 99)
	ok, err := p.IsValidator(addrA)
	require.NoError(t, err)
	assert.False(t, ok)

	deposit(t, p, addrA, 1)
	ok, err = p.IsValidator(addrA)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, p.Withdraw(addrA, big.NewInt(1)))
	ok, err = p.IsValidator(addrA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidatorSetOrder(t *testing.T) {
	p, st, _, _ := newTestPool(t)
	for _, addr := range []kroma.Address{addrA, addrB, addrC} {
		fund(t, st, addr, 1000)
		deposit(t, p, addr, 100)
	}

	set, err := p.Validators()
	require.NoError(t, err)
	assert.Equal(t, []kroma.Address{addrA, addrB, addrC}, set)

	count, err := p.ValidatorCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	// removal swaps the tail into the vacated slot
	require.NoError(t, p.Withdraw(addrA, big.NewInt(1)))
	set, err = p.Validators()
	require.NoError(t, err)
	assert.Equal(t, []kroma.Address{addrC, addrB}, set)

	// re-entry appends at the tail
	deposit(t, p, addrA, 1)
	set, err = p.Validators()
	require.NoError(t, err)
	assert.Equal(t, []kroma.Address{addrC, addrB, addrA}, set)
}

func TestNextValidatorRotation(t *testing.T) {
	p, st, oracle, _ := newTestPool(t)
	cfg := p.Config()
	for _, addr := range []kroma.Address{addrA, addrB} {
		fund(t, st, addr, 1000)
		deposit(t, p, addr, 500)
	}

	submit := func(now uint64) kroma.Address {
		asgmt, err := p.NextValidator(now)
		require.NoError(t, err)
		require.False(t, asgmt.PublicRound)
		index := oracle.accept(asgmt.Validator, now)
		require.NoError(t, p.CreateBond(cfg.OracleAddress, index, big.NewInt(100), now+cfg.FinalizationPeriod, now))
		return asgmt.Validator
	}

	assert.Equal(t, addrA, submit(100))
	assert.Equal(t, addrB, submit(200))
	assert.Equal(t, addrA, submit(300))

	// time passing without acceptance does not advance the turn
	asgmt, err := p.NextValidator(400)
	require.NoError(t, err)
	assert.Equal(t, addrB, asgmt.Validator)
	asgmt, err = p.NextValidator(500)
	require.NoError(t, err)
	assert.Equal(t, addrB, asgmt.Validator)
}

func TestNextValidatorPublicRound(t *testing.T) {
	p, st, _, _ := newTestPool(t)
	cfg := p.Config()

	// empty set is always public
	asgmt, err := p.NextValidator(0)
	require.NoError(t, err)
	assert.True(t, asgmt.PublicRound)

	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	// deadline of block 1800 at interval 2 is 3600
	deadline := uint64(3600)
	round := cfg.RoundDuration()

	asgmt, err = p.NextValidator(deadline + round)
	require.NoError(t, err)
	assert.False(t, asgmt.PublicRound)
	assert.Equal(t, addrA, asgmt.Validator)

	asgmt, err = p.NextValidator(deadline + round + 1)
	require.NoError(t, err)
	assert.True(t, asgmt.PublicRound)
}

func TestCreateBond(t *testing.T) {
	p, st, oracle, _ := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	events := make(chan *BondEvent, 8)
	sub := p.SubscribeBondEvent(events)
	defer sub.Unsubscribe()

	index := oracle.accept(addrA, 100)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, index, big.NewInt(200), 1100, 100))

	assert.Equal(t, int64(300), stakedBalance(t, p, addrA))

	bond, err := p.GetBond(index)
	require.NoError(t, err)
	assert.Equal(t, int64(200), bond.Amount.Int64())
	assert.Equal(t, uint64(1100), bond.ExpiresAt)
	assert.Equal(t, addrA, bond.Submitter)

	ev := <-events
	assert.Equal(t, BondCreated, ev.Kind)
	assert.Equal(t, index, ev.CheckpointIndex)
	assert.Equal(t, addrA, ev.Party)
	assert.Equal(t, int64(200), ev.Amount.Int64())
}

func TestCreateBondErrors(t *testing.T) {
	p, st, oracle, _ := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 250)

	index := oracle.accept(addrA, 100)

	err := p.CreateBond(addrB, index, big.NewInt(200), 1100, 100)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	err = p.CreateBond(cfg.OracleAddress, index, big.NewInt(99), 1100, 100)
	assert.True(t, errors.Is(err, ErrZeroOrBelowMinimum))

	err = p.CreateBond(cfg.OracleAddress, index, new(big.Int), 1100, 100)
	assert.True(t, errors.Is(err, ErrZeroOrBelowMinimum))

	// stake too small for the requested amount, nothing must change
	err = p.CreateBond(cfg.OracleAddress, index, big.NewInt(300), 1100, 100)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, int64(250), stakedBalance(t, p, addrA))
	_, err = p.GetBond(index)
	assert.True(t, errors.Is(err, ErrNoSuchBond))

	require.NoError(t, p.CreateBond(cfg.OracleAddress, index, big.NewInt(100), 1100, 100))
	err = p.CreateBond(cfg.OracleAddress, index, big.NewInt(100), 1100, 100)
	assert.True(t, errors.Is(err, ErrBondAlreadyExists))
}

func TestUnbond(t *testing.T) {
	p, st, oracle, notifier := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	assert.True(t, errors.Is(p.Unbond(100), ErrNoSuchBond))

	index := oracle.accept(addrA, 100)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, index, big.NewInt(200), 1100, 100))

	assert.True(t, errors.Is(p.Unbond(1099), ErrNotYetExpired))

	events := make(chan *BondEvent, 8)
	sub := p.SubscribeBondEvent(events)
	defer sub.Unsubscribe()

	require.NoError(t, p.Unbond(1100))

	// full principal returned
	assert.Equal(t, int64(500), stakedBalance(t, p, addrA))
	_, err := p.GetBond(index)
	assert.True(t, errors.Is(err, ErrNoSuchBond))

	// submitted at 100 against deadline 3600, no penalty
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, rewardCall{addrA, 1800, 0, cfg.PenaltyPeriod}, notifier.calls[0])

	ev := <-events
	assert.Equal(t, BondReleased, ev.Kind)
	assert.Equal(t, addrA, ev.Party)
	assert.Equal(t, int64(200), ev.Amount.Int64())

	// released once, gone for good
	assert.True(t, errors.Is(p.Unbond(2000), ErrNoSuchBond))
}

func TestLazyReleaseOnCreate(t *testing.T) {
	p, st, oracle, _ := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	// lock nearly the whole stake behind the first checkpoint
	first := oracle.accept(addrA, 100)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, first, big.NewInt(450), 1100, 100))
	assert.Equal(t, int64(50), stakedBalance(t, p, addrA))

	events := make(chan *BondEvent, 8)
	sub := p.SubscribeBondEvent(events)
	defer sub.Unsubscribe()

	// the expired first bond funds the second one
	second := oracle.accept(addrA, 1200)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, second, big.NewInt(450), 2200, 1200))

	assert.Equal(t, int64(50), stakedBalance(t, p, addrA))
	_, err := p.GetBond(first)
	assert.True(t, errors.Is(err, ErrNoSuchBond))

	ev := <-events
	assert.Equal(t, BondReleased, ev.Kind)
	assert.Equal(t, first, ev.CheckpointIndex)
	ev = <-events
	assert.Equal(t, BondCreated, ev.Kind)
	assert.Equal(t, second, ev.CheckpointIndex)
}

func TestRevertedReleaseSendsNoNotification(t *testing.T) {
	p, st, oracle, notifier := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	first := oracle.accept(addrA, 100)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, first, big.NewInt(450), 1100, 100))

	// B never staked, so the second bond cannot be funded even after the
	// lazy release of the expired first bond; the whole operation reverts
	second := oracle.accept(addrB, 1200)
	err := p.CreateBond(cfg.OracleAddress, second, big.NewInt(450), 2200, 1200)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	// the reverted release must not have reached the other layer
	assert.Empty(t, notifier.calls)

	// the first bond is still live and its release notifies exactly once
	bond, err := p.GetBond(first)
	require.NoError(t, err)
	assert.Equal(t, int64(450), bond.Amount.Int64())

	require.NoError(t, p.Unbond(1200))
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, addrA, notifier.calls[0].beneficiary)
}

func TestCreateBondConsecutiveIndices(t *testing.T) {
	p, st, oracle, _ := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	first := oracle.accept(addrA, 100)
	oracle.accept(addrA, 200)
	third := oracle.accept(addrA, 300)

	require.NoError(t, p.CreateBond(cfg.OracleAddress, first, big.NewInt(100), 1100, 100))

	// skipping an index would strand the release cursor
	err := p.CreateBond(cfg.OracleAddress, third, big.NewInt(100), 1300, 300)
	assert.ErrorContains(t, err, "consecutive")

	require.NoError(t, p.CreateBond(cfg.OracleAddress, first+1, big.NewInt(100), 1200, 200))
}

func TestIncreaseBond(t *testing.T) {
	p, st, oracle, _ := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	fund(t, st, addrC, 1000)
	deposit(t, p, addrA, 500)
	deposit(t, p, addrC, 100)

	index := oracle.accept(addrA, 100)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, index, big.NewInt(100), 1100, 100))

	err := p.IncreaseBond(addrB, addrC, index)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	err = p.IncreaseBond(cfg.DisputeAddress, addrC, index+1)
	assert.True(t, errors.Is(err, ErrNoSuchBond))

	require.NoError(t, p.IncreaseBond(cfg.DisputeAddress, addrC, index))

	bond, err := p.GetBond(index)
	require.NoError(t, err)
	assert.Equal(t, int64(200), bond.Amount.Int64())
	assert.Equal(t, int64(0), stakedBalance(t, p, addrC))

	// the challenger no longer clears the threshold
	ok, err := p.IsValidator(addrC)
	require.NoError(t, err)
	assert.False(t, ok)

	// doubling again needs 200, the challenger has nothing left
	err = p.IncreaseBond(cfg.DisputeAddress, addrC, index)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	bond, err = p.GetBond(index)
	require.NoError(t, err)
	assert.Equal(t, int64(200), bond.Amount.Int64())
}

func TestLatePenalty(t *testing.T) {
	p, st, oracle, notifier := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	// deadline of block 1800 is 3600; 400 late eats the 300 grace period
	index := oracle.accept(addrA, 4000)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, index, big.NewInt(100), 5000, 4000))
	require.NoError(t, p.Unbond(5000))

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, uint64(100), notifier.calls[0].penalty)

	// principal is returned in full regardless of the penalty
	assert.Equal(t, int64(500), stakedBalance(t, p, addrA))
}

func TestReleaseSurvivesNotifierFailure(t *testing.T) {
	p, st, oracle, notifier := newTestPool(t)
	cfg := p.Config()
	notifier.err = errors.New("bridge down")
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	index := oracle.accept(addrA, 100)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, index, big.NewInt(200), 1100, 100))
	require.NoError(t, p.Unbond(1100))

	assert.Equal(t, int64(500), stakedBalance(t, p, addrA))
	_, err := p.GetBond(index)
	assert.True(t, errors.Is(err, ErrNoSuchBond))
}

func TestBondLockedStakeNotWithdrawable(t *testing.T) {
	p, st, oracle, _ := newTestPool(t)
	cfg := p.Config()
	fund(t, st, addrA, 1000)
	deposit(t, p, addrA, 500)

	index := oracle.accept(addrA, 100)
	require.NoError(t, p.CreateBond(cfg.OracleAddress, index, big.NewInt(400), 1100, 100))

	// only the unbonded remainder can leave the pool
	assert.True(t, errors.Is(p.Withdraw(addrA, big.NewInt(101)), ErrInsufficientFunds))
	require.NoError(t, p.Withdraw(addrA, big.NewInt(100)))
}
