// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoint

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/log"
	"github.com/selcuktann/kroma/sched"
)

var logger = log.WithContext("pkg", "checkpoint")

// Submission rejections, matched by callers with errors.Is.
var (
	ErrUnexpectedBlockNumber = errors.New("unexpected block number")
	ErrNotOnTurn             = errors.New("submitter not on turn")
)

// BondPool is the slice of the pool the store drives: turn enforcement on
// submission and bond creation right after a checkpoint is accepted.
type BondPool interface {
	NextValidator(now uint64) (sched.Assignment, error)
	CreateBond(caller kroma.Address, checkpointIndex uint64, amount *big.Int, expiresAt, now uint64) error
}

// Store is an in-process checkpoint storage collaborator. It records
// accepted checkpoints, enforces whose turn it is to submit, and
// collateralizes every accepted checkpoint with a bond.
type Store struct {
	// submitMu serializes whole submissions; mu only guards the
	// checkpoint slice, so the pool's oracle callbacks stay deadlock free
	// while a submission is in flight.
	submitMu sync.Mutex
	mu       sync.Mutex

	submissionInterval  uint64
	startingBlockNumber uint64
	bondAmount          *big.Int
	finalizationPeriod  uint64

	checkpoints []Checkpoint
	pool        BondPool
}

// NewStore creates a checkpoint store. The pool is attached later with
// Bind, since the pool itself is constructed against the store.
func NewStore(submissionInterval, startingBlockNumber uint64, bondAmount *big.Int, finalizationPeriod uint64) *Store {
	return &Store{
		submissionInterval:  submissionInterval,
		startingBlockNumber: startingBlockNumber,
		bondAmount:          new(big.Int).Set(bondAmount),
		finalizationPeriod:  finalizationPeriod,
	}
}

// Bind attaches the bond pool the store submits against.
func (s *Store) Bind(pool BondPool) {
	s.pool = pool
}

// NextIndex implements Oracle.
func (s *Store) NextIndex() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.checkpoints))
}

// NextBlockNumber implements Oracle.
func (s *Store) NextBlockNumber() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextBlockNumber()
}

func (s *Store) nextBlockNumber() uint64 {
	return s.startingBlockNumber + uint64(len(s.checkpoints)+1)*s.submissionInterval
}

// LatestIndex implements Oracle.
func (s *Store) LatestIndex() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.checkpoints) == 0 {
		return 0, false
	}
	return uint64(len(s.checkpoints) - 1), true
}

// Get implements Oracle.
func (s *Store) Get(index uint64) (*Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index >= uint64(len(s.checkpoints)) {
		return nil, errors.Errorf("no checkpoint at index %d", index)
	}
	cp := s.checkpoints[index]
	return &cp, nil
}

// Submit records a checkpoint submitted by `submitter` and creates its
// bond. The submitter must be the validator on turn, unless the current
// round is public. Submissions are serialized, so concurrent submitters
// race for the same expected block number and all but one are rejected.
func (s *Store) Submit(submitter kroma.Address, blockNumber uint64, root kroma.Bytes32, now uint64) error {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	if expected := s.NextBlockNumber(); blockNumber != expected {
		return errors.WithMessagef(ErrUnexpectedBlockNumber, "%d, want %d", blockNumber, expected)
	}

	asg, err := s.pool.NextValidator(now)
	if err != nil {
		return errors.WithMessage(err, "next validator")
	}
	if !asg.PublicRound && asg.Validator != submitter {
		return errors.WithMessagef(ErrNotOnTurn, "submitter %v", submitter)
	}

	s.mu.Lock()
	index := uint64(len(s.checkpoints))
	s.checkpoints = append(s.checkpoints, Checkpoint{
		Submitter:   submitter,
		BlockNumber: blockNumber,
		Timestamp:   now,
		Root:        root,
	})
	s.mu.Unlock()

	if err := s.pool.CreateBond(kroma.CheckpointOracleAddress, index, s.bondAmount, now+s.finalizationPeriod, now); err != nil {
		// the checkpoint is only accepted together with its bond
		s.mu.Lock()
		s.checkpoints = s.checkpoints[:index]
		s.mu.Unlock()
		return errors.WithMessage(err, "create bond")
	}

	logger.Info("checkpoint accepted",
		"index", index,
		"l2BlockNumber", blockNumber,
		"submitter", submitter,
		"publicRound", asg.PublicRound,
	)
	return nil
}
