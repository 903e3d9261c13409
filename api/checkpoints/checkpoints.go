// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoints exposes checkpoint submission and lookup over http.
package checkpoints

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/selcuktann/kroma/api/utils"
	"github.com/selcuktann/kroma/checkpoint"
	"github.com/selcuktann/kroma/kroma"
	poolcore "github.com/selcuktann/kroma/pool"
)

type Checkpoints struct {
	store *checkpoint.Store
	now   func() uint64
}

func New(store *checkpoint.Store, now func() uint64) *Checkpoints {
	return &Checkpoints{
		store,
		now,
	}
}

func (c *Checkpoints) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	var submission Submission
	if err := utils.ParseJSON(req.Body, &submission); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now := submission.Now
	if now == 0 {
		now = c.now()
	}

	if err := c.store.Submit(submission.Submitter, submission.BlockNumber, submission.Root, now); err != nil {
		switch {
		case errors.Is(err, checkpoint.ErrNotOnTurn),
			errors.Is(err, poolcore.ErrUnauthorized):
			return utils.Forbidden(err)
		case errors.Is(err, checkpoint.ErrUnexpectedBlockNumber),
			errors.Is(err, poolcore.ErrInsufficientFunds),
			errors.Is(err, poolcore.ErrZeroOrBelowMinimum),
			errors.Is(err, poolcore.ErrBondAlreadyExists):
			return utils.BadRequest(err)
		default:
			return err
		}
	}

	index, _ := c.store.LatestIndex()
	return utils.WriteJSON(w, &Accepted{Index: index})
}

func (c *Checkpoints) handleGetCheckpoint(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	cp, err := c.store.Get(index)
	if err != nil {
		return utils.NotFound(err)
	}
	return utils.WriteJSON(w, convertCheckpoint(index, cp))
}

func (c *Checkpoints) handleGetNext(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Next{
		Index:       c.store.NextIndex(),
		BlockNumber: c.store.NextBlockNumber(),
	})
}

func (c *Checkpoints) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(c.handleSubmit))
	sub.Path("/next").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(c.handleGetNext))
	sub.Path("/{index}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(c.handleGetCheckpoint))
}

func convertCheckpoint(index uint64, cp *checkpoint.Checkpoint) *JSONCheckpoint {
	return &JSONCheckpoint{
		Index:       index,
		Submitter:   cp.Submitter,
		BlockNumber: cp.BlockNumber,
		Timestamp:   cp.Timestamp,
		Root:        cp.Root,
	}
}

// Submission is a checkpoint submission request. Now is optional; zero means
// the server clock.
type Submission struct {
	Submitter   kroma.Address `json:"submitter"`
	BlockNumber uint64        `json:"blockNumber"`
	Root        kroma.Bytes32 `json:"root"`
	Now         uint64        `json:"now,omitempty"`
}

// Accepted is the response to an accepted submission.
type Accepted struct {
	Index uint64 `json:"index"`
}

// JSONCheckpoint is an accepted checkpoint.
type JSONCheckpoint struct {
	Index       uint64        `json:"index"`
	Submitter   kroma.Address `json:"submitter"`
	BlockNumber uint64        `json:"blockNumber"`
	Timestamp   uint64        `json:"timestamp"`
	Root        kroma.Bytes32 `json:"root"`
}

// Next describes the expected next submission.
type Next struct {
	Index       uint64 `json:"index"`
	BlockNumber uint64 `json:"blockNumber"`
}
