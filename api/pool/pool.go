// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool exposes the validator pool over http.
package pool

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/selcuktann/kroma/api/utils"
	"github.com/selcuktann/kroma/kroma"
	poolcore "github.com/selcuktann/kroma/pool"
)

type Pool struct {
	pool *poolcore.Pool
	now  func() uint64
}

func New(pool *poolcore.Pool, now func() uint64) *Pool {
	return &Pool{
		pool,
		now,
	}
}

func (p *Pool) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := kroma.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	balance, err := p.pool.BalanceOf(*addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Balance: math256(balance)})
}

func (p *Pool) handleGetValidators(w http.ResponseWriter, req *http.Request) error {
	validators, err := p.pool.Validators()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &ValidatorSet{
		Validators: validators,
		Count:      uint64(len(validators)),
	})
}

func (p *Pool) handleGetNextValidator(w http.ResponseWriter, req *http.Request) error {
	now, err := p.parseNow(req.URL.Query().Get("now"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "now"))
	}
	asg, err := p.pool.NextValidator(now)
	if err != nil {
		return err
	}
	next := NextValidator{
		Validator:   asg.Validator,
		PublicRound: asg.PublicRound,
		Now:         now,
	}
	if asg.PublicRound {
		next.Validator = p.pool.Config().PublicRoundAddress
	}
	return utils.WriteJSON(w, &next)
}

func (p *Pool) handleGetBond(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	bond, err := p.pool.GetBond(index)
	if err != nil {
		if errors.Is(err, poolcore.ErrNoSuchBond) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, &Bond{
		CheckpointIndex: index,
		Amount:          math256(bond.Amount),
		ExpiresAt:       bond.ExpiresAt,
		Submitter:       bond.Submitter,
	})
}

func (p *Pool) parseNow(raw string) (uint64, error) {
	if raw == "" {
		return p.now(), nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/balances/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetBalance))
	sub.Path("/validators").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetValidators))
	sub.Path("/validators/next").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetNextValidator))
	sub.Path("/bonds/{index}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetBond))
}
