// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selcuktann/kroma/api"
	apicheckpoints "github.com/selcuktann/kroma/api/checkpoints"
	apipool "github.com/selcuktann/kroma/api/pool"
	"github.com/selcuktann/kroma/bridge"
	"github.com/selcuktann/kroma/checkpoint"
	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/pool"
	"github.com/selcuktann/kroma/state"
)

type fixture struct {
	server *httptest.Server
	pool   *pool.Pool
	store  *checkpoint.Store
	now    uint64
}

func newFixture(t *testing.T) *fixture {
	cfg := pool.DefaultConfig()
	cfg.MinBondAmount = big.NewInt(100)
	cfg.NonPenaltyPeriod = 300
	cfg.PenaltyPeriod = 300
	cfg.FinalizationPeriod = 1000
	cfg.GenesisTime = 0
	cfg.L2BlockInterval = 2

	st := state.New()
	store := checkpoint.NewStore(1800, 0, big.NewInt(100), cfg.FinalizationPeriod)
	notifier := bridge.NewRewardNotifier(bridge.DryRunPortal{}, kroma.ValidatorRewardAddress)
	p, err := pool.New(cfg, st, store, notifier)
	require.NoError(t, err)
	store.Bind(p)

	f := &fixture{pool: p, store: store, now: 3600}
	handler := api.New(p, store, func() uint64 { return f.now }, api.Options{
		AllowedOrigins: "*",
		EnableMetrics:  true,
	})
	f.server = httptest.NewServer(handler)
	t.Cleanup(f.server.Close)

	// one funded validator
	require.NoError(t, st.SetBalance(validator, big.NewInt(1000)))
	require.NoError(t, p.Deposit(validator, big.NewInt(500)))
	return f
}

var validator = kroma.BytesToAddress([]byte("v1"))

func (f *fixture) get(t *testing.T, path string) (int, []byte) {
	resp, err := f.server.Client().Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func (f *fixture) post(t *testing.T, path string, obj any) (int, []byte) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	resp, err := f.server.Client().Post(f.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestGetBalance(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/pool/balances/"+validator.String())
	require.Equal(t, http.StatusOK, status)

	var balance apipool.Balance
	require.NoError(t, json.Unmarshal(body, &balance))
	assert.Equal(t, big.NewInt(500), (*big.Int)(&balance.Balance))

	status, _ = f.get(t, "/pool/balances/not-an-address")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetValidators(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/pool/validators")
	require.Equal(t, http.StatusOK, status)

	var set apipool.ValidatorSet
	require.NoError(t, json.Unmarshal(body, &set))
	assert.Equal(t, uint64(1), set.Count)
	require.Len(t, set.Validators, 1)
	assert.Equal(t, validator, set.Validators[0])
}

func TestGetNextValidator(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/pool/validators/next")
	require.Equal(t, http.StatusOK, status)

	var next apipool.NextValidator
	require.NoError(t, json.Unmarshal(body, &next))
	assert.False(t, next.PublicRound)
	assert.Equal(t, validator, next.Validator)

	// way past the deadline the round is public
	status, body = f.get(t, "/pool/validators/next?now=999999")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &next))
	assert.True(t, next.PublicRound)
	assert.Equal(t, f.pool.Config().PublicRoundAddress, next.Validator)
}

func TestSubmitCheckpoint(t *testing.T) {
	f := newFixture(t)

	// bonds are not visible before submission
	status, _ := f.get(t, "/pool/bonds/0")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := f.get(t, "/checkpoints/next")
	require.Equal(t, http.StatusOK, status)
	var next apicheckpoints.Next
	require.NoError(t, json.Unmarshal(body, &next))
	assert.Equal(t, uint64(0), next.Index)
	assert.Equal(t, uint64(1800), next.BlockNumber)

	// off-turn submitters are rejected
	status, _ = f.post(t, "/checkpoints", &apicheckpoints.Submission{
		Submitter:   kroma.BytesToAddress([]byte("x1")),
		BlockNumber: 1800,
	})
	assert.Equal(t, http.StatusForbidden, status)

	// wrong block number is rejected
	status, _ = f.post(t, "/checkpoints", &apicheckpoints.Submission{
		Submitter:   validator,
		BlockNumber: 3600,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.post(t, "/checkpoints", &apicheckpoints.Submission{
		Submitter:   validator,
		BlockNumber: 1800,
		Root:        kroma.BytesToBytes32([]byte("root0")),
	})
	require.Equal(t, http.StatusOK, status)
	var accepted apicheckpoints.Accepted
	require.NoError(t, json.Unmarshal(body, &accepted))
	assert.Equal(t, uint64(0), accepted.Index)

	status, body = f.get(t, "/checkpoints/0")
	require.Equal(t, http.StatusOK, status)
	var cp apicheckpoints.JSONCheckpoint
	require.NoError(t, json.Unmarshal(body, &cp))
	assert.Equal(t, validator, cp.Submitter)
	assert.Equal(t, uint64(1800), cp.BlockNumber)
	assert.Equal(t, uint64(3600), cp.Timestamp)

	// the bond behind it is now visible
	status, body = f.get(t, "/pool/bonds/0")
	require.Equal(t, http.StatusOK, status)
	var bond apipool.Bond
	require.NoError(t, json.Unmarshal(body, &bond))
	assert.Equal(t, validator, bond.Submitter)
	assert.Equal(t, big.NewInt(100), (*big.Int)(&bond.Amount))
	assert.Equal(t, uint64(3600+1000), bond.ExpiresAt)
}
