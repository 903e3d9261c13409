// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopDefault(t *testing.T) {
	// must not panic without initialization
	Counter("noop_counter").Add(1)
	Gauge("noop_gauge").Set(10)
	CounterVec("noop_vec", []string{"kind"}).AddWithLabel(1, map[string]string{"kind": "x"})
}

func TestPrometheusCounter(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("test_counter").Add(3)
	Gauge("test_gauge").Set(7)

	server := httptest.NewServer(HTTPHandler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "kroma_test_counter 3"))
	assert.True(t, strings.Contains(string(body), "kroma_test_gauge 7"))
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	load := LazyLoad(func() int {
		calls++
		return 42
	})
	assert.Equal(t, 42, load())
	assert.Equal(t, 42, load())
	assert.Equal(t, 1, calls)
}
