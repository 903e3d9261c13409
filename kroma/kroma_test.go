// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kroma_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selcuktann/kroma/kroma"
)

func TestAddressString(t *testing.T) {
	addr, err := kroma.ParseAddress("abcdef0102030405060708090a0b0c0d0e0f1012")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0102030405060708090a0b0c0d0e0f1012", addr.String())
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"0xabcdef0102030405060708090a0b0c0d0e0f1012", ""},
		{"abcdef0102030405060708090a0b0c0d0e0f1012", ""},
		{"0Xabcdef0102030405060708090a0b0c0d0e0f1012", ""},
		{"0xabcdef", "invalid length"},
		{"ffabcdef0102030405060708090a0b0c0d0e0f1012", "invalid prefix"},
		{"0xzzcdef0102030405060708090a0b0c0d0e0f1012", "invalid byte"},
	}
	for _, tt := range tests {
		_, err := kroma.ParseAddress(tt.input)
		if tt.err == "" {
			assert.NoError(t, err, tt.input)
		} else {
			assert.ErrorContains(t, err, tt.err, tt.input)
		}
	}
}

func TestAddressJSON(t *testing.T) {
	addr := kroma.BytesToAddress([]byte("v1"))

	data, err := json.Marshal(&addr)
	require.NoError(t, err)

	var decoded kroma.Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)
}

func TestBytesToAddress(t *testing.T) {
	// short input is left padded
	addr := kroma.BytesToAddress([]byte{1})
	assert.Equal(t, "0x0000000000000000000000000000000000000001", addr.String())
	assert.True(t, kroma.Address{}.IsZero())
	assert.False(t, addr.IsZero())
}

func TestBytes32(t *testing.T) {
	b := kroma.BytesToBytes32([]byte{1})
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000001", b.String())
	assert.Equal(t, "0x00000000…00000001", b.AbbrevString())
	assert.False(t, b.IsZero())

	parsed, err := kroma.ParseBytes32(b.String())
	require.NoError(t, err)
	assert.Equal(t, b, parsed)

	_, err = kroma.ParseBytes32("0x01")
	assert.ErrorContains(t, err, "invalid length")
}

func TestBytes32JSON(t *testing.T) {
	b := kroma.BytesToBytes32([]byte("root"))

	data, err := json.Marshal(&b)
	require.NoError(t, err)

	var decoded kroma.Bytes32
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded)
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t,
		"0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		kroma.Blake2b(nil).String())

	// multi-part writes hash the concatenation
	assert.Equal(t, kroma.Blake2b([]byte("ab")), kroma.Blake2b([]byte("a"), []byte("b")))
}

func TestKeccak256(t *testing.T) {
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		kroma.Keccak256(nil).String())
	assert.Equal(t, kroma.Keccak256([]byte("ab")), kroma.Keccak256([]byte("a"), []byte("b")))
}
