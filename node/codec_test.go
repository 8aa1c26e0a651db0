// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamLevelEncode(t *testing.T) {
	var tl TeamLevel
	enc, err := tl.Encode()
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("0", 96), enc)

	tl[0] = 1
	tl[1] = 11
	tl[2] = 18
	tl[23] = MaxTeamLevelCount
	enc, err = tl.Encode()
	require.NoError(t, err)
	assert.Equal(t, "0001", enc[0:4])
	assert.Equal(t, "000b", enc[4:8])
	assert.Equal(t, "0010", enc[8:12])
	assert.Equal(t, "HHHH", enc[92:96])

	tl[5] = MaxTeamLevelCount + 1
	_, err = tl.Encode()
	assert.ErrorIs(t, err, ErrTeamLevelOverflow)
}

func TestDecodeTeamLevel(t *testing.T) {
	empty, err := DecodeTeamLevel("")
	require.NoError(t, err)
	assert.Equal(t, TeamLevel{}, empty)

	upper := "000B" + "00a0" + strings.Repeat("0", 88)
	tl, err := DecodeTeamLevel(upper)
	require.NoError(t, err)
	assert.Equal(t, 11, tl.Count(1))
	assert.Equal(t, 180, tl.Count(2))
	assert.Equal(t, 0, tl.Count(25))

	for _, bad := range []string{"0001", strings.Repeat("0", 95) + "Z", strings.Repeat("0", 97)} {
		_, err := DecodeTeamLevel(bad)
		assert.Error(t, err, bad)
	}
}

func TestTeamLevelRoundTrip(t *testing.T) {
	f := fuzz.New().Funcs(func(c *int, cc fuzz.Continue) {
		*c = cc.Intn(MaxTeamLevelCount + 1)
	})
	for range 200 {
		var tl TeamLevel
		f.Fuzz(&tl)
		enc, err := tl.Encode()
		require.NoError(t, err)
		dec, err := DecodeTeamLevel(enc)
		require.NoError(t, err)
		assert.Equal(t, tl, dec)
	}
}

func TestBonusTableRoundTrip(t *testing.T) {
	f := fuzz.New().Funcs(func(d *decimal.Decimal, c fuzz.Continue) {
		*d = decimal.New(c.Int63n(1_000_000_000), -int32(c.Intn(4)))
	})
	for range 100 {
		var table BonusTable
		f.Fuzz(&table)
		dec, err := DecodeBonusTable(table.Encode())
		require.NoError(t, err)
		assert.True(t, table.Equal(&dec))
		assert.Equal(t, table.Encode(), dec.Encode())
	}

	empty, err := DecodeBonusTable("")
	require.NoError(t, err)
	var zero BonusTable
	assert.True(t, zero.Equal(&empty))

	for _, bad := range []string{"1,2,3,4", strings.Repeat("1,2,3;", 23) + "1,2,3", strings.Repeat("1,2,3,x;", 23) + "1,2,3,4"} {
		_, err := DecodeBonusTable(bad)
		assert.Error(t, err, bad)
	}
}

func TestAreaTableRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0.3).NumElements(0, 4).Funcs(func(v *int64, c fuzz.Continue) {
		*v = c.Int63n(1_000_000_000_000)
	})
	for range 100 {
		var table AreaTable
		f.Fuzz(&table)
		dec, err := DecodeAreaTable(table.Encode())
		require.NoError(t, err)
		assert.True(t, table.Equal(&dec))
	}

	var table AreaTable
	table[4] = AreaEntry{Small: 3000, Big: []int64{10000, 20000}}
	assert.True(t, strings.HasPrefix(table.Encode(), "0:;0:;0:;0:;3000:10000,20000;0:"))

	for _, bad := range []string{"0:", strings.Repeat("0;", 23) + "0", strings.Repeat("0:1,x;", 23) + "0:"} {
		_, err := DecodeAreaTable(bad)
		assert.Error(t, err, bad)
	}
}
