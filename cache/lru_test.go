// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLRUInvalidSize(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)
}

func TestGetOrLoad(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	loads := 0
	loader := func(k string) (int, error) {
		loads++
		if k == "bad" {
			return 0, errors.New("not found")
		}
		return len(k), nil
	}

	v, err := c.GetOrLoad("abc", loader)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = c.GetOrLoad("abc", loader)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("bad", loader)
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())

	c.Add("x", 1)
	c.Add("y", 2)
	_, ok := c.Get("abc")
	assert.False(t, ok, "evicted")

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCacheStats(t *testing.T) {
	c, err := NewLRU[int, int](4)
	require.NoError(t, err)

	c.Add(1, 1)
	c.Get(1)
	c.Get(2)

	changed, hit, miss := c.Stats().Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ = c.Stats().Stats()
	assert.False(t, changed)

	c.Get(1)
	changed, hit, miss = c.Stats().Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(1), miss)
}

func TestHitRate(t *testing.T) {
	assert.Equal(t, "n/a", HitRate(0, 0))
	assert.Equal(t, "50.0%", HitRate(1, 1))
	assert.Equal(t, "66.7%", HitRate(2, 1))
}
