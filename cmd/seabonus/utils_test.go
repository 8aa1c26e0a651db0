// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/sea-bonus/log"
)

func TestHealthGap(t *testing.T) {
	assert.Equal(t, time.Minute, healthGap(time.Second))
	assert.Equal(t, 10*time.Minute, healthGap(time.Minute))
}

func TestMakeName(t *testing.T) {
	name := makeName("SeaBonus", "1.0.0-abc")
	assert.Equal(t, "SeaBonus/v1.0.0-abc/"+runtime.GOOS+"/"+runtime.Version(), name)
}

func TestDefaultDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := defaultDataDir()
	assert.True(t, strings.HasPrefix(dir, home))
	assert.Contains(t, filepath.Base(dir), "org.sea.bonus")
}

func TestInitLogger(t *testing.T) {
	old := log.Root()
	defer log.SetDefault(old)

	level := initLogger(uint64(log.LegacyLevelDebug), true)
	assert.Equal(t, slog.LevelDebug, level.Level())

	level.Set(slog.LevelWarn)
	assert.False(t, log.Root().Enabled(t.Context(), slog.LevelInfo))
}
