// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLegacyLevel(t *testing.T) {
	tests := []struct {
		legacy int
		want   slog.Level
	}{
		{LegacyLevelCrit, LevelCrit},
		{LegacyLevelError, LevelError},
		{LegacyLevelWarn, LevelWarn},
		{LegacyLevelInfo, LevelInfo},
		{LegacyLevelDebug, LevelDebug},
		{LegacyLevelTrace, LevelTrace},
		{9, LevelTrace},
		{-1, LevelCrit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromLegacyLevel(tt.legacy), "legacy %d", tt.legacy)
	}
}

func TestTerminalHandler(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelInfo)

	l := NewLogger(NewTerminalHandlerWithLevel(&buf, &lvl, false))
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Info("layer processed", "layer", 3, "nodes", 12, "err", errors.New("a b"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO  ["))
	assert.Contains(t, out, "layer processed")
	assert.Contains(t, out, "layer=3")
	assert.Contains(t, out, `err="a b"`)

	buf.Reset()
	l.Info("accrued", "amount", decimal.RequireFromString("2.6"))
	assert.Contains(t, buf.String(), "amount=2.600")

	buf.Reset()
	lvl.Set(LevelDebug)
	l.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelTrace)

	l := NewLogger(JSONHandlerWithLevel(&buf, &lvl))
	l.Trace("tick", "pkg", "scheduler", "amount", decimal.RequireFromString("13.47"))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "trace", m["lvl"])
	assert.Equal(t, "tick", m["msg"])
	assert.Equal(t, "scheduler", m["pkg"])
	assert.Equal(t, "13.470", m["amount"])
}

func TestParseLevel(t *testing.T) {
	for _, l := range []slog.Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelCrit} {
		got, ok := ParseLevel(LevelString(l))
		assert.True(t, ok)
		assert.Equal(t, l, got)
	}
	_, ok := ParseLevel("verbose")
	assert.False(t, ok)
}

func TestWithContextFollowsRoot(t *testing.T) {
	old := Root()
	defer SetDefault(old)

	pkgLogger := WithContext("pkg", "test")

	var buf bytes.Buffer
	SetDefault(NewLogger(LogfmtHandlerWithLevel(&buf, new(slog.LevelVar))))

	pkgLogger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "pkg=test")
	assert.Contains(t, buf.String(), "k=v")
	assert.Contains(t, buf.String(), "lvl=info")
}
