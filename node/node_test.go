// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvance(t *testing.T) {
	n := newNode("a", 1000, 2)
	n.Advance(86400)
	assert.Equal(t, 1, n.Status)
	assert.Equal(t, tick+86400, n.NextBonusTime)
	assert.True(t, n.CanComputeInTeam())

	n.Advance(86400)
	assert.Equal(t, 2, n.Status)
	assert.False(t, n.CanBonus(n.NextBonusTime))
	// still counted on the tick it reaches its term
	assert.True(t, n.CanComputeInTeam())
}

func TestChildren(t *testing.T) {
	root := newNode("r", 1000, 30)
	root.Layer = 1
	assert.True(t, root.IsRoot())
	assert.Empty(t, root.Children)

	root.SetChildren([]*Node{newNode("c", 1000, 30)})
	assert.Len(t, root.Children, 1)
	root.ClearChildren()
	assert.Empty(t, root.Children)

	child := newNode("c", 1000, 30)
	child.Layer = 2
	assert.False(t, child.IsRoot())
}

func TestResetBonus(t *testing.T) {
	n := newNode("a", 1000, 30)
	n.LockedBonus = dec("1.64")
	n.SigninBonus = dec("0.164")
	n.ResetBonus()
	assert.True(t, n.LockedBonus.IsZero())
	assert.True(t, n.ReferralsBonus.IsZero())
	assert.True(t, n.SigninBonus.IsZero())
	assert.True(t, n.TeamBonus.IsZero())
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{StatusActive, false},
		{StatusCreating, false},
		{StatusExited, false},
		{StatusExiting, false},
		{StatusExitConfirmed, true},
		{StatusUnlocking, false},
		{StatusUnlockPending, false},
		{StatusUnlockConfirmed, true},
		{StatusRejected, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTerminal(tt.status), StatusName(tt.status))
	}
}
