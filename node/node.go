// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node holds the referral tree node and the pure aggregation run on it
// once its children are attached.
package node

import (
	"github.com/shopspring/decimal"
)

// Node is one participant of the referral forest.
type Node struct {
	ID       int64
	Address  string
	Referrer string
	Layer    int

	LockedAmount int64
	Days         int
	StartTime    int64
	TxID         string
	Penalty      decimal.Decimal

	Status        int
	NextBonusTime int64
	Signin        bool
	// ConfirmFailure is the kind of the last failed ledger confirmation.
	ConfirmFailure string

	Performance     int64
	Referrals       int
	Level           int
	TeamLevel       TeamLevel
	Burned          bool
	SmallAreaBurned bool
	BonusTable      BonusTable
	AreaTable       AreaTable

	LockedBonus    decimal.Decimal
	ReferralsBonus decimal.Decimal
	SigninBonus    decimal.Decimal
	TeamBonus      decimal.Decimal

	Children []*Node

	dirty bool
}

// IsRoot tells whether the node is the top of a tree.
func (n *Node) IsRoot() bool {
	return n.Layer == 1
}

// SetChildren attaches the direct children.
func (n *Node) SetChildren(children []*Node) {
	n.Children = children
}

// ClearChildren detaches the children.
func (n *Node) ClearChildren() {
	n.Children = nil
}

// CanBonus tells whether the node accrues at bonusTime.
func (n *Node) CanBonus(bonusTime int64) bool {
	return n.Status >= 0 && n.Status < n.Days && n.NextBonusTime == bonusTime
}

// CanComputeInTeam tells whether the node counts for its ancestors. The upper
// bound is inclusive so a node still counts on the tick it expires.
func (n *Node) CanComputeInTeam() bool {
	return n.Status >= 0 && n.Status <= n.Days
}

// CanUnlock tells whether the deposit may be unlocked early.
func (n *Node) CanUnlock() bool {
	return n.Status >= 0 && n.Status < n.Days
}

// CanSignin tells whether a signin may be recorded.
func (n *Node) CanSignin() bool {
	return n.CanUnlock() && !n.Signin
}

// NeedUpdate reports whether the node must be written back after this tick,
// and whether its status and next bonus time advance.
func (n *Node) NeedUpdate(bonusTime int64) (persist bool, advance bool) {
	if n.NextBonusTime == bonusTime {
		return true, n.Status >= 0 && n.Status < n.Days
	}
	return n.dirty, false
}

// Advance moves the node one accrual forward.
func (n *Node) Advance(interval int64) {
	n.Status++
	n.NextBonusTime += interval
}

// ResetBonus zeroes the per tick outputs.
func (n *Node) ResetBonus() {
	n.LockedBonus = decimal.Zero
	n.ReferralsBonus = decimal.Zero
	n.SigninBonus = decimal.Zero
	n.TeamBonus = decimal.Zero
}
