// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/shopspring/decimal"

	"github.com/vechain/sea-bonus/bonus"
)

// Evaluate runs the whole per tick pipeline on a node whose children are
// already evaluated and attached.
//
// When replay is not nil the node already accrued at bonusTime before a
// restart; its recorded bonuses are restored instead of being paid again, so
// its ancestors see the same tables as in an uninterrupted run.
//
// It returns whether a new bonus record has to be written.
func (n *Node) Evaluate(cfg *bonus.Config, bonusTime int64, replay *bonus.Parts) (accrue bool, err error) {
	accrue = replay == nil && n.CanBonus(bonusTime)

	n.ResetBonus()
	switch {
	case accrue:
		if n.LockedBonus, err = cfg.LockedBonus(n.LockedAmount, n.Days); err != nil {
			return false, err
		}
	case replay != nil:
		n.LockedBonus = replay.Locked
	}

	n.ComputePerformance()
	n.ComputeReferrals()
	if err := n.ComputeTeamLevel(); err != nil {
		return false, err
	}
	n.ComputeLevel(cfg)

	// burn flags follow the tree on every tick, paid or not
	_, _, team, err := n.ComputeTeamBonus(cfg)
	if err != nil {
		return false, err
	}

	if accrue || replay != nil {
		referrals, err := n.ComputeReferralsBonus(cfg)
		if err != nil {
			return false, err
		}
		if replay != nil {
			n.ReferralsBonus, n.SigninBonus, n.TeamBonus = replay.Referrals, replay.Signin, replay.Team
		} else {
			n.ReferralsBonus, n.TeamBonus = referrals, team
			if n.Signin {
				n.SigninBonus = bonus.Round(cfg.SigninRate.Mul(n.LockedBonus))
				n.Signin = false
				n.dirty = true
			}
		}
	}

	n.ComputeBonusTable()
	n.ComputeAreaTable()
	return accrue, nil
}

// Parts returns the bonuses computed by the last Evaluate.
func (n *Node) Parts() bonus.Parts {
	return bonus.Parts{
		Locked:    n.LockedBonus,
		Referrals: n.ReferralsBonus,
		Signin:    n.SigninBonus,
		Team:      n.TeamBonus,
	}
}

// Amount is the sum of the bonuses computed by the last Evaluate.
func (n *Node) Amount() decimal.Decimal {
	return n.Parts().Amount()
}
