// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/vechain/sea-bonus/bonus"
)

// ComputePerformance sums the locked amounts of the whole team.
func (n *Node) ComputePerformance() int64 {
	var performance int64
	for _, c := range n.Children {
		performance += c.Performance
		if c.CanComputeInTeam() {
			performance += c.LockedAmount
		}
	}
	if n.Performance != performance {
		n.dirty = true
	}
	n.Performance = performance
	return performance
}

// ComputeReferrals counts the contributing direct children.
func (n *Node) ComputeReferrals() int {
	referrals := 0
	for _, c := range n.Children {
		if c.CanComputeInTeam() {
			referrals++
		}
	}
	if n.Referrals != referrals {
		n.dirty = true
	}
	n.Referrals = referrals
	return referrals
}

// ComputeReferralsBonus pays a share of each contributing child's daily rate.
func (n *Node) ComputeReferralsBonus(cfg *bonus.Config) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, c := range n.Children {
		if !c.CanComputeInTeam() {
			continue
		}
		rate, err := cfg.LockedBonus(c.LockedAmount, c.Days)
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(cfg.ReferralRate.Mul(rate))
	}
	return bonus.Round(sum), nil
}

// ComputeTeamLevel merges the children's histograms and adds every
// contributing child at its own level.
func (n *Node) ComputeTeamLevel() error {
	var t TeamLevel
	for _, c := range n.Children {
		t.Merge(&c.TeamLevel)
		if c.CanComputeInTeam() {
			t.Inc(c.Level)
		}
	}
	// validate before accepting
	if _, err := t.Encode(); err != nil {
		return err
	}
	if t != n.TeamLevel {
		n.dirty = true
	}
	n.TeamLevel = t
	return nil
}

// ComputeLevel walks the level table from the top. Below every tier the level
// follows the node's own deposit.
func (n *Node) ComputeLevel(cfg *bonus.Config) int {
	level := cfg.AmountLevel(n.LockedAmount)
	for _, req := range cfg.Levels {
		if n.Performance >= req.Performance && n.checkTeam(req) {
			level = req.Level
			break
		}
	}
	if n.Level != level {
		n.dirty = true
	}
	n.Level = level
	return level
}

func (n *Node) checkTeam(req bonus.LevelRequirement) bool {
	referrals, teams := 0, 0
	for _, c := range n.Children {
		if !c.CanComputeInTeam() || c.Level < req.ReferralLevel {
			continue
		}
		referrals++
		if c.TeamLevel.HasAtLeast(req.TeamLevel) {
			teams++
		}
	}
	if req.Teams == 0 {
		return referrals >= req.Referrals
	}
	return referrals >= req.Referrals && teams >= req.Teams
}

// Areas sums the children's area entries seen from the node's own level.
func (n *Node) Areas() AreaEntry {
	var all AreaEntry
	for _, c := range n.Children {
		e := c.AreaTable.At(n.Level)
		all.Small += e.Small
		all.Big = append(all.Big, e.Big...)
	}
	return all
}

// TeamBuckets sums the children's bonus entries seen from the node's own level.
func (n *Node) TeamBuckets() BonusEntry {
	all := zeroEntry()
	for _, c := range n.Children {
		all = all.Add(c.BonusTable.At(n.Level))
	}
	return all
}

// ComputeTeamBonus pays the team bonus of levels that earn one, after the
// burn of the unbalanced buckets.
func (n *Node) ComputeTeamBonus(cfg *bonus.Config) (burned, smallAreaBurned bool, amount decimal.Decimal, err error) {
	amount = decimal.Zero
	if n.Level < cfg.MinTeamLevel() {
		n.setBurn(false, false)
		return false, false, amount, nil
	}
	rate, err := cfg.TeamRate(n.Level)
	if err != nil {
		return false, false, amount, err
	}

	areas := n.Areas()
	smallAreaBurned = len(areas.Big) > 0 && areas.Small*2 > slices.Min(areas.Big)

	b := n.TeamBuckets()
	burned = !b.HighLevel.IsZero() || !b.EqualLevel.IsZero() || !b.LowOne.IsZero()

	normalKeep := cfg.Burn.Normal
	if smallAreaBurned {
		normalKeep = normalKeep.Mul(cfg.SmallAreaBurn)
	}
	kept := bonus.Sum(
		b.HighLevel.Mul(cfg.Burn.HighLevel),
		b.EqualLevel.Mul(cfg.Burn.EqualLevel),
		b.LowOne.Mul(cfg.Burn.LowOne),
		b.Normal.Mul(normalKeep),
	)
	n.setBurn(burned, smallAreaBurned)
	return burned, smallAreaBurned, bonus.Round(kept.Mul(rate)), nil
}

func (n *Node) setBurn(burned, smallAreaBurned bool) {
	if n.Burned != burned || n.SmallAreaBurned != smallAreaBurned {
		n.dirty = true
	}
	n.Burned, n.SmallAreaBurned = burned, smallAreaBurned
}

func zeroEntry() BonusEntry {
	return BonusEntry{decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero}
}

// ComputeBonusTable classifies the subtree's locked bonus for every possible
// ancestor level.
func (n *Node) ComputeBonusTable() {
	var table BonusTable
	own := decimal.Zero
	if n.CanComputeInTeam() {
		own = n.LockedBonus
	}
	for l := 1; l <= bonus.MaxLevel; l++ {
		from := zeroEntry()
		for _, c := range n.Children {
			from = from.Add(c.BonusTable.At(l))
		}
		if !n.CanComputeInTeam() {
			table[l-1] = from
			continue
		}
		e := zeroEntry()
		switch {
		case l < n.Level:
			e.HighLevel = bonus.Sum(from.HighLevel, from.EqualLevel, from.LowOne, from.Normal, own)
		case l == n.Level:
			e.HighLevel = from.HighLevel
			e.EqualLevel = bonus.Sum(from.EqualLevel, from.LowOne, from.Normal, own)
		case l == n.Level+1:
			e.HighLevel = from.HighLevel
			e.EqualLevel = from.EqualLevel
			e.LowOne = bonus.Sum(from.LowOne, from.Normal, own)
		default:
			e = from
			e.Normal = from.Normal.Add(own)
		}
		table[l-1] = e
	}
	if !table.Equal(&n.BonusTable) {
		n.dirty = true
	}
	n.BonusTable = table
}

// ComputeAreaTable splits the subtree's locked amount into small and big areas
// for every possible ancestor level. An ancestor one level above the node sees
// the whole subtree as a single big area.
func (n *Node) ComputeAreaTable() {
	var table AreaTable
	var own int64
	if n.CanComputeInTeam() {
		own = n.LockedAmount
	}
	for l := 1; l <= bonus.MaxLevel; l++ {
		var from AreaEntry
		for _, c := range n.Children {
			e := c.AreaTable.At(l)
			from.Small += e.Small
			from.Big = append(from.Big, e.Big...)
		}
		if !n.CanComputeInTeam() {
			table[l-1] = from
			continue
		}
		if l == n.Level+1 {
			area := from.Small + own
			for _, b := range from.Big {
				area += b
			}
			table[l-1] = AreaEntry{Big: []int64{area}}
		} else {
			table[l-1] = AreaEntry{Small: from.Small + own, Big: from.Big}
		}
	}
	if !table.Equal(&n.AreaTable) {
		n.dirty = true
	}
	n.AreaTable = table
}
