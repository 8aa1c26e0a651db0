// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vechain/sea-bonus/bonus"
)

// BonusEntry splits a subtree's locked bonus by how an ancestor of a given
// level sees it.
type BonusEntry struct {
	HighLevel  decimal.Decimal
	EqualLevel decimal.Decimal
	LowOne     decimal.Decimal
	Normal     decimal.Decimal
}

// Add returns the bucket wise sum.
func (e BonusEntry) Add(o BonusEntry) BonusEntry {
	return BonusEntry{
		HighLevel:  e.HighLevel.Add(o.HighLevel),
		EqualLevel: e.EqualLevel.Add(o.EqualLevel),
		LowOne:     e.LowOne.Add(o.LowOne),
		Normal:     e.Normal.Add(o.Normal),
	}
}

// Equal compares bucket values.
func (e BonusEntry) Equal(o BonusEntry) bool {
	return e.HighLevel.Equal(o.HighLevel) &&
		e.EqualLevel.Equal(o.EqualLevel) &&
		e.LowOne.Equal(o.LowOne) &&
		e.Normal.Equal(o.Normal)
}

// BonusTable holds one BonusEntry per ancestor level. Index 0 is level 1.
type BonusTable [bonus.MaxLevel]BonusEntry

// At returns the entry for an ancestor of level. Out of range levels are empty.
func (t *BonusTable) At(level int) BonusEntry {
	if level < 1 || level > bonus.MaxLevel {
		return BonusEntry{}
	}
	return t[level-1]
}

// Equal compares two tables entry by entry.
func (t *BonusTable) Equal(o *BonusTable) bool {
	for i := range t {
		if !t[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Encode renders the table as ';' separated entries of four ',' separated
// decimals.
func (t *BonusTable) Encode() string {
	var sb strings.Builder
	for i, e := range t {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(e.HighLevel.String())
		sb.WriteByte(',')
		sb.WriteString(e.EqualLevel.String())
		sb.WriteByte(',')
		sb.WriteString(e.LowOne.String())
		sb.WriteByte(',')
		sb.WriteString(e.Normal.String())
	}
	return sb.String()
}

// DecodeBonusTable parses an encoded table. The empty string is an empty table.
func DecodeBonusTable(s string) (BonusTable, error) {
	var t BonusTable
	if s == "" {
		return t, nil
	}
	entries := strings.Split(s, ";")
	if len(entries) != bonus.MaxLevel {
		return t, errors.Errorf("bonus table: %d entries", len(entries))
	}
	for i, entry := range entries {
		fields := strings.Split(entry, ",")
		if len(fields) != 4 {
			return t, errors.Errorf("bonus table: entry %d has %d fields", i+1, len(fields))
		}
		var vals [4]decimal.Decimal
		for j, f := range fields {
			v, err := decimal.NewFromString(f)
			if err != nil {
				return t, errors.Wrapf(err, "bonus table: entry %d", i+1)
			}
			vals[j] = v
		}
		t[i] = BonusEntry{vals[0], vals[1], vals[2], vals[3]}
	}
	return t, nil
}

// AreaEntry splits a subtree's locked amount into the small area and the big
// areas an ancestor of a given level sees.
type AreaEntry struct {
	Small int64
	Big   []int64
}

// Equal compares small totals and big areas in order.
func (e AreaEntry) Equal(o AreaEntry) bool {
	if e.Small != o.Small || len(e.Big) != len(o.Big) {
		return false
	}
	for i := range e.Big {
		if e.Big[i] != o.Big[i] {
			return false
		}
	}
	return true
}

// AreaTable holds one AreaEntry per ancestor level. Index 0 is level 1.
type AreaTable [bonus.MaxLevel]AreaEntry

// At returns the entry for an ancestor of level. Out of range levels are empty.
func (t *AreaTable) At(level int) AreaEntry {
	if level < 1 || level > bonus.MaxLevel {
		return AreaEntry{}
	}
	return t[level-1]
}

// Equal compares two tables entry by entry.
func (t *AreaTable) Equal(o *AreaTable) bool {
	for i := range t {
		if !t[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Encode renders the table as ';' separated "small:big,big,..." entries.
func (t *AreaTable) Encode() string {
	var sb strings.Builder
	for i, e := range t {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.FormatInt(e.Small, 10))
		sb.WriteByte(':')
		for j, b := range e.Big {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(b, 10))
		}
	}
	return sb.String()
}

// DecodeAreaTable parses an encoded table. The empty string is an empty table.
func DecodeAreaTable(s string) (AreaTable, error) {
	var t AreaTable
	if s == "" {
		return t, nil
	}
	entries := strings.Split(s, ";")
	if len(entries) != bonus.MaxLevel {
		return t, errors.Errorf("area table: %d entries", len(entries))
	}
	for i, entry := range entries {
		small, bigs, ok := strings.Cut(entry, ":")
		if !ok {
			return t, errors.Errorf("area table: entry %d malformed", i+1)
		}
		v, err := strconv.ParseInt(small, 10, 64)
		if err != nil {
			return t, errors.Wrapf(err, "area table: entry %d", i+1)
		}
		t[i].Small = v
		if bigs == "" {
			continue
		}
		for _, b := range strings.Split(bigs, ",") {
			v, err := strconv.ParseInt(b, 10, 64)
			if err != nil {
				return t, errors.Wrapf(err, "area table: entry %d", i+1)
			}
			t[i].Big = append(t[i].Big, v)
		}
	}
	return t, nil
}
