// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/vechain/sea-bonus/bonus"
)

const (
	teamLevelRadix = 18
	teamLevelWidth = 4
	// MaxTeamLevelCount is the largest count one histogram field can hold.
	MaxTeamLevelCount = teamLevelRadix*teamLevelRadix*teamLevelRadix*teamLevelRadix - 1
)

const teamLevelDigits = "0123456789AbCDEFGH"

var lowerDigits = strings.ToLower(teamLevelDigits)

// ErrTeamLevelOverflow is returned when a level count does not fit a field.
var ErrTeamLevelOverflow = errors.New("team level count overflow")

// TeamLevel counts the team members at each level. Index 0 is level 1.
type TeamLevel [bonus.MaxLevel]int

// Count returns the number of members at level. Out of range levels count 0.
func (t *TeamLevel) Count(level int) int {
	if level < 1 || level > bonus.MaxLevel {
		return 0
	}
	return t[level-1]
}

// Inc adds one member at level. Levels outside 1..MaxLevel are ignored.
func (t *TeamLevel) Inc(level int) {
	if level >= 1 && level <= bonus.MaxLevel {
		t[level-1]++
	}
}

// Merge adds other into t.
func (t *TeamLevel) Merge(other *TeamLevel) {
	for i := range t {
		t[i] += other[i]
	}
}

// HasAtLeast tells whether anyone in the team holds level or above.
func (t *TeamLevel) HasAtLeast(level int) bool {
	for l := max(level, 1); l <= bonus.MaxLevel; l++ {
		if t[l-1] > 0 {
			return true
		}
	}
	return false
}

// Encode renders the histogram as fixed width base 18 fields, one per level.
func (t *TeamLevel) Encode() (string, error) {
	var sb strings.Builder
	sb.Grow(bonus.MaxLevel * teamLevelWidth)

	var field [teamLevelWidth]byte
	for i, c := range t {
		if c < 0 || c > MaxTeamLevelCount {
			return "", errors.Wrapf(ErrTeamLevelOverflow, "level %d count %d", i+1, c)
		}
		for j := teamLevelWidth - 1; j >= 0; j-- {
			field[j] = teamLevelDigits[c%teamLevelRadix]
			c /= teamLevelRadix
		}
		sb.Write(field[:])
	}
	return sb.String(), nil
}

// DecodeTeamLevel parses an encoded histogram. Digits are case insensitive and
// the empty string is an empty histogram.
func DecodeTeamLevel(s string) (TeamLevel, error) {
	var t TeamLevel
	if s == "" {
		return t, nil
	}
	if len(s) != bonus.MaxLevel*teamLevelWidth {
		return t, errors.Errorf("team level: invalid length %d", len(s))
	}
	for i := range t {
		v := 0
		for _, ch := range s[i*teamLevelWidth : (i+1)*teamLevelWidth] {
			d := strings.IndexRune(lowerDigits, unicode.ToLower(ch))
			if d < 0 {
				return t, errors.Errorf("team level: invalid digit %q", ch)
			}
			v = v*teamLevelRadix + d
		}
		t[i] = v
	}
	return t, nil
}
