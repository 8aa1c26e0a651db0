// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand/v2"

	"github.com/vechain/sea-bonus/bonus"
)

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandTerm picks a valid deposit amount and duration.
func RandTerm() (amount int64, days int) {
	return bonus.Amounts[RandIntN(len(bonus.Amounts))], bonus.Durations[RandIntN(len(bonus.Durations))]
}
