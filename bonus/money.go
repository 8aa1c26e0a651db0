// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonus

import "github.com/shopspring/decimal"

// Places is the number of decimal places kept for money.
const Places = 3

// Round rounds d to Places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Sum adds all values without rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	s := decimal.Zero
	for _, v := range values {
		s = s.Add(v)
	}
	return s
}
