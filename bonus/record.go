// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonus

import (
	"github.com/shopspring/decimal"
)

// Record is one ledger entry of a node for one bonus tick.
type Record struct {
	ID             int64
	Address        string
	LockedBonus    decimal.Decimal
	ReferralsBonus decimal.Decimal
	SigninBonus    decimal.Decimal
	TeamBonus      decimal.Decimal
	Amount         decimal.Decimal
	Total          decimal.Decimal
	Remain         decimal.Decimal
	BonusTime      int64
}

// Parts holds the four bonuses a node earns in one tick.
type Parts struct {
	Locked    decimal.Decimal
	Referrals decimal.Decimal
	Signin    decimal.Decimal
	Team      decimal.Decimal
}

// Amount is the sum of the parts.
func (p Parts) Amount() decimal.Decimal {
	return Sum(p.Locked, p.Referrals, p.Signin, p.Team)
}

// Accumulate builds the record for bonusTime on top of prev. The series
// continues only when prev is exactly one interval earlier, otherwise a new
// series starts and continued is false.
func Accumulate(prev *Record, address string, parts Parts, bonusTime, interval int64) (rec Record, continued bool) {
	amount := parts.Amount()
	rec = Record{
		Address:        address,
		LockedBonus:    parts.Locked,
		ReferralsBonus: parts.Referrals,
		SigninBonus:    parts.Signin,
		TeamBonus:      parts.Team,
		Amount:         amount,
		Total:          amount,
		Remain:         amount,
		BonusTime:      bonusTime,
	}
	if prev != nil && prev.BonusTime+interval == bonusTime {
		rec.Total = prev.Total.Add(amount)
		rec.Remain = prev.Remain.Add(amount)
		continued = true
	}
	return rec, continued
}

// Withdraw returns remain minus amount, floored at zero.
func Withdraw(remain, amount decimal.Decimal) decimal.Decimal {
	left := remain.Sub(amount)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}
