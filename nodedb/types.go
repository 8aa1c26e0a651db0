// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodedb

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Names of the global status counters.
const (
	StatusNodeBonus          = "node_bonus"
	StatusNodeBonusTimepoint = "node_bonus_timepoint"
)

// Absent is returned by GetStatus for unset counters.
const Absent = -1

// Op is the kind of a pending update.
type Op int

const (
	OpNew Op = iota + 1
	OpUnlock
	OpWithdraw
	OpSignin
	OpReactivate
)

func (o Op) String() string {
	switch o {
	case OpNew:
		return "new"
	case OpUnlock:
		return "unlock"
	case OpWithdraw:
		return "withdraw"
	case OpSignin:
		return "signin"
	case OpReactivate:
		return "reactivate"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Update is an entry of the pending update queue.
type Update struct {
	ID         int64
	Op         Op
	Address    string
	Referrer   string
	Amount     int64
	Days       int
	TxID       string
	Value      decimal.Decimal // withdrawal amount
	CreateTime int64
}

// HistoryEntry is a processed update with its outcome.
type HistoryEntry struct {
	Update
	Result      string
	ProcessTime int64
}

// Withdrawal is a payout taken from a bonus record.
type Withdrawal struct {
	ID         int64
	Address    string
	Amount     decimal.Decimal
	Remain     decimal.Decimal
	BonusID    int64
	CreateTime int64
}
