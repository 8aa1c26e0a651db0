// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transferdb

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction tells whether a leg moves value into or out of an address.
type Direction int

const (
	In Direction = iota + 1
	Out
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Leg is one side of a recorded transfer.
type Leg struct {
	TxID      string
	Index     int
	Address   string
	Asset     string
	Value     decimal.Decimal
	Direction Direction
	BlockTime int64
}

func (l *Leg) String() string {
	return fmt.Sprintf(`
		Leg(
			txID:      %v,
			index:     %v,
			address:   %v,
			asset:     %v,
			value:     %v,
			direction: %v,
			blockTime: %v)`,
		l.TxID,
		l.Index,
		l.Address,
		l.Asset,
		l.Value,
		l.Direction,
		l.BlockTime)
}
