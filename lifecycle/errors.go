// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"github.com/pkg/errors"
)

// Reasons recorded in the update history and in node confirm failures.
const (
	ResultOK = "ok"

	ReasonInvalidAddress   = "invalid_address"
	ReasonInvalidTerm      = "invalid_term"
	ReasonInvalidAmount    = "invalid_amount"
	ReasonAlreadyExists    = "already_exists"
	ReasonReferrerNotFound = "referrer_not_found"
	ReasonNotFound         = "not_found"
	ReasonTxIDUsed         = "txid_used"
	ReasonMissingTxID      = "missing_txid"
	ReasonCannotUnlock     = "cannot_unlock"
	ReasonCannotSignin     = "cannot_signin"
	ReasonCannotReactivate = "cannot_reactivate"
	ReasonNoBonus          = "no_bonus"
	ReasonUnknownOp        = "unknown_op"

	ReasonLegMissing     = "leg_missing"
	ReasonAmountMismatch = "amount_mismatch"
)

// ErrNotPrepared is returned when no bonus timepoint has been seeded yet.
var ErrNotPrepared = errors.New("bonus timepoint not prepared")

// Rejection is a validation failure of a pending update. The update is
// consumed and the reason kept in its history entry.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return "update rejected: " + r.Reason
}

func reject(reason string) error {
	return &Rejection{Reason: reason}
}

// IsRejection tells whether err is a *Rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
