// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

// Non-negative statuses count the days a node has accrued. Negative values
// mark the phases outside accrual.
const (
	StatusActive          = 0
	StatusCreating        = -1
	StatusExited          = -2
	StatusExiting         = -3
	StatusExitConfirmed   = -4
	StatusUnlocking       = -5
	StatusUnlockPending   = -6
	StatusUnlockConfirmed = -7
	StatusRejected        = -8
)

// StatusName maps a status to the label shown to users.
func StatusName(status int) string {
	switch {
	case status >= 0:
		return "ACTIVE"
	case status == StatusCreating:
		return "CREATING"
	case status == StatusExited, status == StatusExiting:
		return "EXITING"
	case status == StatusExitConfirmed:
		return "EXIT_ENSURED"
	case status == StatusUnlocking, status == StatusUnlockPending:
		return "UNLOCKING"
	case status == StatusUnlockConfirmed:
		return "UNLOCK_ENSURED"
	case status == StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal tells whether the deposit of a node with this status has been
// fully returned, so the address may lock again.
func IsTerminal(status int) bool {
	return status == StatusExitConfirmed || status == StatusUnlockConfirmed
}
