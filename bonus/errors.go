// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonus

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrRateNotFound is returned when an (amount, days) pair has no rate.
	ErrRateNotFound = errors.New("locked bonus rate not found")
	// ErrPenaltyNotFound is returned when an (amount, days) pair has no penalty.
	ErrPenaltyNotFound = errors.New("unlock penalty not found")
	// ErrLevelNotFound is returned when a level has no team bonus rate.
	ErrLevelNotFound = errors.New("team bonus rate not found")
)

// ConfigError reports a deployment defect in the bonus tables. It is never
// caused by node data and should stop the engine.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bonus config: %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Cause implements the pkg/errors causer.
func (e *ConfigError) Cause() error { return e.Err }

// IsConfigError tells whether err or anything it wraps is a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
