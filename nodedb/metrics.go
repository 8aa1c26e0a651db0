// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodedb

import (
	"time"

	"github.com/vechain/sea-bonus/metrics"
)

var metricTxDuration = metrics.LazyLoadHistogramVec(
	"nodedb_tx_duration_ms", []string{"outcome"}, []int64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
)

func observeTx(start time.Time, err error) {
	if metrics.NoOp() {
		return
	}
	outcome := "commit"
	if err != nil {
		outcome = "rollback"
	}
	metricTxDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"outcome": outcome})
}
