// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"github.com/vechain/sea-bonus/metrics"
)

var (
	metricUpdates       = metrics.LazyLoadCounterVec("lifecycle_updates_count", []string{"op", "result"})
	metricConfirmations = metrics.LazyLoadCounterVec("lifecycle_confirmations_count", []string{"result"})
	metricPassDuration  = metrics.LazyLoadHistogram("lifecycle_pass_duration_ms", metrics.BucketLayer)
)
