// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scheduler

import (
	"github.com/vechain/sea-bonus/metrics"
)

var (
	metricLayerDuration = metrics.LazyLoadHistogram("scheduler_layer_duration_ms", metrics.BucketLayer)
	metricTickDuration  = metrics.LazyLoadHistogram("scheduler_tick_duration_ms", metrics.BucketTick)
	metricStatus        = metrics.LazyLoadGaugeVec("scheduler_status", []string{"name"})
	metricNodes         = metrics.LazyLoadCounterVec("scheduler_nodes_count", []string{"result"})
	metricRecovers      = metrics.LazyLoadCounter("scheduler_recover_count")
)
