// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestNoopByDefault(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, m := range []any{
		Gauge("g"),
		GaugeVec("gv", nil),
		Counter("c"),
		CounterVec("cv", nil),
		Histogram("h", nil),
		HistogramVec("hv", nil, nil),
	} {
		assert.IsType(t, &noopMeters{}, m)
	}
	assert.Nil(t, HTTPHandler())
	assert.True(t, NoOp())
}

func TestPromMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()
	lazyTicks := LazyLoadCounter("test_ticks")
	lazyLayers := LazyLoadHistogramVec("test_layer_ms", []string{"outcome"}, BucketLayer)
	lazyStatus := LazyLoadGaugeVec("test_status", []string{"name"})

	InitializePrometheusMetrics()
	assert.False(t, NoOp())
	require.IsType(t, &promCountMeter{}, lazyTicks())
	require.IsType(t, &promHistogramVecMeter{}, lazyLayers())
	require.IsType(t, &promGaugeVecMeter{}, lazyStatus())

	lazyTicks().Add(1)
	Counter("test_ticks").Add(2)
	lazyLayers().ObserveWithLabels(7, map[string]string{"outcome": "ok"})
	lazyLayers().ObserveWithLabels(3, map[string]string{"outcome": "error"})

	lazyStatus().SetWithLabel(5, map[string]string{"name": "node_bonus"})
	GaugeVec("test_status", []string{"name"}).AddWithLabel(-2, map[string]string{"name": "node_bonus"})
	Gauge("test_layer").Set(9)

	got := gather(t)
	assert.Equal(t, float64(3), got["seabonus_test_ticks"].Metric[0].GetCounter().GetValue())

	var sum float64
	for _, m := range got["seabonus_test_layer_ms"].Metric {
		sum += m.GetHistogram().GetSampleSum()
	}
	assert.Equal(t, float64(10), sum)
	assert.Equal(t, float64(3), got["seabonus_test_status"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(9), got["seabonus_test_layer"].Metric[0].GetGauge().GetValue())
	assert.NotNil(t, HTTPHandler())
}
