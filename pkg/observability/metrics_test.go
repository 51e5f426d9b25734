package observability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/databrook/databrook/pkg/observability"
)

func TestNewMetricsRegistersEveryInstrument(t *testing.T) {
	t.Parallel()

	mt := noop.NewMeterProvider().Meter("metrics_test")

	metrics, err := observability.NewMetrics(mt)
	require.NoError(t, err)
	require.NotNil(t, metrics)
}

func TestMetricsRecordersToleratesNilReceiver(t *testing.T) {
	t.Parallel()

	var metrics *observability.Metrics

	assert.NotPanics(t, func() {
		metrics.AddCacheHits(t.Context(), "node", 3)
		metrics.AddCacheMisses(t.Context(), "node", 1)
		metrics.RecordGrabDuration(t.Context(), 0.5)
		metrics.RecordNodeDuration(t.Context(), "node", "Class", 0.1)
	})
}

func TestMetricsRecordersAcceptRealInstruments(t *testing.T) {
	t.Parallel()

	mt := noop.NewMeterProvider().Meter("metrics_test")

	metrics, err := observability.NewMetrics(mt)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		metrics.AddCacheHits(t.Context(), "node", 3)
		metrics.AddCacheMisses(t.Context(), "node", 1)
		metrics.RecordGrabDuration(t.Context(), 0.5)
		metrics.RecordNodeDuration(t.Context(), "node", "Class", 0.1)
	})
}
