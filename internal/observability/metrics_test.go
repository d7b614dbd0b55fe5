package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpvarRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "addEntity", true, 20*time.Millisecond)
	rec.Observe(ctx, "addEntity", true, 30*time.Millisecond)
	rec.Observe(ctx, "addEntity", false, 5*time.Millisecond)
	rec.Observe(ctx, "", true, time.Second)

	snap := rec.Snapshot()
	assert.InDelta(t, 55.0, snap.DurationsMS["addEntity"], 0.001)
	assert.Equal(t, int64(2), snap.Results["addEntity"]["success"])
	assert.Equal(t, int64(1), snap.Results["addEntity"]["error"])
	assert.NotContains(t, snap.Results, "", "blank operations are dropped")
	assert.NotEmpty(t, rec.Name())
}

func TestPrometheusRecorderCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorder(registry)
	ctx := context.Background()

	rec.Observe(ctx, "addEntity", true, 10*time.Millisecond)
	rec.Observe(ctx, "addEntity", false, 10*time.Millisecond)
	rec.Observe(ctx, "getEntityDetail", true, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("addEntity", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("addEntity", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("getEntityDetail", "success")))

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["metarepo_operations_total"])
	assert.True(t, names["metarepo_operation_duration_seconds"])
}

func TestNoopRecorder(t *testing.T) {
	var rec MetricsRecorder = NoopMetricsRecorder{}
	rec.Observe(context.Background(), "anything", true, time.Second)
}
