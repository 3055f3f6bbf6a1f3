package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.RecordRun("analysis", "success", 2*time.Second)
	m.RecordBatch("analysis")
	m.RecordBatch("analysis")
	m.RecordGatewayFailure("rate_limited")
	m.RecordDecodeFailures("analysis", 3)
	m.RecordDecodeFailures("analysis", 0)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordModelUsage("", "")

	require.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("analysis", "success")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Batches.WithLabelValues("analysis")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.GatewayFailures.WithLabelValues("rate_limited")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.DecodeFailures.WithLabelValues("analysis")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ModelUsage.WithLabelValues("unknown", "unknown")))

	done := m.TrackJob("connect")
	require.Equal(t, 1.0, testutil.ToFloat64(m.JobsInFlight.WithLabelValues("connect")))
	done()
	require.Equal(t, 0.0, testutil.ToFloat64(m.JobsInFlight.WithLabelValues("connect")))

	count, err := testutil.GatherAndCount(m.Registry(), "legacylift_run_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordRun("analysis", "success", time.Second)
	m.RecordBatch("analysis")
	m.RecordGatewayFailure("network")
	m.RecordDecodeFailures("analysis", 1)
	m.TrackJob("ndjson")()
	m.RecordTransportError("", "")
	m.RecordCacheLookup(true)
}
