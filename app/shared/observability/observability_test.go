package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg, "racepack")
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "Claim", "RacePackService")
	m.RecordOperationAttempt(ctx, "Claim", "RacePackService")
	m.RecordOperationSuccess(ctx, "Claim", "RacePackService")
	m.RecordOperationFailure(ctx, "Claim", "RacePackService")
	m.RecordOperationDuration(ctx, "Claim", "RacePackService", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("Claim", "RacePackService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.successes.WithLabelValues("Claim", "RacePackService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("Claim", "RacePackService")))

	count, err := testutil.GatherAndCount(reg, "racepack_racepack_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestSetupTracingWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "racepack", "", 1)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
