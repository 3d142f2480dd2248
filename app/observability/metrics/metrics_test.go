package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDbQueryDurationSecondsRecords(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	m := Get()
	require.NotNil(t, m.DbQueryDurationSeconds)

	ctx := context.Background()
	m.DbQueryDurationSeconds.Record(ctx, 0.042,
		metric.WithAttributes(attribute.String("query", "search_sites")))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var found bool
	for _, scope := range rm.ScopeMetrics {
		for _, inst := range scope.Metrics {
			if inst.Name != "db_query_duration_seconds" {
				continue
			}
			found = true
			hist, ok := inst.Data.(metricdata.Histogram[float64])
			require.True(t, ok, "expected a float64 histogram")
			require.Len(t, hist.DataPoints, 1)
			dp := hist.DataPoints[0]
			assert.Equal(t, uint64(1), dp.Count)
			assert.InDelta(t, 0.042, dp.Sum, 1e-9)
			queryName, _ := dp.Attributes.Value(attribute.Key("query"))
			assert.Equal(t, "search_sites", queryName.AsString())
		}
	}
	assert.True(t, found, "db_query_duration_seconds not exported")
}
