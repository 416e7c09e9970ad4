package otelhook

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestCountersByEntity(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	c, err := New(mp)
	if err != nil {
		t.Fatal(err)
	}
	_ = c.CacheMiss(ctx, "Entry", "id1")
	_ = c.CacheMiss(ctx, "Entry", "id2")
	_ = c.CacheMiss(ctx, "Show", "s1")
	_ = c.DataMiss(ctx, "Entry", "id2")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}

	sums := map[string]map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: unexpected data %T", m.Name, m.Data)
			}
			sums[m.Name] = map[string]int64{}
			for _, dp := range data.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key("entity"))
				sums[m.Name][v.AsString()] = dp.Value
			}
		}
	}

	if sums["docache.cache_miss"]["Entry"] != 2 || sums["docache.cache_miss"]["Show"] != 1 {
		t.Fatalf("cache_miss sums %v", sums["docache.cache_miss"])
	}
	if sums["docache.data_miss"]["Entry"] != 1 {
		t.Fatalf("data_miss sums %v", sums["docache.data_miss"])
	}
}
