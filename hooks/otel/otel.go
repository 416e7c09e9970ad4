// Package otelhook counts miss events with OpenTelemetry metrics.
package otelhook

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/unkn0wn-root/docache"
)

const scope = "github.com/unkn0wn-root/docache"

// Counters records docache.cache_miss and docache.data_miss, both
// attributed by entity.
type Counters struct {
	cacheMiss metric.Int64Counter
	dataMiss  metric.Int64Counter
}

var (
	_ docache.MissFunc = (*Counters)(nil).CacheMiss
	_ docache.MissFunc = (*Counters)(nil).DataMiss
)

// New registers the counters on mp. A nil mp uses the global provider.
func New(mp metric.MeterProvider) (*Counters, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(scope)

	cm, err := m.Int64Counter("docache.cache_miss",
		metric.WithDescription("Keys not found in the cache at read time"),
		metric.WithUnit("{key}"))
	if err != nil {
		return nil, err
	}
	dm, err := m.Int64Counter("docache.data_miss",
		metric.WithDescription("Keys not found in the backing store"),
		metric.WithUnit("{key}"))
	if err != nil {
		return nil, err
	}
	return &Counters{cacheMiss: cm, dataMiss: dm}, nil
}

func (c *Counters) CacheMiss(ctx context.Context, entity, _ string) error {
	c.cacheMiss.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
	return nil
}

func (c *Counters) DataMiss(ctx context.Context, entity, _ string) error {
	c.dataMiss.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
	return nil
}
