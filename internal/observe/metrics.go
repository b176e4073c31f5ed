// Package observe holds the OpenTelemetry instruments of the vault engine.
//
// Instruments are created from a caller-supplied [metric.MeterProvider].
// Tests should use an SDK provider with a ManualReader; production callers
// that export nothing pass a noop provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all vault metrics.
const meterName = "github.com/calvinalkan/campaign-vault"

// Metrics holds the engine's instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	// Loads counts successful entity loads. Attribute: type.
	Loads metric.Int64Counter

	// Saves counts successful entity saves. Attribute: type.
	Saves metric.Int64Counter

	// Errors counts failed loads and saves. Attributes: op, code.
	Errors metric.Int64Counter

	// BacklinksDegraded counts loads that returned no backlinks because the
	// vault index could not be read.
	BacklinksDegraded metric.Int64Counter

	// Duration tracks load and save latency in seconds. Attribute: op.
	Duration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)

	var err error

	met := &Metrics{}

	if met.Loads, err = m.Int64Counter("vault.entity.loads",
		metric.WithDescription("Entities loaded, by type."),
	); err != nil {
		return nil, err
	}

	if met.Saves, err = m.Int64Counter("vault.entity.saves",
		metric.WithDescription("Entities saved, by type."),
	); err != nil {
		return nil, err
	}

	if met.Errors, err = m.Int64Counter("vault.entity.errors",
		metric.WithDescription("Failed entity operations, by operation and error code."),
	); err != nil {
		return nil, err
	}

	if met.BacklinksDegraded, err = m.Int64Counter("vault.backlinks.degraded",
		metric.WithDescription("Loads that returned empty backlinks because the vault index failed."),
	); err != nil {
		return nil, err
	}

	if met.Duration, err = m.Float64Histogram("vault.entity.duration",
		metric.WithDescription("Latency of entity loads and saves."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	met, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic("observe: noop instruments: " + err.Error())
	}

	return met
}

// RecordLoad counts a successful load of entityType.
func (m *Metrics) RecordLoad(ctx context.Context, entityType string) {
	m.Loads.Add(ctx, 1, metric.WithAttributes(attribute.String("type", entityType)))
}

// RecordSave counts a successful save of entityType.
func (m *Metrics) RecordSave(ctx context.Context, entityType string) {
	m.Saves.Add(ctx, 1, metric.WithAttributes(attribute.String("type", entityType)))
}

// RecordError counts a failed op with its error code.
func (m *Metrics) RecordError(ctx context.Context, op, code string) {
	m.Errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("code", code),
	))
}

// RecordDegraded counts a backlink degrade.
func (m *Metrics) RecordDegraded(ctx context.Context) {
	m.BacklinksDegraded.Add(ctx, 1)
}

// ObserveDuration records the time since start for op.
func (m *Metrics) ObserveDuration(ctx context.Context, op string, start time.Time) {
	m.Duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("op", op)))
}
