package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/ayusman/handsphere/internal/app"

// metrics are pipeline counters on the global OTel meter (no-op unless a
// provider is installed).
type metrics struct {
	mapped         metric.Int64Counter
	dropped        metric.Int64Counter
	swipes         metric.Int64Counter
	journalDropped metric.Int64Counter
}

func newMetrics() *metrics {
	m := otel.Meter(instrumentationName)
	return &metrics{
		mapped:         counter(m, "handsphere.frames.mapped", "Landmark frames applied to the motion state"),
		dropped:        counter(m, "handsphere.frames.dropped", "Landmark frames overwritten before the mapper read them"),
		swipes:         counter(m, "handsphere.swipes", "Accepted swipe impulses"),
		journalDropped: counter(m, "handsphere.journal.dropped", "Gesture events dropped due to a full journal buffer"),
	}
}

func counter(m metric.Meter, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

func (m *metrics) frameMapped(source Source) {
	m.mapped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("source", string(source))))
}

func (m *metrics) frameDropped(source Source) {
	m.dropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("source", string(source))))
}

func (m *metrics) swipe(direction string) {
	m.swipes.Add(context.Background(), 1, metric.WithAttributes(attribute.String("direction", direction)))
}
