package monitoring

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type eventType int

const (
	eventTypeRun eventType = iota
	eventTypeAmbiguity
	eventTypeException
	eventTypeHTTPRequest
)

// metricEvent carries one recording across the event channel into a
// worker goroutine, keeping the exporter call off the caller's path.
type metricEvent struct {
	eventType eventType
	ctx       context.Context
	timestamp time.Time

	attrs []attribute.KeyValue

	intValue int64
	duration time.Duration
}

func newRunEvent(ctx context.Context, mode, status string, duration time.Duration) metricEvent {
	return metricEvent{
		eventType: eventTypeRun,
		ctx:       ctx,
		timestamp: time.Now(),
		duration:  duration,
		intValue:  1,
		attrs: []attribute.KeyValue{
			attribute.String("mode", mode),
			attribute.String("status", status),
		},
	}
}

func newAmbiguityEvent(ctx context.Context, cohortID string, count int) metricEvent {
	return metricEvent{
		eventType: eventTypeAmbiguity,
		ctx:       ctx,
		timestamp: time.Now(),
		intValue:  int64(count),
		attrs: []attribute.KeyValue{
			attribute.String("cohort_id", cohortID),
		},
	}
}

func newExceptionEvent(ctx context.Context, cohortID string, count int) metricEvent {
	return metricEvent{
		eventType: eventTypeException,
		ctx:       ctx,
		timestamp: time.Now(),
		intValue:  int64(count),
		attrs: []attribute.KeyValue{
			attribute.String("cohort_id", cohortID),
		},
	}
}

func newHTTPRequestEvent(ctx context.Context, method, path, status string, duration time.Duration) metricEvent {
	return metricEvent{
		eventType: eventTypeHTTPRequest,
		ctx:       ctx,
		timestamp: time.Now(),
		duration:  duration,
		intValue:  1,
		attrs: []attribute.KeyValue{
			attribute.String("method", method),
			attribute.String("path", path),
			attribute.String("status", status),
		},
	}
}

func (m *Monitor) processEvent(event metricEvent) {
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch event.eventType {
	case eventTypeRun:
		m.runsTotal.Add(recordCtx, event.intValue, metric.WithAttributes(event.attrs...))
		m.runDuration.Record(recordCtx, event.duration.Seconds(), metric.WithAttributes(event.attrs...))

	case eventTypeAmbiguity:
		m.ambiguityCount.Add(recordCtx, event.intValue, metric.WithAttributes(event.attrs...))

	case eventTypeException:
		m.exceptionCount.Add(recordCtx, event.intValue, metric.WithAttributes(event.attrs...))

	case eventTypeHTTPRequest:
		if m.httpMetrics != nil {
			m.httpMetrics.requestsTotal.Add(recordCtx, event.intValue, metric.WithAttributes(event.attrs...))
			m.httpMetrics.requestDuration.Record(recordCtx, event.duration.Seconds(), metric.WithAttributes(event.attrs...))
		}
	}
}
