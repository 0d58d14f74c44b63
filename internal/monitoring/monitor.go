package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/benidevo/mentormatch/internal/common/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Monitor exposes run-level and HTTP-level metrics for the matching
// engine over a Prometheus scrape endpoint, recording through a small
// worker pool so callers on the solve hot path never block on export.
type Monitor struct {
	config         monitorConfig
	meter          metric.Meter
	meterProvider  *sdkmetric.MeterProvider
	metricsHandler http.Handler
	log            zerolog.Logger

	runsTotal      metric.Int64Counter
	runDuration    metric.Float64Histogram
	ambiguityCount metric.Int64Counter
	exceptionCount metric.Int64Counter
	httpMetrics    *httpMetrics

	eventChan   chan metricEvent
	workerCount int
	wg          sync.WaitGroup
	shutdownCh  chan struct{}
}

func newMonitor(cfg monitorConfig) (*Monitor, error) {
	if !cfg.enabled {
		return nil, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.serviceName),
			semconv.ServiceVersion(cfg.version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(provider)

	meter := provider.Meter(cfg.serviceName)

	const workerCount = 2
	const channelSize = 4096

	m := &Monitor{
		config:         cfg,
		meter:          meter,
		meterProvider:  provider,
		metricsHandler: promhttp.Handler(),
		log:            logger.GetLogger("monitoring"),
		eventChan:      make(chan metricEvent, channelSize),
		workerCount:    workerCount,
		shutdownCh:     make(chan struct{}),
	}

	if err := m.createMetrics(); err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	httpMetrics, err := newHTTPMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create http metrics: %w", err)
	}
	m.httpMetrics = httpMetrics

	m.startWorkers()

	return m, nil
}

func (m *Monitor) createMetrics() error {
	var err error

	m.runsTotal, err = m.meter.Int64Counter(
		"mentormatch_runs_total",
		metric.WithDescription("Total number of match runs, by mode and status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create runs total metric: %w", err)
	}

	m.runDuration, err = m.meter.Float64Histogram(
		"mentormatch_run_duration_seconds",
		metric.WithDescription("Match run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return fmt.Errorf("failed to create run duration metric: %w", err)
	}

	m.ambiguityCount, err = m.meter.Int64Counter(
		"mentormatch_ambiguous_pairs_total",
		metric.WithDescription("Total number of ambiguous near-tie pairs flagged across runs"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ambiguity metric: %w", err)
	}

	m.exceptionCount, err = m.meter.Int64Counter(
		"mentormatch_exceptions_total",
		metric.WithDescription("Total number of exception-flagged matches across runs"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create exception metric: %w", err)
	}

	return nil
}

// ServeHTTP exposes the Prometheus scrape endpoint. In cloud mode it
// requires a bearer token matching the configured secret, since the
// endpoint is reachable outside the cluster's own network boundary.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.config.cloudMode {
		token := r.Header.Get("Authorization")
		expectedToken := "Bearer " + m.config.tokenSecret
		if token != expectedToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	m.metricsHandler.ServeHTTP(w, r)
}

func (m *Monitor) startWorkers() {
	for i := 0; i < m.workerCount; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	m.log.Info().Int("workers", m.workerCount).Msg("started metric workers")
}

func (m *Monitor) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case event := <-m.eventChan:
			m.processEvent(event)
		case <-m.shutdownCh:
			m.log.Debug().Int("worker_id", id).Msg("worker shutting down")
			return
		}
	}
}

// RecordRun records a completed match run's mode, status and duration.
func (m *Monitor) RecordRun(ctx context.Context, mode, status string, duration time.Duration) {
	if m == nil {
		return
	}

	event := newRunEvent(ctx, mode, status, duration)

	select {
	case m.eventChan <- event:
	case <-ctx.Done():
		m.log.Debug().Str("event_type", "run").Msg("context cancelled, abandoning metric")
	}
}

// RecordAmbiguity records the number of ambiguous pairs flagged in a run.
func (m *Monitor) RecordAmbiguity(ctx context.Context, cohortID string, count int) {
	if m == nil || count == 0 {
		return
	}

	event := newAmbiguityEvent(ctx, cohortID, count)

	select {
	case m.eventChan <- event:
	case <-ctx.Done():
		m.log.Debug().Str("event_type", "ambiguity").Msg("context cancelled, abandoning metric")
	}
}

// RecordException records the number of exception-flagged (E1/E2/E3)
// matches in a run.
func (m *Monitor) RecordException(ctx context.Context, cohortID string, count int) {
	if m == nil || count == 0 {
		return
	}

	event := newExceptionEvent(ctx, cohortID, count)

	select {
	case m.eventChan <- event:
	case <-ctx.Done():
		m.log.Debug().Str("event_type", "exception").Msg("context cancelled, abandoning metric")
	}
}

// Shutdown drains in-flight metric events and stops the worker pool.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}

	close(m.shutdownCh)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.log.Info().Msg("all metric workers stopped")
	case <-ctx.Done():
		m.log.Warn().Msg("shutdown timeout reached, some metrics may be lost")
	}

	close(m.eventChan)

	if m.meterProvider != nil {
		return m.meterProvider.Shutdown(ctx)
	}
	return nil
}
