package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skinvault/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the engine
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	operationsCounter        metric.Int64Counter
	operationDurationHist    metric.Float64Histogram
	operationRetriesCounter  metric.Int64Counter
	integrityFailuresCounter metric.Int64Counter
	ledgerRowsCounter        metric.Int64Counter
	eventsPublishedCounter   metric.Int64Counter
	cacheLookupsCounter      metric.Int64Counter
	listingsExpiredCounter   metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("skinvault")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.operationsCounter, OperationsTotal, "Engine operations by outcome"},
		{&mp.operationRetriesCounter, OperationRetries, "Engine operation retries after a conflict"},
		{&mp.integrityFailuresCounter, IntegrityFailuresTotal, "Integrity-critical failures"},
		{&mp.ledgerRowsCounter, LedgerRowsTotal, "Ledger rows appended"},
		{&mp.eventsPublishedCounter, EventsPublishedTotal, "Domain events published to the bus"},
		{&mp.cacheLookupsCounter, BalanceCacheLookupsTotal, "Balance cache lookups"},
		{&mp.listingsExpiredCounter, ListingsExpiredTotal, "Listings moved to expired by the sweep"},
	}
	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.target = counter
	}

	var err error
	mp.operationDurationHist, err = mp.meter.Float64Histogram(
		OperationDuration,
		metric.WithDescription("Duration of engine operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create operation duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordOperation records one engine operation with its outcome and duration
func (mp *MetricsProvider) RecordOperation(operation, outcome string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelOperation, operation),
		attribute.String(LabelOutcome, outcome),
	)
	mp.operationsCounter.Add(context.Background(), 1, attrs)
	mp.operationDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// RecordRetry records a retried attempt after a conflict
func (mp *MetricsProvider) RecordRetry(operation string) {
	if !mp.isEnabled() {
		return
	}
	mp.operationRetriesCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOperation, operation)))
}

// RecordIntegrityFailure records an integrity-critical failure
func (mp *MetricsProvider) RecordIntegrityFailure(operation string) {
	if !mp.isEnabled() {
		return
	}
	mp.integrityFailuresCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOperation, operation)))
}

// RecordLedgerRow records an appended ledger row
func (mp *MetricsProvider) RecordLedgerRow(reason string) {
	if !mp.isEnabled() {
		return
	}
	mp.ledgerRowsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelReason, reason)))
}

// RecordEventPublished records an event sent to the bus
func (mp *MetricsProvider) RecordEventPublished(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.eventsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)))
}

// RecordCacheLookup records a balance cache hit or miss
func (mp *MetricsProvider) RecordCacheLookup(hit bool) {
	if !mp.isEnabled() {
		return
	}
	mp.cacheLookupsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool(LabelCacheHit, hit)))
}

// RecordListingsExpired records listings expired by one sweep
func (mp *MetricsProvider) RecordListingsExpired(count int) {
	if !mp.isEnabled() || count == 0 {
		return
	}
	mp.listingsExpiredCounter.Add(context.Background(), int64(count))
}

// MeasureOperation returns a function that records the operation when called
// Usage:
//
//	defer mp.MeasureOperation("open_case")(&outcome)
func (mp *MetricsProvider) MeasureOperation(operation string) func(outcome *string) {
	start := time.Now()
	return func(outcome *string) {
		mp.RecordOperation(operation, *outcome, time.Since(start))
	}
}

// isEnabled reports whether instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meterProvider != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider, nil before initialization
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
