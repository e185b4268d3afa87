package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/pokitdok/logger"
)

// Metric names.
const (
	MetricRequests        = "pokitdok.requests"
	MetricRequestDuration = "pokitdok.request.duration"
	MetricTokenRefreshes  = "pokitdok.token.refreshes"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns the SDK meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Metrics holds the SDK's metric instruments. A nil *Metrics records nothing.
type Metrics struct {
	requests        metric.Int64Counter
	requestDuration metric.Float64Histogram
	tokenRefreshes  metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Platform requests by method and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequests, err)
	}

	requestDuration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of platform requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}

	tokenRefreshes, err := meter.Int64Counter(MetricTokenRefreshes,
		metric.WithDescription("Access token fetches by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricTokenRefreshes, err)
	}

	return &Metrics{
		requests:        requests,
		requestDuration: requestDuration,
		tokenRefreshes:  tokenRefreshes,
	}, nil
}

// DefaultMetrics builds instruments on the global meter, returning nil if
// they cannot be created.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(Meter())
	if err != nil {
		logger.Warn("metrics disabled", logger.ErrorFields("new_metrics", err))
		return nil
	}
	return m
}

// RecordRequest records one completed transport execution.
func (m *Metrics) RecordRequest(ctx context.Context, method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	)
	m.requests.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenRefresh records one access token fetch.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.tokenRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
