package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	paymentToggles      metric.Int64Counter
	delinquentClients   metric.Int64Counter
	reconciliationRuns  metric.Int64Counter
	reconciliationTimer metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "watchline"
	}
	meter := provider.Meter(name)

	paymentToggles, err := meter.Int64Counter("watchline_payment_toggles_total")
	if err != nil {
		return nil, err
	}
	delinquentClients, err := meter.Int64Counter("watchline_delinquent_clients_total")
	if err != nil {
		return nil, err
	}
	reconciliationRuns, err := meter.Int64Counter("watchline_reconciliation_runs_total")
	if err != nil {
		return nil, err
	}
	reconciliationTimer, err := meter.Float64Histogram("watchline_reconciliation_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		paymentToggles:      paymentToggles,
		delinquentClients:   delinquentClients,
		reconciliationRuns:  reconciliationRuns,
		reconciliationTimer: reconciliationTimer,
	}, nil
}

// RecordPaymentToggle increments toggle counts per resulting state.
func (m *Metrics) RecordPaymentToggle(ctx context.Context, paid bool) {
	if m == nil {
		return
	}
	state := "unpaid"
	if paid {
		state = "paid"
	}
	m.paymentToggles.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}

// RecordDelinquentClient counts "client delinquent" events.
func (m *Metrics) RecordDelinquentClient(ctx context.Context) {
	if m == nil {
		return
	}
	m.delinquentClients.Add(ctx, 1)
}

// RecordReconciliation records one listing computation and its duration.
func (m *Metrics) RecordReconciliation(ctx context.Context, elapsed time.Duration, clients int) {
	if m == nil {
		return
	}
	m.reconciliationRuns.Add(ctx, 1, metric.WithAttributes(attribute.Int("clients", clients)))
	m.reconciliationTimer.Record(ctx, elapsed.Seconds())
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}
