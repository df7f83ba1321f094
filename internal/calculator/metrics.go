package calculator

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"go-chi-calculator/internal/observability"
)

// Metric instruments, initialized once via InitMetrics().
var (
	actionsCounter   metric.Int64Counter
	actionHistogram  metric.Float64Histogram
	errorCounter     metric.Int64Counter
	nonfiniteCounter metric.Int64Counter
	resultGauge      metric.Float64Gauge

	sessionsGauge prometheus.Gauge
)

// InitMetrics registers the calculator instruments. Call this once at startup
// (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	actionsCounter, err = meter.Int64Counter("calculator.actions.total",
		metric.WithDescription("Total number of keypad actions applied"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return fmt.Errorf("creating actions counter: %w", err)
	}

	actionHistogram, err = meter.Float64Histogram("calculator.action.duration",
		metric.WithDescription("Duration of keypad actions in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating action histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected calculator requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	nonfiniteCounter, err = meter.Int64Counter("calculator.nonfinite.total",
		metric.WithDescription("Displays that showed NaN or an infinity"),
		metric.WithUnit("{display}"),
	)
	if err != nil {
		return fmt.Errorf("creating nonfinite counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The last finite value shown on a calculator display"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	sessionsGauge, err = observability.RegisterCollector(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "calculator_sessions_active",
		Help: "Number of live calculator sessions.",
	}))
	if err != nil {
		return fmt.Errorf("registering sessions gauge: %w", err)
	}

	return nil
}

// ObserveSessions publishes the live session count. It is meant to be passed
// to session.WithObserver.
func ObserveSessions(active int) {
	if sessionsGauge != nil {
		sessionsGauge.Set(float64(active))
	}
}
