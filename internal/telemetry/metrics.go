package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/skillsync/skillsync"
)

// Refresh outcomes recorded by RecordRefresh.
const (
	RefreshValid   = "valid"
	RefreshAbsent  = "absent"
	RefreshExpired = "expired"
	RefreshInvalid = "invalid"
	RefreshStale   = "stale"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Auth gateway metrics
	AuthOperationsTotal metric.Int64Counter
	AuthFailuresTotal   metric.Int64Counter
	RefreshTotal        metric.Int64Counter

	// Dashboard metrics
	ActiveDashboards   metric.Int64UpDownCounter
	PollsTotal         metric.Int64Counter
	PollErrorsTotal    metric.Int64Counter
	PollDuration       metric.Float64Histogram
	InsightsFetchTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.AuthOperationsTotal, _ = meter.Int64Counter(
		"skillsync.auth.operations.total",
		metric.WithDescription("Total number of sign-in, sign-up and sign-out attempts"),
		metric.WithUnit("{operation}"),
	)

	m.AuthFailuresTotal, _ = meter.Int64Counter(
		"skillsync.auth.failures.total",
		metric.WithDescription("Total number of rejected sign-in and sign-up attempts"),
		metric.WithUnit("{operation}"),
	)

	m.RefreshTotal, _ = meter.Int64Counter(
		"skillsync.auth.refresh.total",
		metric.WithDescription("Total number of identity refreshes by outcome"),
		metric.WithUnit("{refresh}"),
	)

	m.ActiveDashboards, _ = meter.Int64UpDownCounter(
		"skillsync.dashboards.active",
		metric.WithDescription("Number of dashboards currently polling"),
		metric.WithUnit("{dashboard}"),
	)

	m.PollsTotal, _ = meter.Int64Counter(
		"skillsync.dashboard.polls.total",
		metric.WithDescription("Total number of dashboard data polls"),
		metric.WithUnit("{poll}"),
	)

	m.PollErrorsTotal, _ = meter.Int64Counter(
		"skillsync.dashboard.poll_errors.total",
		metric.WithDescription("Total number of dashboard polls that failed to fetch data"),
		metric.WithUnit("{error}"),
	)

	m.PollDuration, _ = meter.Float64Histogram(
		"skillsync.dashboard.poll.duration",
		metric.WithDescription("Duration of dashboard data polls"),
		metric.WithUnit("ms"),
	)

	m.InsightsFetchTotal, _ = meter.Int64Counter(
		"skillsync.dashboard.insights.total",
		metric.WithDescription("Total number of AI insight requests"),
		metric.WithUnit("{request}"),
	)

	return m
}

// RecordAuth counts one gateway operation and, when err is set, its failure.
func (m *Metrics) RecordAuth(ctx context.Context, op string, err error) {
	opAttr := metric.WithAttributes(attribute.String("op", op))
	m.AuthOperationsTotal.Add(ctx, 1, opAttr)
	if err != nil {
		m.AuthFailuresTotal.Add(ctx, 1, opAttr)
	}
}

// RecordRefresh counts one identity refresh with the given outcome.
func (m *Metrics) RecordRefresh(ctx context.Context, outcome string) {
	m.RefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordPoll counts one dashboard poll and its duration.
func (m *Metrics) RecordPoll(ctx context.Context, started time.Time, failed bool) {
	m.PollsTotal.Add(ctx, 1)
	m.PollDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	if failed {
		m.PollErrorsTotal.Add(ctx, 1)
	}
}
