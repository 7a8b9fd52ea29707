package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BookingMetrics counts domain events that dashboards care about. It reads
// the global meter provider, so it is a no-op until InitTelemetry runs.
type BookingMetrics struct {
	conflicts metric.Int64Counter
	bookings  metric.Int64Counter
	reports   metric.Int64Counter
	notifs    metric.Int64Counter
}

func NewBookingMetrics() *BookingMetrics {
	meter := otel.Meter(tracerName)
	m := &BookingMetrics{}
	m.conflicts, _ = meter.Int64Counter("mindbook_overlap_conflicts_total",
		metric.WithDescription("Rejected schedule or session writes that overlapped an existing range"))
	m.bookings, _ = meter.Int64Counter("mindbook_sessions_booked_total",
		metric.WithDescription("Sessions created"))
	m.reports, _ = meter.Int64Counter("mindbook_reports_submitted_total",
		metric.WithDescription("Session reports submitted"))
	m.notifs, _ = meter.Int64Counter("mindbook_notifications_total",
		metric.WithDescription("Notifications processed by channel and outcome"))
	return m
}

// Conflict records a rejected overlapping write; kind is "schedule" or "session".
func (m *BookingMetrics) Conflict(ctx context.Context, kind string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *BookingMetrics) Booked(ctx context.Context) {
	if m == nil || m.bookings == nil {
		return
	}
	m.bookings.Add(ctx, 1)
}

func (m *BookingMetrics) ReportSubmitted(ctx context.Context) {
	if m == nil || m.reports == nil {
		return
	}
	m.reports.Add(ctx, 1)
}

func (m *BookingMetrics) Notification(ctx context.Context, channel string, ok bool) {
	if m == nil || m.notifs == nil {
		return
	}
	m.notifs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.Bool("ok", ok),
	))
}
