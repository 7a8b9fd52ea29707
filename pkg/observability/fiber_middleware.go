package observability

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/mindbook_backend/pkg/reqctx"
)

const tracerName = "github.com/Alijeyrad/mindbook_backend/pkg/observability"

// FiberMiddleware opens a server span per request and records latency per
// route. It runs first, so the request id and caller are read back from the
// context after the rest of the chain has filled them in.
func FiberMiddleware() fiber.Handler {
	tracer := otel.Tracer(tracerName)
	latency, _ := otel.Meter(tracerName).Float64Histogram("mindbook_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency by route and status"),
		metric.WithUnit("s"),
	)

	return func(c fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := tracer.Start(ctx, c.Method(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetContext(ctx)

		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Set("X-Trace-Id", sc.TraceID().String())
		}

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start).Seconds()

		route := c.Route().Path
		status := c.Response().StatusCode()
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
			attribute.String("client.address", c.IP()),
		)

		after := c.Context()
		if rid := reqctx.RequestIDFromContext(after); rid != "" {
			span.SetAttributes(attribute.String("mindbook.request_id", rid))
		}
		if a := reqctx.ActorFromContext(after); !a.Anonymous() {
			span.SetAttributes(attribute.String("mindbook.account_id", a.AccountID.String()))
		}

		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
			if err != nil {
				span.RecordError(err)
			}
		}

		latency.Record(ctx, elapsed, metric.WithAttributes(
			attribute.String("method", c.Method()),
			attribute.String("route", route),
			attribute.Int("status", status),
		))
		return err
	}
}
