package api

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Raisondetr3/Person-Service-SOA/internal/observability"
)

const tracerName = "github.com/Raisondetr3/Person-Service-SOA/internal/api"

// requestLogger tags every request with an id, wraps it in a server
// span, logs its outcome and feeds the HTTP metrics.
func requestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)

		// resolve the tracer lazily so it follows the current global provider
		ctx, span := otel.Tracer(tracerName).Start(c.Context(), c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer))
		c.SetContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		duration := time.Since(start)
		route := c.Route().Path

		// the matched route is only known after Next
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("request_id", requestID),
		)
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		span.End()

		observability.HTTPRequestsTotal.
			WithLabelValues(c.Method(), route, observability.StatusClass(status)).Inc()
		observability.HTTPRequestDuration.
			WithLabelValues(c.Method(), route).Observe(duration.Seconds())

		evt := log.Info()
		if status >= fiber.StatusInternalServerError {
			evt = log.Error()
		}
		evt.
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", duration).
			Msg("Request handled")

		return err
	}
}
