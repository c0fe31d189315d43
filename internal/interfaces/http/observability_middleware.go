package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/eshop-api/pkg/logger"
)

// RequestObserver recibe cada petición atendida (métricas).
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// TracingMiddleware abre un span por petición y lo deja en UserContext para los casos de uso.
func TracingMiddleware() fiber.Handler {
	tracer := otel.Tracer("http")
	return func(c *fiber.Ctx) error {
		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := tracer.Start(parent, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.Path()),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()
		c.SetUserContext(ctx)

		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		err := c.Next()
		status := responseStatus(c, err)
		span.SetName(c.Method() + " " + c.Route().Path)
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 || err != nil {
			span.SetStatus(codes.Error, "server error")
		}
		return err
	}
}

// RequestLogger registra método, ruta, estado y latencia de cada petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := responseStatus(c, err)

		l := log.WithContext(c.UserContext())
		var ev *zerolog.Event
		if status >= 500 {
			ev = l.Error().Err(err)
		} else {
			ev = l.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("http: petición")
		return err
	}
}

// MetricsMiddleware reporta cada petición por plantilla de ruta (no por path, para acotar cardinalidad).
func MetricsMiddleware(obs RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		obs.ObserveRequest(c.Method(), c.Route().Path, responseStatus(c, err), time.Since(start))
		return err
	}
}

// responseStatus estado final: si el handler devolvió error, lo resolverá el ErrorHandler de Fiber.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
