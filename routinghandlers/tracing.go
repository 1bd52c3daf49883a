package routinghandlers

import (
	"net/http"

	"github.com/vitalvas/flight/routing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vitalvas/flight/routinghandlers"

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	// TracerProvider creates the tracer. Defaults to the global provider.
	TracerProvider trace.TracerProvider

	// Propagators extract the parent span context from request headers.
	// Defaults to the global text map propagator.
	Propagators propagation.TextMapPropagator

	// ServiceName is attached to every span as service.name when set.
	ServiceName string

	// SkipPaths lists request paths that are not traced.
	SkipPaths []string
}

// TracingMiddleware returns a middleware that starts a server span for
// every request. The span is named "<METHOD> <route pattern>" and carries
// the response status; handler errors are recorded on it.
func TracingMiddleware(cfg TracingConfig) routing.Middleware {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	propagator := cfg.Propagators
	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}

	tracer := tp.Tracer(tracerName)
	skip := pathSet(cfg.SkipPaths)

	return routing.MiddlewareFunc(func(r *http.Request, next routing.RequestHandler) (*routing.Response, error) {
		if skip[r.URL.Path] {
			return next.Handle(r)
		}

		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		pattern := r.URL.Path
		if route := routing.CurrentRoute(r); route != nil {
			pattern = route.GetPattern()
		}

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.String("http.route", pattern),
		}
		if cfg.ServiceName != "" {
			attrs = append(attrs, attribute.String("service.name", cfg.ServiceName))
		}

		ctx, span := tracer.Start(ctx, r.Method+" "+pattern,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		res, err := next.Handle(r.WithContext(ctx))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.Int("http.response.status_code", StatusCode(err)))
			return res, err
		}

		if res != nil {
			span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode()))
			if res.StatusCode() >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(res.StatusCode()))
			}
		}

		return res, nil
	})
}

func pathSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}
