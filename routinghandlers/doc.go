/*
Package routinghandlers provides middleware for the routing package.

Every constructor returns a routing.Middleware that runs inside the
collector pipeline, after the route has been matched, so the matched route
is available through routing.CurrentRoute. MethodOverride is the exception:
it changes the method used for matching and therefore wraps the collector
as a plain net/http handler.

# Error rendering

ErrorMiddleware turns downstream errors into JSON responses. StatusCode
maps routing errors to 404 and 405, a StatusError to its code, and anything
else to 500. ErrorHandler renders the same body from the collector's
ErrorHandler slot.

	c.AddMiddlewares(routinghandlers.ErrorMiddleware(routinghandlers.ErrorConfig{
		Logger: logger,
	}))

# Recovery

RecoveryMiddleware recovers panics raised further down the chain, logs them
with zap and records them on the active span.

	c.AddMiddlewares(routinghandlers.RecoveryMiddleware(routinghandlers.RecoveryConfig{
		Logger:           logger,
		EnableStackTrace: true,
	}))

# Request ID

RequestIDMiddleware generates a UUID v4 per request, or reuses the
incoming one when TrustIncoming is set. The ID travels on a derived
request, in its header and context, and is copied to the response.

	c.AddMiddlewares(routinghandlers.RequestIDMiddleware(routinghandlers.RequestIDConfig{
		GenerateFunc: routinghandlers.GenerateUUIDv7,
	}))

	id := routinghandlers.RequestIDFromContext(r.Context())

# Server

ServerMiddleware sets X-Server-Hostname on every response.

	mw, err := routinghandlers.ServerMiddleware(routinghandlers.ServerConfig{
		HostnameEnv: []string{"POD_NAME"},
	})

# Metrics

NewMetrics registers a request counter, a duration histogram and an
in-flight gauge. Requests are labelled by route name or pattern.

	m, err := routinghandlers.NewMetrics(routinghandlers.MetricsConfig{
		Registerer: prometheus.NewRegistry(),
	})
	c.AddMiddlewares(m.Middleware())

# Tracing

TracingMiddleware starts an OpenTelemetry server span per request.

	c.AddMiddlewares(routinghandlers.TracingMiddleware(routinghandlers.TracingConfig{
		TracerProvider: tp,
	}))

# Access log

AccessLogMiddleware logs one entry per request.

# Method override

	override, err := routinghandlers.MethodOverride(routinghandlers.MethodOverrideConfig{})
	http.ListenAndServe(":8080", override(c))
*/
package routinghandlers
