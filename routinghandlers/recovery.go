package routinghandlers

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/vitalvas/flight/routing"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// Logger receives recovered panics. Defaults to a no-op logger.
	Logger *zap.Logger

	// EnableStackTrace adds the goroutine stack to the log entry.
	EnableStackTrace bool

	// PanicHandler is an optional callback that builds the response for a
	// recovered panic. When nil, or when it returns nil, a plain 500
	// Internal Server Error is returned.
	PanicHandler func(r *http.Request, rec any) *routing.Response
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream middleware and handlers. The panic is logged, recorded on the
// active trace span, and turned into a response.
func RecoveryMiddleware(cfg RecoveryConfig) routing.Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return routing.MiddlewareFunc(func(r *http.Request, next routing.RequestHandler) (res *routing.Response, err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := []zap.Field{
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			}
			if route := routing.CurrentRoute(r); route != nil {
				fields = append(fields, zap.String("route", route.GetPattern()))
			}
			if id := RequestIDFromContext(r.Context()); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if cfg.EnableStackTrace {
				fields = append(fields, zap.ByteString("stack", debug.Stack()))
			}

			logger.Error("panic recovered", fields...)

			if span := trace.SpanFromContext(r.Context()); span.IsRecording() {
				span.RecordError(fmt.Errorf("panic: %v", rec))
				span.SetStatus(codes.Error, "panic")
			}

			if cfg.PanicHandler != nil {
				if res = cfg.PanicHandler(r, rec); res != nil {
					err = nil
					return
				}
			}

			res = routing.NewResponseWithBody(
				http.StatusInternalServerError,
				routing.NewStream(http.StatusText(http.StatusInternalServerError)),
			).WithHeader("Content-Type", routing.ContentTypePlain)
			err = nil
		}()

		return next.Handle(r)
	})
}
