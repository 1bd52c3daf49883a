package routinghandlers

import (
	"net/http"
	"time"

	"github.com/vitalvas/flight/routing"
	"go.uber.org/zap"
)

// AccessLogConfig configures the access log middleware.
type AccessLogConfig struct {
	// Logger receives one entry per request. Defaults to a no-op logger.
	Logger *zap.Logger

	// SkipPaths lists request paths that are not logged.
	SkipPaths []string
}

// AccessLogMiddleware returns a middleware that logs every request at Info
// level once the rest of the chain has produced a response, or at Warn
// level when it failed.
func AccessLogMiddleware(cfg AccessLogConfig) routing.Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	skip := pathSet(cfg.SkipPaths)

	return routing.MiddlewareFunc(func(r *http.Request, next routing.RequestHandler) (*routing.Response, error) {
		if skip[r.URL.Path] {
			return next.Handle(r)
		}

		start := time.Now()
		res, err := next.Handle(r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", routeLabel(r)),
			zap.Duration("duration", time.Since(start)),
		}
		if id := RequestIDFromContext(r.Context()); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		if err != nil {
			fields = append(fields, zap.Int("status", StatusCode(err)), zap.Error(err))
			logger.Warn("request failed", fields...)
			return res, err
		}

		status := http.StatusOK
		if res != nil {
			status = res.StatusCode()
		}
		logger.Info("request completed", append(fields, zap.Int("status", status))...)

		return res, nil
	})
}
