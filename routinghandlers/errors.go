package routinghandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitalvas/flight/routing"
	"go.uber.org/zap"
)

// StatusError attaches an HTTP status code to a handler failure.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return http.StatusText(e.Code)
	}
	return fmt.Sprintf("%d %s: %v", e.Code, http.StatusText(e.Code), e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Error returns err annotated with the HTTP status code it maps to.
//
//	return nil, routinghandlers.Error(http.StatusConflict, err)
func Error(code int, err error) error {
	return &StatusError{Code: code, Err: err}
}

// StatusCode maps err to an HTTP status: the code of a StatusError, 404
// for routing.ErrRouteNotFound, 405 for routing.ErrMethodNotAllowed and 500
// for anything else.
func StatusCode(err error) int {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Code
	case errors.Is(err, routing.ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, routing.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// ErrorConfig configures the Error middleware behaviour.
type ErrorConfig struct {
	// Logger receives server errors. Defaults to a no-op logger.
	Logger *zap.Logger

	// ExposeClientErrors, when true, writes the error text of 4xx
	// responses to the body instead of the status text.
	ExposeClientErrors bool
}

// ErrorMiddleware returns a middleware that renders downstream errors as
// JSON responses of the form {"error": "..."}. Server errors are logged and
// their details never reach the client.
func ErrorMiddleware(cfg ErrorConfig) routing.Middleware {
	render := errorRenderer(cfg)

	return routing.MiddlewareFunc(func(r *http.Request, next routing.RequestHandler) (*routing.Response, error) {
		res, err := next.Handle(r)
		if err == nil {
			return res, nil
		}

		return render(r, err)
	})
}

// ErrorHandler returns a function suitable for routing.Collector.ErrorHandler
// that renders errors the same way as ErrorMiddleware.
func ErrorHandler(cfg ErrorConfig) func(w http.ResponseWriter, r *http.Request, err error) {
	render := errorRenderer(cfg)

	return func(w http.ResponseWriter, r *http.Request, err error) {
		res, renderErr := render(r, err)
		if renderErr != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		_ = res.WriteTo(w)
	}
}

func errorRenderer(cfg ErrorConfig) func(r *http.Request, err error) (*routing.Response, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(r *http.Request, err error) (*routing.Response, error) {
		code := StatusCode(err)

		message := http.StatusText(code)
		if code < http.StatusInternalServerError && cfg.ExposeClientErrors {
			message = err.Error()
		}

		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", code),
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.Error(err),
			)
		}

		res, jsonErr := routing.JSONResponse(code, map[string]string{"error": message})
		if jsonErr != nil {
			return nil, jsonErr
		}

		// RFC 9110 Section 15.5.6: a 405 response carries an Allow header.
		var mna *routing.MethodNotAllowedError
		if errors.As(err, &mna) {
			res.Header().Set("Allow", strings.Join(mna.Allowed, ", "))
		}

		return res, nil
	}
}
