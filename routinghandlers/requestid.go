package routinghandlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/vitalvas/flight/routing"
)

type requestIDKey struct{}

// RequestIDFromContext returns the request ID stored in the context by
// RequestIDMiddleware. Returns an empty string if no ID is present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}

	return ""
}

// RequestIDConfig configures the Request ID middleware behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to "X-Request-ID" when empty.
	HeaderName string

	// GenerateFunc returns a new unique ID for the request. Defaults to
	// GenerateUUIDv4.
	GenerateFunc func(r *http.Request) string

	// TrustIncoming reuses the request ID of the incoming header instead
	// of generating a new one.
	TrustIncoming bool
}

// RequestIDMiddleware returns a middleware that generates or propagates a
// request ID. Downstream links receive a derived request carrying the ID
// in its header and context; the response carries it in the same header.
func RequestIDMiddleware(cfg RequestIDConfig) routing.Middleware {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	return routing.MiddlewareFunc(func(r *http.Request, next routing.RequestHandler) (*routing.Response, error) {
		id := ""
		if cfg.TrustIncoming {
			id = r.Header.Get(headerName)
		}
		if id == "" {
			id = generate(r)
		}
		if id == "" {
			return next.Handle(r)
		}

		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
		r.Header = r.Header.Clone()
		r.Header.Set(headerName, id)

		res, err := next.Handle(r)
		if res != nil {
			res.Header().Set(headerName, id)
		}

		return res, err
	})
}

// GenerateUUIDv4 returns a new UUID v4 string.
//
// See RFC 9562 Section 5.4.
func GenerateUUIDv4(_ *http.Request) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a new UUID v7 string. UUIDs are time-ordered:
// IDs generated later sort lexicographically after earlier ones.
//
// See RFC 9562 Section 5.7.
func GenerateUUIDv7(_ *http.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
