package routing

import (
	"context"
	"net/http"
)

// routeContextKey is an unexported type for the single context key.
type routeContextKey struct{}

// ctxKey is the context key under which the per-dispatch match is stored.
var ctxKey = routeContextKey{}

// RouteMatch is the outcome of resolving a request. It lives in the
// request context for the duration of one dispatch, which keeps the
// Collector free of per-request state.
type RouteMatch struct {
	// Route is the matched route.
	Route *Route

	// Vars holds the path parameters extracted from the request path.
	Vars map[string]string

	// Args holds Vars merged over the route defaults. It is passed to the
	// handler as its extra arguments.
	Args map[string]string
}

// MatchFromContext returns the match stored by the dispatch serving ctx.
func MatchFromContext(ctx context.Context) (*RouteMatch, bool) {
	m, ok := ctx.Value(ctxKey).(*RouteMatch)
	return m, ok && m != nil
}

// Vars returns the route variables for the current request, if any.
func Vars(r *http.Request) map[string]string {
	if m, ok := MatchFromContext(r.Context()); ok {
		return m.Vars
	}
	return nil
}

// VarGet returns the value of a single route variable by name and a boolean
// indicating whether the variable exists.
func VarGet(r *http.Request, name string) (string, bool) {
	if m, ok := MatchFromContext(r.Context()); ok && m.Vars != nil {
		val, exists := m.Vars[name]
		return val, exists
	}
	return "", false
}

// CurrentRoute returns the matched route for the current request, if any.
// This only works inside the middleware chain and handler of the matched
// route because the match is stored in the request context.
func CurrentRoute(r *http.Request) *Route {
	if m, ok := MatchFromContext(r.Context()); ok {
		return m.Route
	}
	return nil
}

// SetURLVars sets the URL variables for the given request, returning the
// modified request. This is intended for testing route handlers.
func SetURLVars(r *http.Request, val map[string]string) *http.Request {
	m := &RouteMatch{Vars: val, Args: val}
	if prev, ok := MatchFromContext(r.Context()); ok {
		m.Route = prev.Route
	}
	return withMatch(r, m)
}

func withMatch(r *http.Request, m *RouteMatch) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey, m))
}
