package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Matching errors.
var (
	// ErrRouteNotFound is returned when no route is registered under a name
	// or no pattern matches the request path. Maps to 404 Not Found per
	// RFC 9110 Section 15.5.5.
	ErrRouteNotFound = errors.New("routing: route not found")

	// ErrMethodNotAllowed is returned when a pattern matches the request
	// path but none of the matching routes allows the request method.
	// Maps to 405 Method Not Allowed per RFC 9110 Section 15.5.6.
	ErrMethodNotAllowed = errors.New("routing: method not allowed")
)

// Generation errors.
var (
	// ErrURLGeneration is returned when a URI cannot be generated for a
	// named route.
	ErrURLGeneration = errors.New("routing: url generation failed")
)

// Dispatch errors.
var (
	// ErrNilResponse is returned when a middleware or handler completes
	// without an error and without a response.
	ErrNilResponse = errors.New("routing: nil response")
)

// Registration errors.
var (
	// ErrInvalidHandler is recorded on a route whose handler cannot be
	// resolved to an invocable action.
	ErrInvalidHandler = errors.New("routing: invalid handler")

	// ErrInvalidMethod is recorded on a route registered without methods
	// or with a method that is not a valid RFC 9110 token.
	ErrInvalidMethod = errors.New("routing: invalid method")

	// ErrUnknownMiddleware is returned when a route references a named
	// middleware that was never registered.
	ErrUnknownMiddleware = errors.New("routing: unknown middleware")
)

// RouteNotFoundError reports a failed name lookup or a request that no
// pattern matched.
type RouteNotFoundError struct {
	// Name is set for name lookups.
	Name string

	// Method and Path are set for request matching.
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("routing: route %q not found", e.Name)
	}

	return fmt.Sprintf("routing: no route matches %s %s", e.Method, e.Path)
}

func (e *RouteNotFoundError) Unwrap() error {
	return ErrRouteNotFound
}

// MethodNotAllowedError reports a path match with a method mismatch.
// Allowed holds the sorted union of methods of every mismatched route and
// is meant for the Allow header of a 405 response.
type MethodNotAllowedError struct {
	Method  string
	Path    string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("routing: method %s not allowed for %s, allowed: %s",
		e.Method, e.Path, strings.Join(e.Allowed, ", "))
}

func (e *MethodNotAllowedError) Unwrap() error {
	return ErrMethodNotAllowed
}

// URLGenerationError reports why a URI could not be built for a route.
type URLGenerationError struct {
	Route  string
	Param  string
	Reason string
}

func (e *URLGenerationError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("routing: cannot generate uri for route %q: %s", e.Route, e.Reason)
	}

	return fmt.Sprintf("routing: cannot generate uri for route %q: parameter %q %s", e.Route, e.Param, e.Reason)
}

func (e *URLGenerationError) Unwrap() error {
	return ErrURLGeneration
}
