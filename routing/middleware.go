package routing

import (
	"net/http"
	"strings"
)

// RequestHandler produces a response for a request.
type RequestHandler interface {
	Handle(r *http.Request) (*Response, error)
}

// RequestHandlerFunc allows a function to act as a RequestHandler.
type RequestHandlerFunc func(r *http.Request) (*Response, error)

// Handle implements RequestHandler.
func (f RequestHandlerFunc) Handle(r *http.Request) (*Response, error) {
	return f(r)
}

// Middleware intercepts a request. It either returns a response without
// calling next, which short-circuits the chain, or delegates to next,
// optionally with a derived request.
type Middleware interface {
	Process(r *http.Request, next RequestHandler) (*Response, error)
}

// MiddlewareFunc allows a function to act as a Middleware.
type MiddlewareFunc func(r *http.Request, next RequestHandler) (*Response, error)

// Process implements Middleware.
func (f MiddlewareFunc) Process(r *http.Request, next RequestHandler) (*Response, error) {
	return f(r, next)
}

// HTTPMiddleware adapts a net/http middleware to the pipeline. Headers and
// status the wrapped middleware sets on its writer, and any body it writes
// instead of calling the next handler, end up in the returned response.
func HTTPMiddleware(mw func(http.Handler) http.Handler) Middleware {
	return MiddlewareFunc(func(r *http.Request, next RequestHandler) (*Response, error) {
		out := NewResponse()

		var (
			inner    *Response
			innerErr error
		)

		h := mw(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			inner, innerErr = next.Handle(req)
			if innerErr != nil || inner == nil {
				return
			}
			innerErr = inner.WriteTo(w)
		}))
		h.ServeHTTP(out, r)

		if innerErr != nil {
			return nil, innerErr
		}

		return out, nil
	})
}

// CORSMethodMiddleware sets the Access-Control-Allow-Methods response
// header (Fetch Standard, CORS protocol) to every method registered on c
// for the request path.
func CORSMethodMiddleware(c *Collector) Middleware {
	return MiddlewareFunc(func(r *http.Request, next RequestHandler) (*Response, error) {
		res, err := next.Handle(r)
		if err != nil || res == nil {
			return res, err
		}

		if methods := c.methodsForPath(c.requestPath(r)); len(methods) > 0 {
			res.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
		}

		return res, nil
	})
}
