// Package routing implements a request dispatch core: it resolves an
// incoming request to a registered route, runs a middleware chain ending
// in the route handler, and normalizes whatever the handler produced into
// a well-formed response.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics)
//   - RFC 3986 (URIs)
//   - RFC 7538 (308 Permanent Redirect)
//
// # Collector
//
// Create a collector and register handlers:
//
//	c := routing.NewCollector()
//	c.Get("/articles/{category}/{id:[0-9]+}", showArticle).Name("article.show")
//	c.Map([]string{"GET", "POST"}, "/articles", articles)
//	http.Handle("/", c)
//
// Routes are tried in registration order and the first route matching both
// path and method wins. A HEAD request is served by a GET route. When the
// path matches but no route allows the method, dispatch fails with a
// *MethodNotAllowedError listing the allowed methods; when nothing matches
// the path it fails with a *RouteNotFoundError. ServeHTTP turns those into
// 405 (with an Allow header) and 404 responses.
//
// # Handlers
//
// Handlers receive the request and a default response carrying
// "Content-Type: text/html; charset=utf-8" and return any value:
//
//	func showArticle(r *http.Request, res *routing.Response) (any, error) {
//	    id, _ := routing.VarGet(r, "id")
//	    return map[string]string{"id": id}, nil
//	}
//
// The accepted shapes are resolved once at registration: Action,
// ControllerFunc, Controller, http.Handler and
// func(http.ResponseWriter, *http.Request), a controller reference string
// "Name" or "Name@Method", and ActionRef values built with Act. String and
// ActionRef handlers are looked up among the controllers registered with
// RegisterController, qualified by the group or collector namespace.
//
// # Response Normalization
//
// A *Response result is returned as is. Maps, slices, arrays, structs and
// json.Marshaler values are encoded as JSON into the default response;
// anything else is written as text. Text the handler emitted with Echo or
// Output is appended to the body, and the content type is inferred: JSON
// bodies get application/json, XML documents with a declaration get
// application/xml, bodies without a closing html tag get text/plain.
//
// # Output Capture
//
// Each dispatch carries an OutputBuffer. Text written to it lands in the
// innermost open capture scope. The handler adapter opens one scope per
// call and closes every scope the handler left open, prepending inner
// content to outer content:
//
//	func legacy(r *http.Request, _ *routing.Response) (any, error) {
//	    routing.Echo(r, "<p>hello</p>")
//	    return nil, nil
//	}
//
// # Path Variables
//
// Variables are written {name}, {name:regexp} or {name:macro}. Macros are
// uuid, int, float, slug, alpha, alphanum, date, hex, domain and any (which
// spans path segments). Requirements can also be declared per route with
// Where, per group with GroupAttributes.Parameters or globally with
// AddParameters(params, TypeRequirement). Defaults (TypeDefault) fill
// variables missing from the path or from URL generation parameters.
//
//	vars := routing.Vars(r)
//	route := routing.CurrentRoute(r)
//
// # Groups
//
// Groups share a path prefix, a name prefix, a namespace, middleware and
// parameters among the routes registered inside the callback:
//
//	c.Group(routing.GroupAttributes{Prefix: "/admin", Name: "admin.", Middleware: []routing.Middleware{auth}}, func(c *routing.Collector) {
//	    c.Get("/", dashboard).Name("dashboard")
//	})
//
// # Middleware
//
// A Middleware either returns a response, short-circuiting the chain, or
// calls next. The chain of a dispatch is the global middleware
// (AddMiddlewares), then the route middleware, then the handler. Standard
// net/http middleware is adapted with HTTPMiddleware. Named sets are
// registered with AddNamedMiddleware and referenced with Route.UseNamed.
//
// # URL Generation
//
//	uri, err := c.GenerateURI("article.show",
//	    map[string]string{"category": "tech", "id": "42"},
//	    map[string]string{"page": "2"})
//	// /articles/tech/42?page=2
//
// The path is percent-encoded except for the characters in DontEncode.
// SetBaseURL makes generated URIs absolute.
//
// # Configuration
//
// Settings and route tables can be declared in YAML and loaded with
// LoadConfig, then registered with Collector.Apply.
package routing
