package routing

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Collector registers routes, resolves requests to them and dispatches
// the matched route through its middleware chain.
//
// It implements the http.Handler interface, so it can be registered to
// serve requests:
//
//	c := routing.NewCollector()
//	c.Get("/users/{id:int}", showUser).Name("user.show")
//	http.ListenAndServe(":8080", c)
//
// Registration is expected to finish before the collector serves
// requests. Dispatch keeps all per-request state in the request context,
// so a configured collector can serve concurrent requests.
type Collector struct {
	// NotFoundHandler is called by ServeHTTP when no route matches.
	// If nil, http.NotFoundHandler() is used.
	// Corresponds to 404 Not Found per RFC 9110 Section 15.5.5.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called by ServeHTTP when a route matches
	// the path but not the method. If nil, a default 405 handler is used.
	// Per RFC 9110 Section 15.5.6, the Allow header is always set before
	// this handler is invoked.
	MethodNotAllowedHandler http.Handler

	// ErrorHandler renders any other dispatch error. If nil, a 500
	// Internal Server Error is written.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

	routes           []*Route
	namedRoutes      map[string]*Route
	idRoutes         map[string]*Route
	middlewares      []Middleware
	namedMiddlewares map[string][]Middleware
	controllers      map[string]any

	// Global parameters apply to every route.
	requirements map[string]string
	defaults     map[string]string

	groups []*groupScope

	namespace         string
	baseURL           string
	keepRequestMethod bool
	implicitOptions   bool
	skipClean         bool
	useEncodedPath    bool

	logger          *zap.Logger
	invoker         Invoker
	responseFactory ResponseFactory
}

// NewCollector returns a new collector instance.
func NewCollector() *Collector {
	return &Collector{
		namedRoutes:      make(map[string]*Route),
		idRoutes:         make(map[string]*Route),
		namedMiddlewares: make(map[string][]Middleware),
		controllers:      make(map[string]any),
		requirements:     make(map[string]string),
		defaults:         make(map[string]string),
		implicitOptions:  true,
		logger:           zap.NewNop(),
		invoker:          directInvoker,
		responseFactory:  NewResponse,
	}
}

// --- Settings ---

// SetNamespace sets the root namespace used to resolve string and ActionRef
// handlers of routes registered afterwards outside a namespaced group.
func (c *Collector) SetNamespace(namespace string) *Collector {
	c.namespace = namespace
	return c
}

// KeepRequestMethod makes redirect routes use 307 and 308 instead of 302
// and 301, so clients repeat the original method (RFC 9110 Section 15.4).
func (c *Collector) KeepRequestMethod(keep bool) *Collector {
	c.keepRequestMethod = keep
	return c
}

// ImplicitOptions controls whether an OPTIONS request to a path served
// only by other methods is answered with an Allow header instead of a
// MethodNotAllowedError. Enabled by default.
func (c *Collector) ImplicitOptions(enabled bool) *Collector {
	c.implicitOptions = enabled
	return c
}

// SkipClean disables removal of dot segments from request paths.
func (c *Collector) SkipClean(skip bool) *Collector {
	c.skipClean = skip
	return c
}

// UseEncodedPath tells the collector to match the percent-encoded original
// path (RFC 3986 Section 2.1) instead of the decoded path.
func (c *Collector) UseEncodedPath() *Collector {
	c.useEncodedPath = true
	return c
}

// SetBaseURL makes generated URIs absolute, e.g. "https://example.com".
// An empty value switches back to root-relative URIs.
func (c *Collector) SetBaseURL(base string) *Collector {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// SetLogger sets the logger. A nil logger disables logging.
func (c *Collector) SetLogger(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
	return c
}

// SetInvoker sets the collaborator that calls route actions. A nil
// invoker calls actions directly.
func (c *Collector) SetInvoker(invoker Invoker) *Collector {
	if invoker == nil {
		invoker = directInvoker
	}
	c.invoker = invoker
	return c
}

// SetResponseFactory sets the factory of the default handler response.
func (c *Collector) SetResponseFactory(factory ResponseFactory) *Collector {
	if factory == nil {
		factory = NewResponse
	}
	c.responseFactory = factory
	return c
}

// --- Registration ---

// RegisterController registers an object handler under name, for
// reference by "name", "name@Method" or Act(name, method). Controllers
// must be registered before the routes that reference them.
func (c *Collector) RegisterController(name string, controller any) error {
	if name == "" || controller == nil {
		return fmt.Errorf("%w: controller name and value are required", ErrInvalidHandler)
	}
	c.controllers[name] = controller
	return nil
}

// Map registers a route for methods and pattern. The handler may be any
// shape accepted by Action, ControllerFunc, Controller, http.Handler, a
// controller reference string or an ActionRef. Configuration errors are
// recorded on the route, see Route.GetError.
func (c *Collector) Map(methods []string, pattern string, handler any) *Route {
	scope := c.scope()

	r := newRoute(c, methods, joinPath(scope.prefix, pattern), handler)
	r.namePrefix = scope.namePrefix
	r.namespace = scope.namespace
	if r.namespace == "" {
		r.namespace = c.namespace
	}
	r.middlewares = slices.Clone(scope.middlewares)
	maps.Copy(r.requirements, scope.requirements)
	maps.Copy(r.defaults, scope.defaults)

	r.resolve()
	if _, err := r.compile(); err != nil && r.err == nil {
		r.err = err
	}

	c.routes = append(c.routes, r)
	c.idRoutes[r.id] = r

	if r.err != nil {
		c.logger.Warn("route registration failed",
			zap.Strings("methods", methods),
			zap.String("pattern", r.pattern),
			zap.Error(r.err),
		)
	}

	return r
}

// Get registers a GET route.
func (c *Collector) Get(pattern string, handler any) *Route {
	return c.Map([]string{http.MethodGet}, pattern, handler)
}

// Post registers a POST route.
func (c *Collector) Post(pattern string, handler any) *Route {
	return c.Map([]string{http.MethodPost}, pattern, handler)
}

// Put registers a PUT route.
func (c *Collector) Put(pattern string, handler any) *Route {
	return c.Map([]string{http.MethodPut}, pattern, handler)
}

// Patch registers a PATCH route.
func (c *Collector) Patch(pattern string, handler any) *Route {
	return c.Map([]string{http.MethodPatch}, pattern, handler)
}

// Delete registers a DELETE route.
func (c *Collector) Delete(pattern string, handler any) *Route {
	return c.Map([]string{http.MethodDelete}, pattern, handler)
}

// Options registers an OPTIONS route.
func (c *Collector) Options(pattern string, handler any) *Route {
	return c.Map([]string{http.MethodOptions}, pattern, handler)
}

// Head registers a HEAD route.
func (c *Collector) Head(pattern string, handler any) *Route {
	return c.Map([]string{http.MethodHead}, pattern, handler)
}

// Any registers a route for all StandardMethods.
func (c *Collector) Any(pattern string, handler any) *Route {
	return c.Map(StandardMethods, pattern, handler)
}

// Redirect registers a route answering with a redirect to target. The
// status is 302 or 301 for permanent redirects, or 307 and 308 when the
// collector keeps the request method.
func (c *Collector) Redirect(pattern, target string, permanent bool) *Route {
	status := http.StatusFound
	switch {
	case permanent && c.keepRequestMethod:
		status = http.StatusPermanentRedirect
	case permanent:
		status = http.StatusMovedPermanently
	case c.keepRequestMethod:
		status = http.StatusTemporaryRedirect
	}

	return c.Map(StandardMethods, pattern, ControllerFunc(func(_ *http.Request, _ *Response) (any, error) {
		return RedirectResponse(target, status), nil
	}))
}

// AddRoute registers a route built with NewRoute.
func (c *Collector) AddRoute(r *Route) {
	if r.collector != c {
		r.collector = c
		r.compiled.Store(nil)
		r.resolve()
	}

	if !slices.Contains(c.routes, r) {
		c.routes = append(c.routes, r)
		c.idRoutes[r.id] = r
	}

	if r.name != "" {
		c.namedRoutes[r.name] = r
	}
}

// AddLookupRoute registers or refreshes the name index entry of r. It is
// a no-op for unnamed routes. A named route not yet registered is appended
// to the route list.
func (c *Collector) AddLookupRoute(r *Route) {
	if r.name == "" {
		return
	}
	c.AddRoute(r)
}

// dropLookup removes name from the index if it points to r.
func (c *Collector) dropLookup(name string, r *Route) {
	if c.namedRoutes[name] == r {
		delete(c.namedRoutes, name)
	}
}

// GetNamedRoute returns the route registered under name.
func (c *Collector) GetNamedRoute(name string) (*Route, error) {
	r, ok := c.namedRoutes[name]
	if !ok {
		return nil, &RouteNotFoundError{Name: name}
	}
	return r, nil
}

// RemoveNamedRoute removes the route registered under name from the
// route list and the indexes.
func (c *Collector) RemoveNamedRoute(name string) error {
	r, ok := c.namedRoutes[name]
	if !ok {
		return &RouteNotFoundError{Name: name}
	}

	delete(c.namedRoutes, name)
	delete(c.idRoutes, r.id)
	c.routes = slices.DeleteFunc(c.routes, func(x *Route) bool { return x == r })

	return nil
}

// RouteByID returns the route with the given unique identifier.
func (c *Collector) RouteByID(id string) (*Route, bool) {
	r, ok := c.idRoutes[id]
	return r, ok
}

// Routes returns the registered routes in registration order.
func (c *Collector) Routes() []*Route {
	return slices.Clone(c.routes)
}

// AddParameters merges requirements or defaults. Inside a Group callback
// they apply to the routes registered afterwards in that group; at the top
// level they apply to every route. Route values take precedence over
// group values, which take precedence over global values.
func (c *Collector) AddParameters(params map[string]string, typ ParameterType) *Collector {
	if n := len(c.groups); n > 0 {
		g := c.groups[n-1]
		if typ == TypeRequirement {
			maps.Copy(g.requirements, params)
		} else {
			maps.Copy(g.defaults, params)
		}
		return c
	}

	if typ == TypeRequirement {
		maps.Copy(c.requirements, params)
		for _, r := range c.routes {
			r.compiled.Store(nil)
			if _, err := r.compile(); err != nil && r.err == nil {
				r.err = err
				c.logger.Warn("route requirements rejected",
					zap.String("pattern", r.pattern),
					zap.Error(err),
				)
			}
		}
	} else {
		maps.Copy(c.defaults, params)
	}

	return c
}

// AddMiddlewares appends middleware to the global stack run for every
// matched route.
func (c *Collector) AddMiddlewares(mw ...Middleware) *Collector {
	c.middlewares = append(c.middlewares, mw...)
	return c
}

// AddNamedMiddleware registers a middleware set routes can reference with
// Route.UseNamed. Registering a name again appends to its set.
func (c *Collector) AddNamedMiddleware(name string, mw ...Middleware) *Collector {
	c.namedMiddlewares[name] = append(c.namedMiddlewares[name], mw...)
	return c
}

// Middlewares returns the global middleware stack.
func (c *Collector) Middlewares() []Middleware {
	return slices.Clone(c.middlewares)
}

func (c *Collector) resolveMiddlewares(refs []middlewareRef) ([]Middleware, error) {
	out := make([]Middleware, 0, len(refs))
	for _, ref := range refs {
		if ref.mw != nil {
			out = append(out, ref.mw)
			continue
		}

		set, ok := c.namedMiddlewares[ref.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMiddleware, ref.name)
		}
		out = append(out, set...)
	}
	return out, nil
}

// --- Matching ---

// Match resolves method and path to a route. Routes are tried in
// registration order and the first one matching both wins. When only the
// path matches, a *MethodNotAllowedError carries every allowed method;
// otherwise a *RouteNotFoundError is returned.
func (c *Collector) Match(method, path string) (*RouteMatch, error) {
	method = CustomMethod(method)

	var allowed []string
	for _, r := range c.routes {
		vars, ok := r.matchPath(path)
		if !ok {
			continue
		}

		if !r.allowsMethod(method) {
			for _, m := range r.allowedMethods() {
				if !matchInArray(allowed, m) {
					allowed = append(allowed, m)
				}
			}
			continue
		}

		args := maps.Clone(r.mergedDefaults())
		if args == nil {
			args = make(map[string]string, len(vars))
		}
		maps.Copy(args, vars)

		return &RouteMatch{Route: r, Vars: vars, Args: args}, nil
	}

	if len(allowed) > 0 {
		sort.Strings(allowed)
		return nil, &MethodNotAllowedError{Method: method, Path: path, Allowed: allowed}
	}

	return nil, &RouteNotFoundError{Method: method, Path: path}
}

// methodsForPath returns the sorted methods of every route matching path.
func (c *Collector) methodsForPath(path string) []string {
	var methods []string
	for _, r := range c.routes {
		if _, ok := r.matchPath(path); !ok {
			continue
		}
		for _, m := range r.allowedMethods() {
			if !matchInArray(methods, m) {
				methods = append(methods, m)
			}
		}
	}
	sort.Strings(methods)
	return methods
}

// --- Dispatching ---

// Dispatch resolves r, runs the global and route middleware and the route
// handler, and returns the response. Routing failures are
// *RouteNotFoundError or *MethodNotAllowedError; handler and middleware
// errors are returned unchanged. A chain that yields neither a response
// nor an error fails with ErrNilResponse.
func (c *Collector) Dispatch(r *http.Request) (*Response, error) {
	path := c.requestPath(r)

	match, err := c.Match(r.Method, path)
	if err != nil {
		var mna *MethodNotAllowedError
		if c.implicitOptions && r.Method == http.MethodOptions && errors.As(err, &mna) {
			res := NewResponseWithBody(http.StatusOK, nil)
			res.Header().Set("Allow", strings.Join(mna.Allowed, ", "))
			return res, nil
		}
		return nil, err
	}

	c.logger.Debug("route matched",
		zap.String("method", r.Method),
		zap.String("path", path),
		zap.String("route", match.Route.name),
		zap.String("route_id", match.Route.id),
	)

	chain, err := c.chain(match.Route)
	if err != nil {
		return nil, err
	}

	if _, ok := r.Context().Value(outputContextKey{}).(*OutputBuffer); !ok {
		r = WithOutput(r, NewOutputBuffer(nil))
	}
	r = withMatch(r, match)

	terminal := NewCallableHandler(match.Route.action, c.responseFactory, c.invoker, match.Args)

	res, err := NewPipeline(terminal, chain...).Handle(r)
	if err == nil && res == nil {
		return nil, fmt.Errorf("%w: route %q", ErrNilResponse, match.Route.pattern)
	}

	return res, err
}

// chain returns the global middleware followed by the route middleware.
func (c *Collector) chain(r *Route) ([]Middleware, error) {
	routeMW, err := c.resolveMiddlewares(r.middlewares)
	if err != nil {
		return nil, err
	}

	out := make([]Middleware, 0, len(c.middlewares)+len(routeMW))
	out = append(out, c.middlewares...)
	out = append(out, routeMW...)

	return out, nil
}

// requestPath returns the path used for matching, normalized per
// RFC 3986 Section 5.2.4 (removing dot segments) unless SkipClean is set.
func (c *Collector) requestPath(r *http.Request) string {
	path := r.URL.Path
	if c.useEncodedPath {
		path = requestURIPath(r.URL)
	}
	if !c.skipClean {
		path = cleanPath(path)
	}
	return path
}

// ServeHTTP dispatches the request and writes the response. Routing
// failures are answered with 404 or 405; other errors are logged and
// answered by ErrorHandler.
func (c *Collector) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	res, err := c.Dispatch(req)
	if err != nil {
		c.serveError(w, req, err)
		return
	}

	if err := res.WriteTo(w); err != nil {
		c.logger.Error("response write failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
	}
}

func (c *Collector) serveError(w http.ResponseWriter, req *http.Request, err error) {
	var mna *MethodNotAllowedError

	switch {
	case errors.As(err, &mna):
		// RFC 9110 Section 15.5.6: the origin server MUST generate an
		// Allow header field in a 405 response.
		w.Header().Set("Allow", strings.Join(mna.Allowed, ", "))
		handler := c.MethodNotAllowedHandler
		if handler == nil {
			handler = methodNotAllowedHandler()
		}
		handler.ServeHTTP(w, req)
	case errors.Is(err, ErrRouteNotFound):
		handler := c.NotFoundHandler
		if handler == nil {
			handler = http.NotFoundHandler()
		}
		handler.ServeHTTP(w, req)
	default:
		c.logger.Error("dispatch failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		if c.ErrorHandler != nil {
			c.ErrorHandler(w, req, err)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
