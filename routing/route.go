package routing

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
)

// ParameterType tells whether a route parameter is a default value or a
// validation requirement.
type ParameterType int

const (
	// TypeDefault values are substituted when a placeholder has no value.
	TypeDefault ParameterType = 0
	// TypeRequirement values are regexps a placeholder value must match.
	TypeRequirement ParameterType = 1
)

// middlewareRef is a middleware value or the name of a registered set.
type middlewareRef struct {
	mw   Middleware
	name string
}

// Route stores information to match a request and build URLs.
type Route struct {
	collector *Collector
	id        string
	pattern   string
	methods   []string
	name      string
	namespace string

	// namePrefix is inherited from the enclosing groups.
	namePrefix string

	handler any
	action  Action

	middlewares  []middlewareRef
	requirements map[string]string
	defaults     map[string]string

	compiled atomic.Pointer[routePattern]
	err      error
}

func newRoute(c *Collector, methods []string, pattern string, handler any) *Route {
	r := &Route{
		collector:    c,
		id:           uuid.NewString(),
		pattern:      pattern,
		handler:      handler,
		requirements: make(map[string]string),
		defaults:     make(map[string]string),
	}

	r.methods, r.err = normalizeMethods(methods)

	return r
}

// NewRoute returns a route that is not registered anywhere yet. Register
// it with Collector.AddRoute; string and ActionRef handlers are resolved
// against the collector at that point.
func NewRoute(methods []string, pattern string, handler any) *Route {
	r := newRoute(nil, methods, pattern, handler)
	r.resolve()
	return r
}

// ID returns the unique identifier assigned at registration.
func (r *Route) ID() string {
	return r.id
}

// GetError returns any error that was recorded while configuring the route.
// A route with an error never matches.
func (r *Route) GetError() error {
	return r.err
}

// Name sets the name used for lookups and URL generation. A later route
// registered under the same name replaces this one in the lookup table.
func (r *Route) Name(name string) *Route {
	name = r.namePrefix + name
	if r.name == name {
		return r
	}

	if r.collector != nil && r.name != "" {
		r.collector.dropLookup(r.name, r)
	}
	r.name = name

	if r.collector != nil {
		r.collector.AddLookupRoute(r)
	}

	return r
}

// GetName returns the name for the route, if any.
func (r *Route) GetName() string {
	return r.name
}

// GetPattern returns the full path template including any group prefix.
func (r *Route) GetPattern() string {
	return r.pattern
}

// GetMethods returns the methods the route matches against.
func (r *Route) GetMethods() []string {
	return append([]string(nil), r.methods...)
}

// GetNamespace returns the namespace used to resolve string handlers.
func (r *Route) GetNamespace() string {
	return r.namespace
}

// GetHandler returns the handler as it was registered.
func (r *Route) GetHandler() any {
	return r.handler
}

// GetRequirements returns a copy of the route level requirements.
func (r *Route) GetRequirements() map[string]string {
	return maps.Clone(r.requirements)
}

// GetDefaults returns a copy of the route level defaults.
func (r *Route) GetDefaults() map[string]string {
	return maps.Clone(r.defaults)
}

// SetNamespace sets the namespace and re-resolves the handler against it.
func (r *Route) SetNamespace(namespace string) *Route {
	r.namespace = namespace
	r.resolve()
	return r
}

// Use appends middleware run after the global middleware and before the
// handler.
func (r *Route) Use(mw ...Middleware) *Route {
	for _, m := range mw {
		r.middlewares = append(r.middlewares, middlewareRef{mw: m})
	}
	return r
}

// UseNamed appends references to middleware registered with
// Collector.AddNamedMiddleware. Names are resolved on dispatch.
func (r *Route) UseNamed(names ...string) *Route {
	for _, n := range names {
		r.middlewares = append(r.middlewares, middlewareRef{name: n})
	}
	return r
}

// GetMiddlewares returns the middleware attached to the route, with named
// references resolved.
func (r *Route) GetMiddlewares() ([]Middleware, error) {
	if r.collector == nil {
		out := make([]Middleware, 0, len(r.middlewares))
		for _, ref := range r.middlewares {
			if ref.mw == nil {
				return nil, fmt.Errorf("%w: %q", ErrUnknownMiddleware, ref.name)
			}
			out = append(out, ref.mw)
		}
		return out, nil
	}

	return r.collector.resolveMiddlewares(r.middlewares)
}

// Where adds a requirement for a placeholder. The pattern may be a macro
// name such as "int" or "uuid". Inline {name:pattern} requirements take
// precedence.
func (r *Route) Where(name, pattern string) *Route {
	return r.AddParameters(map[string]string{name: pattern}, TypeRequirement)
}

// Default sets the value used for a placeholder that has no value.
func (r *Route) Default(name, value string) *Route {
	return r.AddParameters(map[string]string{name: value}, TypeDefault)
}

// AddParameters merges requirements or defaults into the route.
func (r *Route) AddParameters(params map[string]string, typ ParameterType) *Route {
	if typ == TypeRequirement {
		maps.Copy(r.requirements, params)
		r.compiled.Store(nil)
		if _, err := r.compile(); err != nil && r.err == nil {
			r.err = err
		}
		return r
	}

	maps.Copy(r.defaults, params)
	return r
}

// GetVarNames returns the placeholder names in template order.
func (r *Route) GetVarNames() ([]string, error) {
	p, err := r.compile()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), p.varsN...), nil
}

// GetPathRegexp returns the compiled regexp for the route path.
func (r *Route) GetPathRegexp() (string, error) {
	p, err := r.compile()
	if err != nil {
		return "", err
	}
	return p.regexp.String(), nil
}

// URL generates the URI of the route. See Collector.GenerateURI.
func (r *Route) URL(params, query map[string]string) (string, error) {
	if r.err != nil {
		return "", r.err
	}

	p, err := r.compile()
	if err != nil {
		return "", err
	}

	path, genErr := p.build(params, r.mergedDefaults())
	if genErr != nil {
		genErr.Route = r.name
		return "", genErr
	}

	uri := encodePath(path)
	if len(query) > 0 {
		uri += "?" + encodeQuery(query)
	}

	if r.collector != nil && r.collector.baseURL != "" {
		uri = r.collector.baseURL + uri
	}

	return uri, nil
}

// resolve turns the registered handler into an action.
func (r *Route) resolve() {
	var controllers map[string]any
	if r.collector != nil {
		controllers = r.collector.controllers
	}

	action, err := resolveHandler(r.handler, r.namespace, controllers)
	if err != nil {
		if r.err == nil || errors.Is(r.err, ErrInvalidHandler) {
			r.err = err
		}
		return
	}

	r.action = action
	if errors.Is(r.err, ErrInvalidHandler) {
		r.err = nil
	}
}

// compile returns the pattern compiled with the current requirements.
func (r *Route) compile() (*routePattern, error) {
	if p := r.compiled.Load(); p != nil {
		return p, nil
	}

	requirements := r.requirements
	if r.collector != nil && len(r.collector.requirements) > 0 {
		requirements = maps.Clone(r.collector.requirements)
		maps.Copy(requirements, r.requirements)
	}

	p, err := compilePattern(r.pattern, requirements)
	if err != nil {
		return nil, err
	}

	r.compiled.Store(p)

	return p, nil
}

// mergedDefaults returns collector defaults overlaid with route defaults.
func (r *Route) mergedDefaults() map[string]string {
	if r.collector == nil || len(r.collector.defaults) == 0 {
		return r.defaults
	}

	out := maps.Clone(r.collector.defaults)
	maps.Copy(out, r.defaults)

	return out
}

// matchPath matches the request path against the route template.
func (r *Route) matchPath(path string) (map[string]string, bool) {
	if r.err != nil {
		return nil, false
	}

	p, err := r.compile()
	if err != nil {
		return nil, false
	}

	return p.match(path)
}

// allowsMethod reports whether the route serves method. HEAD is served by
// GET routes per RFC 9110 Section 9.3.2.
func (r *Route) allowsMethod(method string) bool {
	if matchInArray(r.methods, method) {
		return true
	}
	return method == http.MethodHead && matchInArray(r.methods, http.MethodGet)
}

// allowedMethods returns the registered methods, sorted.
func (r *Route) allowedMethods() []string {
	out := append([]string(nil), r.methods...)
	sort.Strings(out)
	return out
}
