package routing

import (
	"maps"
	"slices"
)

// GroupAttributes are shared by every route registered inside a Group
// callback.
type GroupAttributes struct {
	// Prefix is prepended to the route patterns. Nested prefixes
	// concatenate.
	Prefix string

	// Name is prepended to the route names. Nested name prefixes
	// concatenate, e.g. "api." and "v1." give "api.v1.users".
	Name string

	// Namespace resolves string and ActionRef handlers. An inner group
	// namespace replaces the outer one.
	Namespace string

	// Middleware is appended to the middleware of the enclosing groups.
	Middleware []Middleware

	// NamedMiddleware references sets registered with
	// Collector.AddNamedMiddleware and runs after Middleware.
	NamedMiddleware []string

	// Parameters are placeholder requirements merged over those of the
	// enclosing groups.
	Parameters map[string]string

	// Defaults are placeholder defaults merged over those of the enclosing
	// groups.
	Defaults map[string]string
}

// groupScope is the merged state of the open groups.
type groupScope struct {
	prefix       string
	namePrefix   string
	namespace    string
	middlewares  []middlewareRef
	requirements map[string]string
	defaults     map[string]string
}

// scope returns the innermost open group, or an empty scope.
func (c *Collector) scope() *groupScope {
	if n := len(c.groups); n > 0 {
		return c.groups[n-1]
	}
	return &groupScope{}
}

// Group calls fn with the collector in a scope where every route
// registered inherits attrs. Groups nest; the scope is closed when fn
// returns.
//
//	c.Group(routing.GroupAttributes{Prefix: "/api", Name: "api."}, func(c *routing.Collector) {
//	    c.Get("/users", listUsers).Name("users") // api.users -> /api/users
//	})
func (c *Collector) Group(attrs GroupAttributes, fn func(c *Collector)) {
	parent := c.scope()

	g := &groupScope{
		prefix:       joinPath(parent.prefix, attrs.Prefix),
		namePrefix:   parent.namePrefix + attrs.Name,
		namespace:    parent.namespace,
		middlewares:  slices.Clone(parent.middlewares),
		requirements: maps.Clone(parent.requirements),
		defaults:     maps.Clone(parent.defaults),
	}
	if attrs.Namespace != "" {
		g.namespace = attrs.Namespace
	}
	for _, mw := range attrs.Middleware {
		g.middlewares = append(g.middlewares, middlewareRef{mw: mw})
	}
	for _, name := range attrs.NamedMiddleware {
		g.middlewares = append(g.middlewares, middlewareRef{name: name})
	}
	if g.requirements == nil {
		g.requirements = make(map[string]string, len(attrs.Parameters))
	}
	maps.Copy(g.requirements, attrs.Parameters)
	if g.defaults == nil {
		g.defaults = make(map[string]string, len(attrs.Defaults))
	}
	maps.Copy(g.defaults, attrs.Defaults)

	c.groups = append(c.groups, g)
	defer func() {
		c.groups = c.groups[:len(c.groups)-1]
	}()

	fn(c)
}
