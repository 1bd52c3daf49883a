package routing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// Config declares collector settings and a route table.
//
//	namespace: "app."
//	base_url: https://example.com
//	keep_request_method: true
//	requirements:
//	  id: int
//	routes:
//	  - name: user.show
//	    methods: [GET]
//	    pattern: /users/{id}
//	    handler: Users@Show
//	groups:
//	  - prefix: /admin
//	    name: admin.
//	    middleware: [auth]
//	    routes:
//	      - name: dashboard
//	        pattern: /
//	        handler: Dashboard
type Config struct {
	Namespace         string            `yaml:"namespace"`
	BaseURL           string            `yaml:"base_url"`
	KeepRequestMethod bool              `yaml:"keep_request_method"`
	SkipClean         bool              `yaml:"skip_clean"`
	ImplicitOptions   *bool             `yaml:"implicit_options"`
	Requirements      map[string]string `yaml:"requirements"`
	Defaults          map[string]string `yaml:"defaults"`
	Routes            []RouteConfig     `yaml:"routes"`
	Groups            []GroupConfig     `yaml:"groups"`
}

// RouteConfig declares one route. Exactly one of Handler and Redirect is
// set. Methods default to GET.
type RouteConfig struct {
	Name         string            `yaml:"name"`
	Methods      []string          `yaml:"methods"`
	Pattern      string            `yaml:"pattern"`
	Handler      string            `yaml:"handler"`
	Redirect     string            `yaml:"redirect"`
	Permanent    bool              `yaml:"permanent"`
	Namespace    string            `yaml:"namespace"`
	Middleware   []string          `yaml:"middleware"`
	Requirements map[string]string `yaml:"requirements"`
	Defaults     map[string]string `yaml:"defaults"`
}

// GroupConfig declares a route group.
type GroupConfig struct {
	Prefix       string            `yaml:"prefix"`
	Name         string            `yaml:"name"`
	Namespace    string            `yaml:"namespace"`
	Middleware   []string          `yaml:"middleware"`
	Requirements map[string]string `yaml:"requirements"`
	Defaults     map[string]string `yaml:"defaults"`
	Routes       []RouteConfig     `yaml:"routes"`
	Groups       []GroupConfig     `yaml:"groups"`
}

// ParseConfig decodes a YAML configuration. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("routing: parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfig reads and decodes a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routing: read config: %w", err)
	}
	return ParseConfig(data)
}

func (cfg *Config) validate() error {
	var errs []error
	for _, r := range cfg.Routes {
		errs = append(errs, r.validate())
	}
	for _, g := range cfg.Groups {
		errs = append(errs, g.validate())
	}
	return errors.Join(errs...)
}

func (g *GroupConfig) validate() error {
	var errs []error
	for _, r := range g.Routes {
		errs = append(errs, r.validate())
	}
	for _, sub := range g.Groups {
		errs = append(errs, sub.validate())
	}
	return errors.Join(errs...)
}

func (r *RouteConfig) validate() error {
	switch {
	case r.Pattern == "":
		return fmt.Errorf("routing: route %q: pattern is required", r.Name)
	case r.Handler == "" && r.Redirect == "":
		return fmt.Errorf("routing: route %q: handler or redirect is required", r.Name)
	case r.Handler != "" && r.Redirect != "":
		return fmt.Errorf("routing: route %q: handler and redirect are mutually exclusive", r.Name)
	}
	return nil
}

// NewCollectorFromConfig returns a collector configured by cfg. The
// controllers referenced by the route table must be passed in, keyed by
// their qualified names.
func NewCollectorFromConfig(cfg *Config, controllers map[string]any) (*Collector, error) {
	c := NewCollector()
	for name, ctrl := range controllers {
		if err := c.RegisterController(name, ctrl); err != nil {
			return nil, err
		}
	}
	if err := c.Apply(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply applies the settings of cfg and registers its route table. It
// returns the joined errors of every route that failed to register.
func (c *Collector) Apply(cfg *Config) error {
	c.SetNamespace(cfg.Namespace)
	c.SetBaseURL(cfg.BaseURL)
	c.KeepRequestMethod(cfg.KeepRequestMethod)
	c.SkipClean(cfg.SkipClean)
	if cfg.ImplicitOptions != nil {
		c.ImplicitOptions(*cfg.ImplicitOptions)
	}
	c.AddParameters(cfg.Requirements, TypeRequirement)
	c.AddParameters(cfg.Defaults, TypeDefault)

	var errs []error
	for _, rc := range cfg.Routes {
		errs = append(errs, c.applyRoute(rc))
	}
	for _, gc := range cfg.Groups {
		errs = append(errs, c.applyGroup(gc))
	}

	return errors.Join(errs...)
}

func (c *Collector) applyGroup(gc GroupConfig) error {
	var errs []error

	c.Group(GroupAttributes{
		Prefix:          gc.Prefix,
		Name:            gc.Name,
		Namespace:       gc.Namespace,
		NamedMiddleware: gc.Middleware,
		Parameters:      gc.Requirements,
		Defaults:        gc.Defaults,
	}, func(c *Collector) {
		for _, rc := range gc.Routes {
			errs = append(errs, c.applyRoute(rc))
		}
		for _, sub := range gc.Groups {
			errs = append(errs, c.applyGroup(sub))
		}
	})

	return errors.Join(errs...)
}

func (c *Collector) applyRoute(rc RouteConfig) error {
	methods := rc.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	var r *Route
	if rc.Redirect != "" {
		r = c.Redirect(rc.Pattern, rc.Redirect, rc.Permanent)
	} else {
		r = c.Map(methods, rc.Pattern, rc.Handler)
	}

	if rc.Namespace != "" {
		r.SetNamespace(rc.Namespace)
	}
	r.UseNamed(rc.Middleware...)
	r.AddParameters(rc.Requirements, TypeRequirement)
	r.AddParameters(rc.Defaults, TypeDefault)
	if rc.Name != "" {
		r.Name(rc.Name)
	}

	if err := r.GetError(); err != nil {
		return fmt.Errorf("routing: route %q (%s): %w", rc.Name, rc.Pattern, err)
	}
	return nil
}
