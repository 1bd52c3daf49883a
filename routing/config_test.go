package routing

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
namespace: app.
base_url: https://example.com
keep_request_method: true
requirements:
  id: int
defaults:
  lang: en
routes:
  - name: user.show
    pattern: /users/{id}
    handler: Users@Show
  - name: user.update
    methods: [PUT, PATCH]
    pattern: /users/{id}
    handler: Users@Show
  - name: legacy
    pattern: /old
    redirect: /new
    permanent: true
  - name: docs
    pattern: /docs/{lang}
    handler: Docs
groups:
  - prefix: /admin
    name: admin.
    namespace: admin.
    middleware: [audit]
    routes:
      - name: dashboard
        pattern: /
        handler: Dashboard
`

func testControllers() map[string]any {
	return map[string]any{
		"app.Users": usersController{},
		"app.Docs": ControllerFunc(func(r *http.Request, _ *Response) (any, error) {
			lang, _ := VarGet(r, "lang")
			return "docs " + lang, nil
		}),
		"admin.Dashboard": textAction("dashboard"),
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(testConfig))
		require.NoError(t, err)

		assert.Equal(t, "app.", cfg.Namespace)
		assert.Equal(t, "https://example.com", cfg.BaseURL)
		assert.True(t, cfg.KeepRequestMethod)
		assert.Nil(t, cfg.ImplicitOptions)
		assert.Equal(t, map[string]string{"id": "int"}, cfg.Requirements)
		require.Len(t, cfg.Routes, 4)
		assert.Equal(t, []string{"PUT", "PATCH"}, cfg.Routes[1].Methods)
		require.Len(t, cfg.Groups, 1)
		assert.Equal(t, []string{"audit"}, cfg.Groups[0].Middleware)
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Empty(t, cfg.Routes)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParseConfig([]byte("routes:\n  - pattern: /a\n    handler: A\n    verb: GET\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("validation errors are joined", func(t *testing.T) {
		_, err := ParseConfig([]byte(`
routes:
  - name: a
    handler: A
  - name: b
    pattern: /b
groups:
  - routes:
      - name: c
        pattern: /c
        handler: C
        redirect: /d
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `route "a": pattern is required`)
		assert.Contains(t, err.Error(), `route "b": handler or redirect is required`)
		assert.Contains(t, err.Error(), `route "c": handler and redirect are mutually exclusive`)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routes.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Len(t, cfg.Routes, 4)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestNewCollectorFromConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	var audited []string
	build := func(t *testing.T) *Collector {
		t.Helper()

		c, err := NewCollectorFromConfig(cfg, testControllers())
		require.NoError(t, err)
		c.AddNamedMiddleware("audit", MiddlewareFunc(func(r *http.Request, next RequestHandler) (*Response, error) {
			audited = append(audited, r.URL.Path)
			return next.Handle(r)
		}))
		return c
	}

	t.Run("handlers", func(t *testing.T) {
		c := build(t)

		assert.Equal(t, "show 42", serve(c, http.MethodGet, "/users/42").Body.String())
		assert.Equal(t, http.StatusNotFound, serve(c, http.MethodGet, "/users/abc").Code)
		assert.Equal(t, "show 7", serve(c, http.MethodPatch, "/users/7").Body.String())
	})

	t.Run("global defaults", func(t *testing.T) {
		c := build(t)

		uri, err := c.GenerateURI("docs", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/docs/en", uri)
	})

	t.Run("redirect keeps method", func(t *testing.T) {
		c := build(t)

		w := serve(c, http.MethodPost, "/old")
		assert.Equal(t, http.StatusPermanentRedirect, w.Code)
		assert.Equal(t, "/new", w.Header().Get("Location"))
	})

	t.Run("group", func(t *testing.T) {
		c := build(t)
		audited = nil

		uri, err := c.GenerateURI("admin.dashboard", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/admin", uri)

		assert.Equal(t, "dashboard", serve(c, http.MethodGet, "/admin").Body.String())
		assert.Equal(t, []string{"/admin"}, audited)
	})

	t.Run("missing controller", func(t *testing.T) {
		ctrls := testControllers()
		delete(ctrls, "app.Docs")

		_, err := NewCollectorFromConfig(cfg, ctrls)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidHandler)
		assert.Contains(t, err.Error(), `route "docs" (/docs/{lang})`)
	})

	t.Run("invalid controller", func(t *testing.T) {
		_, err := NewCollectorFromConfig(cfg, map[string]any{"": usersController{}})
		assert.ErrorIs(t, err, ErrInvalidHandler)
	})
}

func TestCollectorApply(t *testing.T) {
	t.Run("implicit options", func(t *testing.T) {
		disabled := false
		c := NewCollector()
		require.NoError(t, c.RegisterController("A", textAction("a")))
		require.NoError(t, c.Apply(&Config{
			ImplicitOptions: &disabled,
			Routes:          []RouteConfig{{Pattern: "/a", Handler: "A"}},
		}))

		assert.Equal(t, "a", serve(c, http.MethodGet, "/a").Body.String())
		assert.Equal(t, http.StatusMethodNotAllowed, serve(c, http.MethodOptions, "/a").Code)
	})

	t.Run("route namespace and parameters", func(t *testing.T) {
		c := NewCollector()
		require.NoError(t, c.RegisterController("v2.Users", usersController{prefix: "v2:"}))

		require.NoError(t, c.Apply(&Config{
			Routes: []RouteConfig{{
				Name:         "u",
				Pattern:      "/u/{id}",
				Handler:      "Users@Show",
				Namespace:    "v2.",
				Requirements: map[string]string{"id": "int"},
				Defaults:     map[string]string{"id": "1"},
			}},
		}))

		assert.Equal(t, "v2:show 5", serve(c, http.MethodGet, "/u/5").Body.String())
		assert.Equal(t, http.StatusNotFound, serve(c, http.MethodGet, "/u/x").Code)

		uri, err := c.GenerateURI("u", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "/u/1", uri)
	})

	t.Run("unknown named middleware fails on dispatch", func(t *testing.T) {
		c := NewCollector()
		require.NoError(t, c.Apply(&Config{
			Routes: []RouteConfig{{Pattern: "/a", Redirect: "/b"}},
			Groups: []GroupConfig{{Middleware: []string{"nope"}, Routes: []RouteConfig{{Pattern: "/g", Redirect: "/b"}}}},
		}))

		assert.Equal(t, http.StatusInternalServerError, serve(c, http.MethodGet, "/g").Code)
	})
}
