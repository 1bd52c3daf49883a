package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usersController struct {
	prefix string
}

func (c usersController) Serve(_ *http.Request, _ *Response) (any, error) {
	return c.prefix + "serve", nil
}

func (c usersController) Show(_ *http.Request, _ *Response, args map[string]string) (any, error) {
	return c.prefix + "show " + args["id"], nil
}

func (c usersController) Index(_ *http.Request, _ *Response) (any, error) {
	return c.prefix + "index", nil
}

func (usersController) Helper(int) string {
	return ""
}

type statusHandler int

func (s statusHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(int(s))
	_, _ = w.Write([]byte("handled"))
}

func runAction(t *testing.T, action Action, args map[string]string) (any, *Response) {
	t.Helper()

	res := NewResponse()
	out, err := action(httptest.NewRequest(http.MethodGet, "/", nil), res, args)
	require.NoError(t, err)

	return out, res
}

func TestResolveHandlerShapes(t *testing.T) {
	tests := []struct {
		name    string
		handler any
		want    any
	}{
		{"action", Action(func(_ *http.Request, _ *Response, a map[string]string) (any, error) { return a["id"], nil }), "1"},
		{"action literal", func(_ *http.Request, _ *Response, a map[string]string) (any, error) { return a["id"], nil }, "1"},
		{"controller func", ControllerFunc(func(_ *http.Request, _ *Response) (any, error) { return "cf", nil }), "cf"},
		{"controller literal", func(_ *http.Request, _ *Response) (any, error) { return "cl", nil }, "cl"},
		{"controller", usersController{}, "serve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := resolveHandler(tt.handler, "", nil)
			require.NoError(t, err)

			out, _ := runAction(t, action, map[string]string{"id": "1"})
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("http handler", func(t *testing.T) {
		action, err := resolveHandler(statusHandler(http.StatusCreated), "", nil)
		require.NoError(t, err)

		out, res := runAction(t, action, nil)
		assert.Nil(t, out)
		assert.Equal(t, http.StatusCreated, res.StatusCode())
		assert.Equal(t, "handled", res.Body().String())
	})

	t.Run("http handler func", func(t *testing.T) {
		action, err := resolveHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-Plain", "1")
		}, "", nil)
		require.NoError(t, err)

		_, res := runAction(t, action, nil)
		assert.Equal(t, "1", res.Header().Get("X-Plain"))
	})

	t.Run("nil", func(t *testing.T) {
		_, err := resolveHandler(nil, "", nil)
		assert.ErrorIs(t, err, ErrInvalidHandler)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := resolveHandler(42, "", nil)
		assert.ErrorIs(t, err, ErrInvalidHandler)
		assert.Contains(t, err.Error(), "int")
	})
}

func TestResolveHandlerReferences(t *testing.T) {
	controllers := map[string]any{
		"app.Users": usersController{prefix: "app:"},
		"Users":     usersController{prefix: "root:"},
		"Home":      ControllerFunc(func(_ *http.Request, _ *Response) (any, error) { return "home", nil }),
	}

	tests := []struct {
		name      string
		handler   any
		namespace string
		want      string
	}{
		{"string method", "Users@Show", "", "root:show 5"},
		{"string namespaced", "Users@Show", "app.", "app:show 5"},
		{"string already qualified", "app.Users@Index", "app.", "app:index"},
		{"string without method", "Home", "", "home"},
		{"string controller object", "Users", "", "root:serve"},
		{"ref bare name wins", Act("Users", "Index"), "app.", "root:index"},
		{"ref without method", Act("Home", ""), "none.", "home"},
		{"ref controller method", Act("app.Users", "Show"), "", "app:show 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := resolveHandler(tt.handler, tt.namespace, controllers)
			require.NoError(t, err)

			out, _ := runAction(t, action, map[string]string{"id": "5"})
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("ref falls back to namespace", func(t *testing.T) {
		ctrls := map[string]any{"admin.Dash": usersController{prefix: "admin:"}}

		action, err := resolveHandler(Act("Dash", "Index"), "admin.", ctrls)
		require.NoError(t, err)

		out, _ := runAction(t, action, nil)
		assert.Equal(t, "admin:index", out)
	})

	errTests := []struct {
		name    string
		handler any
		want    string
	}{
		{"unknown controller", "Missing@Show", `controller "Missing" is not registered`},
		{"unknown method", "Users@Missing", `has no method "Missing"`},
		{"bad signature", "Users@Helper", "has signature"},
		{"unknown ref", Act("Missing", "Show"), `controller "Missing" is not registered`},
	}

	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveHandler(tt.handler, "", controllers)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidHandler)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCollectorControllers(t *testing.T) {
	t.Run("register requires name and value", func(t *testing.T) {
		c := NewCollector()
		assert.ErrorIs(t, c.RegisterController("", usersController{}), ErrInvalidHandler)
		assert.ErrorIs(t, c.RegisterController("Users", nil), ErrInvalidHandler)
	})

	t.Run("collector namespace", func(t *testing.T) {
		c := NewCollector().SetNamespace("app.")
		require.NoError(t, c.RegisterController("app.Users", usersController{}))
		c.Get("/users/{id}", "Users@Show")

		w := serve(c, http.MethodGet, "/users/9")
		assert.Equal(t, "show 9", w.Body.String())
	})

	t.Run("route namespace re-resolves", func(t *testing.T) {
		c := NewCollector()
		require.NoError(t, c.RegisterController("v2.Users", usersController{prefix: "v2:"}))

		r := c.Get("/users", "Users@Index")
		assert.ErrorIs(t, r.GetError(), ErrInvalidHandler)

		r.SetNamespace("v2.")
		require.NoError(t, r.GetError())
		assert.Equal(t, "v2.", r.GetNamespace())
		assert.Equal(t, "v2:index", serve(c, http.MethodGet, "/users").Body.String())
	})

	t.Run("method error survives resolution", func(t *testing.T) {
		c := NewCollector()
		r := c.Map([]string{"BAD METHOD"}, "/", "Missing")
		assert.ErrorIs(t, r.GetError(), ErrInvalidMethod)

		r.SetNamespace("x.")
		assert.ErrorIs(t, r.GetError(), ErrInvalidMethod)
	})

	t.Run("handler as registered", func(t *testing.T) {
		c := NewCollector()
		r := c.Get("/", "Users@Show")
		assert.Equal(t, "Users@Show", r.GetHandler())
	})
}
