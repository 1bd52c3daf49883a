package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHelpers(t *testing.T) {
	t.Run("outside a dispatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Nil(t, Vars(req))
		assert.Nil(t, CurrentRoute(req))

		_, ok := VarGet(req, "id")
		assert.False(t, ok)

		_, ok = MatchFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("set url vars", func(t *testing.T) {
		req := SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "1"})

		assert.Equal(t, map[string]string{"id": "1"}, Vars(req))

		v, ok := VarGet(req, "id")
		assert.True(t, ok)
		assert.Equal(t, "1", v)

		_, ok = VarGet(req, "missing")
		assert.False(t, ok)
	})

	t.Run("set url vars keeps the route", func(t *testing.T) {
		c := NewCollector()
		c.Get("/users/{id}", func(r *http.Request, _ *Response) (any, error) {
			r = SetURLVars(r, map[string]string{"id": "override"})
			v, _ := VarGet(r, "id")
			return CurrentRoute(r).GetName() + ":" + v, nil
		}).Name("user")

		assert.Equal(t, "user:override", serve(c, http.MethodGet, "/users/1").Body.String())
	})

	t.Run("match from dispatch", func(t *testing.T) {
		c := NewCollector()

		var match *RouteMatch
		c.Get("/a/{x}", func(r *http.Request, _ *Response) (any, error) {
			m, ok := MatchFromContext(r.Context())
			require.True(t, ok)
			match = m
			return nil, nil
		}).Default("y", "2")

		serve(c, http.MethodGet, "/a/1")
		require.NotNil(t, match)
		assert.Equal(t, map[string]string{"x": "1"}, match.Vars)
		assert.Equal(t, map[string]string{"x": "1", "y": "2"}, match.Args)
	})
}
