package routinghandlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/flight/routing"
)

func TestServerMiddleware(t *testing.T) {
	osHostname, err := os.Hostname()
	require.NoError(t, err)

	tests := []struct {
		name   string
		config ServerConfig
		env    map[string]string
		want   string
	}{
		{
			name:   "explicit hostname",
			config: ServerConfig{Hostname: "web-1"},
			want:   "web-1",
		},
		{
			name:   "explicit hostname wins over env",
			config: ServerConfig{Hostname: "web-1", HostnameEnv: []string{"FLIGHT_TEST_POD"}},
			env:    map[string]string{"FLIGHT_TEST_POD": "pod-7"},
			want:   "web-1",
		},
		{
			name:   "first non-empty env",
			config: ServerConfig{HostnameEnv: []string{"FLIGHT_TEST_EMPTY", "FLIGHT_TEST_POD"}},
			env:    map[string]string{"FLIGHT_TEST_EMPTY": "", "FLIGHT_TEST_POD": "pod-7"},
			want:   "pod-7",
		},
		{
			name: "falls back to os hostname",
			want: osHostname,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			mw, err := ServerMiddleware(tt.config)
			require.NoError(t, err)

			terminal := routing.RequestHandlerFunc(func(*http.Request) (*routing.Response, error) {
				return textResponse(http.StatusOK, "ok"), nil
			})

			res, err := routing.NewPipeline(terminal, mw).Handle(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Header().Get("X-Server-Hostname"))
		})
	}

	t.Run("error passes through", func(t *testing.T) {
		mw, err := ServerMiddleware(ServerConfig{Hostname: "web-1"})
		require.NoError(t, err)

		boom := errors.New("boom")
		terminal := routing.RequestHandlerFunc(func(*http.Request) (*routing.Response, error) {
			return nil, boom
		})

		res, err := routing.NewPipeline(terminal, mw).Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, res)
	})
}
