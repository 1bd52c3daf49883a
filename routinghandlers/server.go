package routinghandlers

import (
	"net/http"
	"os"

	"github.com/vitalvas/flight/routing"
)

// ServerConfig configures the Server middleware behaviour.
type ServerConfig struct {
	// Hostname is the value written to the X-Server-Hostname response
	// header. Resolution order: Hostname field, then HostnameEnv
	// environment variables, then os.Hostname.
	Hostname string

	// HostnameEnv is a list of environment variable names checked in
	// order (e.g. ["POD_NAME", "HOSTNAME"]). The first non-empty value is
	// used.
	HostnameEnv []string
}

// ServerMiddleware returns a middleware that sets the X-Server-Hostname
// header on every response, short-circuited ones included. The hostname is
// resolved once; an error is returned if it cannot be determined.
func ServerMiddleware(cfg ServerConfig) (routing.Middleware, error) {
	hostname := cfg.Hostname

	if hostname == "" {
		for _, env := range cfg.HostnameEnv {
			if v, ok := os.LookupEnv(env); ok && v != "" {
				hostname = v
				break
			}
		}
	}

	if hostname == "" {
		h, err := os.Hostname()
		if err != nil {
			return nil, err
		}

		hostname = h
	}

	return routing.MiddlewareFunc(func(r *http.Request, next routing.RequestHandler) (*routing.Response, error) {
		res, err := next.Handle(r)
		if res != nil {
			res.Header().Set("X-Server-Hostname", hostname)
		}
		return res, err
	}), nil
}
