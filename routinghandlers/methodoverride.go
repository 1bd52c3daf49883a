package routinghandlers

import (
	"errors"
	"net/http"

	"github.com/vitalvas/flight/routing"
	"golang.org/x/net/http/httpguts"
)

// ErrInvalidOverrideMethod is returned when MethodOverrideConfig.AllowedMethods
// or MethodOverrideConfig.OriginalMethods contains an invalid HTTP method.
var ErrInvalidOverrideMethod = errors.New("method override: allowed methods must be valid HTTP methods")

// MethodOverrideConfig configures the Method Override handler behaviour.
type MethodOverrideConfig struct {
	// HeaderNames is the list of header names checked in order. The first
	// non-empty header value is used as the override. When nil, defaults to
	// ["X-HTTP-Method-Override", "X-Method-Override", "X-HTTP-Method"].
	HeaderNames []string

	// OriginalMethods is the set of HTTP methods eligible for override.
	// When nil, defaults to [POST].
	OriginalMethods []string

	// AllowedMethods restricts which methods can be used as overrides.
	// When nil, defaults to PUT, PATCH, DELETE, PURGE.
	AllowedMethods []string
}

var defaultOverrideHeaders = []string{
	"X-HTTP-Method-Override",
	"X-Method-Override",
	"X-HTTP-Method",
}

var defaultOriginalMethods = []string{http.MethodPost}

var defaultOverrideMethods = []string{
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	routing.MethodPurge,
}

// MethodOverride returns a net/http wrapper that lets clients override the
// request method via a header. The collector matches routes before running
// any route middleware, so the override wraps the collector itself:
//
//	override, err := routinghandlers.MethodOverride(routinghandlers.MethodOverrideConfig{})
//	http.ListenAndServe(":8080", override(c))
//
// The first non-empty header value is standardized with
// routing.CustomMethod and checked against the allowed set. When allowed,
// the wrapped handler receives a derived request with the new method and
// without the override header.
//
// It returns ErrInvalidOverrideMethod if AllowedMethods or OriginalMethods
// contains an invalid method.
func MethodOverride(cfg MethodOverrideConfig) (func(http.Handler) http.Handler, error) {
	headers := cfg.HeaderNames
	if len(headers) == 0 {
		headers = defaultOverrideHeaders
	}

	originals := cfg.OriginalMethods
	if originals == nil {
		originals = defaultOriginalMethods
	}

	methods := cfg.AllowedMethods
	if methods == nil {
		methods = defaultOverrideMethods
	}

	originalSet, err := methodSet(originals)
	if err != nil {
		return nil, err
	}

	allowed, err := methodSet(methods)
	if err != nil {
		return nil, err
	}

	headerNames := append([]string(nil), headers...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := originalSet[r.Method]; ok {
				for _, h := range headerNames {
					v := r.Header.Get(h)
					if v == "" {
						continue
					}

					if override := routing.CustomMethod(v); allowed[override] {
						r = r.WithContext(r.Context())
						r.Method = override
						r.Header = r.Header.Clone()
						r.Header.Del(h)
					}

					break
				}
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// methodSet validates methods as upper-case RFC 9110 tokens.
func methodSet(methods []string) (map[string]bool, error) {
	set := make(map[string]bool, len(methods))
	for _, m := range methods {
		if !httpguts.ValidHeaderFieldName(m) || m != routing.CustomMethod(m) {
			return nil, ErrInvalidOverrideMethod
		}
		set[m] = true
	}
	return set, nil
}
