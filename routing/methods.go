package routing

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// MethodPurge is the non-standard PURGE method used by caching proxies.
const MethodPurge = "PURGE"

// StandardMethods lists the methods registered by Collector.Any and tested
// when answering HEAD and OPTIONS requests.
var StandardMethods = []string{
	http.MethodHead,
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	MethodPurge,
	http.MethodOptions,
	http.MethodTrace,
	http.MethodConnect,
}

// CustomMethod standardizes a method name that is not one of the
// StandardMethods.
func CustomMethod(method string) string {
	return strings.ToUpper(method)
}

// normalizeMethods upper-cases and de-duplicates methods. A method must be
// an RFC 9110 Section 9.1 token.
func normalizeMethods(methods []string) ([]string, error) {
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: at least one method is required", ErrInvalidMethod)
	}

	out := make([]string, 0, len(methods))
	for _, m := range methods {
		// A method is a token, the same grammar as a header field name.
		if !httpguts.ValidHeaderFieldName(m) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
		}

		m = CustomMethod(m)
		if !matchInArray(out, m) {
			out = append(out, m)
		}
	}

	return out, nil
}
