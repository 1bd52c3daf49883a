package routing

import (
	"net/url"
	"strings"
)

// DontEncode maps the percent-encoded reserved characters that stay
// literal in generated paths. RFC 3986 allows them unencoded in a path,
// query or fragment.
var DontEncode = map[string]string{
	"%2F": "/",
	"%3F": "?",
	"%40": "@",
	"%3A": ":",
	"%21": "!",
	"%3B": ";",
	"%2C": ",",
	"%2A": "*",
	"%3D": "=",
	"%2B": "+",
	"%7C": "|",
	"%26": "&",
	"%23": "#",
	"%25": "%",
}

var pathDecoder = func() *strings.Replacer {
	pairs := make([]string, 0, len(DontEncode)*2)
	for enc, dec := range DontEncode {
		pairs = append(pairs, enc, dec)
	}
	return strings.NewReplacer(pairs...)
}()

// queryDecoder restores the characters that carry no meaning inside a
// query value (RFC 3986 Section 3.4).
var queryDecoder = strings.NewReplacer(
	"%2F", "/",
	"%3F", "?",
	"%40", "@",
	"%3A", ":",
)

const upperhex = "0123456789ABCDEF"

// rawURLEncode percent-encodes every byte outside the RFC 3986 unreserved
// set.
func rawURLEncode(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 3)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}

	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

// encodePath encodes a generated path and restores the DontEncode
// characters.
func encodePath(path string) string {
	return pathDecoder.Replace(rawURLEncode(path))
}

// encodeQuery builds a query string sorted by key.
func encodeQuery(query map[string]string) string {
	values := make(url.Values, len(query))
	for k, v := range query {
		values.Set(k, v)
	}
	return queryDecoder.Replace(values.Encode())
}

// GenerateURI builds the URI of the named route. Placeholders take their
// value from params, falling back to the route and global defaults. The
// query map is appended as a query string. The URI is absolute when a
// base URL is configured.
func (c *Collector) GenerateURI(name string, params, query map[string]string) (string, error) {
	route, err := c.GetNamedRoute(name)
	if err != nil {
		return "", err
	}

	return route.URL(params, query)
}
