package routing

import (
	"regexp"
	"sync"
)

// varMatcher validates a single route variable value.
// *regexp.Regexp satisfies this interface.
type varMatcher interface {
	MatchString(string) bool
	String() string
}

// boundedMatcher adds a maximum length to a regexp.
type boundedMatcher struct {
	*regexp.Regexp
	maxLen int
}

func (m boundedMatcher) MatchString(s string) bool {
	return len(s) <= m.maxLen && m.Regexp.MatchString(s)
}

// macro is a named requirement usable as {name:macro} or in Where.
type macro struct {
	pattern string
	matcher varMatcher
}

var macroTable = []struct {
	name    string
	pattern string
	maxLen  int
}{
	{"uuid", `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`, 0},
	{"int", `[0-9]+`, 0},
	{"float", `[0-9]*\.?[0-9]+`, 0},
	{"slug", `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`, 0},
	{"alpha", `[a-zA-Z]+`, 0},
	{"alphanum", `[a-zA-Z0-9]+`, 0},
	{"date", `[0-9]{4}-[0-9]{2}-[0-9]{2}`, 0},
	{"hex", `[0-9a-fA-F]+`, 0},
	// RFC 1123 labels, 253 characters in total.
	{"domain", `(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`, 253},
	// Catch-all, spans segments.
	{"any", `.+`, 0},
}

var patternMacros = func() map[string]macro {
	m := make(map[string]macro, len(macroTable))
	for _, row := range macroTable {
		re := regexp.MustCompile("^(?:" + row.pattern + ")$")

		var matcher varMatcher = re
		if row.maxLen > 0 {
			matcher = boundedMatcher{Regexp: re, maxLen: row.maxLen}
		}

		m[row.name] = macro{pattern: row.pattern, matcher: matcher}
	}
	return m
}()

// expandMacro returns the regexp for a macro name together with its
// validation matcher. Unknown names are raw regexps and come back
// unchanged with a nil matcher.
func expandMacro(pattern string) (string, varMatcher) {
	if m, ok := patternMacros[pattern]; ok {
		return m.pattern, m.matcher
	}
	return pattern, nil
}

// regexpCache holds compiled patterns. Distinct patterns are bounded by
// the registered routes.
var regexpCache = struct {
	sync.RWMutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

// compileRegexp compiles pattern once and reuses the result.
func compileRegexp(pattern string) (*regexp.Regexp, error) {
	regexpCache.RLock()
	re, ok := regexpCache.m[pattern]
	regexpCache.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexpCache.Lock()
	if cached, ok := regexpCache.m[pattern]; ok {
		re = cached
	} else {
		regexpCache.m[pattern] = re
	}
	regexpCache.Unlock()

	return re, nil
}
