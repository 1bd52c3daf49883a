package routing

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// defaultVarPattern matches a single path segment.
const defaultVarPattern = "[^/]+"

// routePattern is a compiled route template.
type routePattern struct {
	// template is the original template string.
	template string
	// regexp is the compiled regular expression for the whole path.
	regexp *regexp.Regexp
	// reverse is the template with %s placeholders for Sprintf.
	reverse string
	// varsN are the variable names in order.
	varsN []string
	// varsR validate each variable value on its own.
	varsR []varMatcher
	// groups are the regexp subexpression indexes of each variable.
	groups []int
	// constrained marks variables with an inline or declared requirement.
	constrained []bool
}

// compilePattern parses a route template. A variable is written {name},
// {name:regexp} or {name:macro}. requirements supplies patterns for
// variables that have no inline pattern.
func compilePattern(tpl string, requirements map[string]string) (*routePattern, error) {
	idxs, err := braceIndices(tpl)
	if err != nil {
		return nil, err
	}

	var (
		pattern     bytes.Buffer
		reverse     bytes.Buffer
		varsN       []string
		varsR       []varMatcher
		constrained []bool
		end         int
	)

	pattern.WriteByte('^')

	for i := 0; i < len(idxs); i += 2 {
		// Write the raw text between variables.
		raw := tpl[end:idxs[i]]
		end = idxs[i+1]

		// Extract variable name and optional pattern.
		name, inline, hasInline := strings.Cut(tpl[idxs[i]+1:end-1], ":")
		if name == "" {
			return nil, fmt.Errorf("routing: missing name in %q from %q", tpl[idxs[i]:end], tpl)
		}

		patt := defaultVarPattern
		var compiledVarR varMatcher
		isConstrained := false
		switch {
		case hasInline:
			patt, compiledVarR = expandMacro(inline)
			isConstrained = true
		case requirements[name] != "":
			patt, compiledVarR = expandMacro(requirements[name])
			isConstrained = true
		}

		fmt.Fprintf(&pattern, "%s(?P<v%d>%s)", regexp.QuoteMeta(raw), len(varsN), patt)
		reverse.WriteString(strings.ReplaceAll(raw, "%", "%%"))
		reverse.WriteString("%s")

		varsN = append(varsN, name)
		if compiledVarR == nil {
			re, err := compileRegexp(fmt.Sprintf("^(?:%s)$", patt))
			if err != nil {
				return nil, fmt.Errorf("routing: invalid pattern %q in variable %q: %w", patt, name, err)
			}
			compiledVarR = re
		}
		varsR = append(varsR, compiledVarR)
		constrained = append(constrained, isConstrained)
	}

	// Write the remaining literal text after the last variable.
	raw := tpl[end:]
	pattern.WriteString(regexp.QuoteMeta(raw))
	pattern.WriteByte('$')
	reverse.WriteString(strings.ReplaceAll(raw, "%", "%%"))

	if err := checkDuplicateVars(varsN); err != nil {
		return nil, err
	}

	reg, err := compileRegexp(pattern.String())
	if err != nil {
		return nil, err
	}

	groups := make([]int, len(varsN))
	for i := range varsN {
		groups[i] = reg.SubexpIndex("v" + strconv.Itoa(i))
	}

	return &routePattern{
		template:    tpl,
		regexp:      reg,
		reverse:     reverse.String(),
		varsN:       varsN,
		varsR:       varsR,
		groups:      groups,
		constrained: constrained,
	}, nil
}

// match reports whether path matches the pattern and every extracted value
// satisfies its variable pattern on its own.
func (p *routePattern) match(path string) (map[string]string, bool) {
	matches := p.regexp.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}

	vars := make(map[string]string, len(p.varsN))
	for i, name := range p.varsN {
		v := matches[p.groups[i]]
		if !p.varsR[i].MatchString(v) {
			return nil, false
		}
		vars[name] = v
	}

	return vars, true
}

// build substitutes values into the template. Only constrained variables
// are validated. defaults supplies values that are not in values.
func (p *routePattern) build(values, defaults map[string]string) (string, *URLGenerationError) {
	urlValues := make([]any, len(p.varsN))
	for i, name := range p.varsN {
		v, ok := values[name]
		if !ok {
			v, ok = defaults[name]
		}
		if !ok {
			return "", &URLGenerationError{Param: name, Reason: "is missing"}
		}
		if p.constrained[i] && !p.varsR[i].MatchString(v) {
			return "", &URLGenerationError{
				Param:  name,
				Reason: fmt.Sprintf("does not match requirement %q", p.varsR[i].String()),
			}
		}
		urlValues[i] = v
	}

	return fmt.Sprintf(p.reverse, urlValues...), nil
}

// braceIndices returns the start and end+1 indices of each top-level
// {...} pair in s. Returns an error if braces are unbalanced.
func braceIndices(s string) ([]int, error) {
	var (
		idxs  []int
		level int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idxs = append(idxs, i)
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("routing: unbalanced braces in %q", s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("routing: unbalanced braces in %q", s)
	}
	return idxs, nil
}

// checkDuplicateVars returns an error if any variable name is repeated.
func checkDuplicateVars(vars []string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return fmt.Errorf("routing: duplicated route variable %q", v)
		}
		seen[v] = true
	}
	return nil
}

// joinPath prefixes tpl with a group path prefix.
func joinPath(prefix, tpl string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return tpl
	}
	if tpl == "" || tpl == "/" {
		return prefix
	}
	if !strings.HasPrefix(tpl, "/") {
		tpl = "/" + tpl
	}
	return prefix + tpl
}
