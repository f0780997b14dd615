package router

import (
	"regexp"
	"sort"
	"strings"
)

type matcherKind int

const (
	matchExact matcherKind = iota
	matchOneOf
	matchPattern
)

// Matcher decides whether a hostname or path is accepted by a domain or
// route. The three shapes (exact string, membership in a fixed set,
// compiled regular expression) are reduced to a single predicate at
// construction time; nothing is re-parsed per request.
type Matcher struct {
	kind    matcherKind
	exact   string
	set     map[string]struct{}
	pattern *regexp.Regexp
	label   string
}

// Exact returns a Matcher accepting only s.
func Exact(s string) Matcher {
	return Matcher{kind: matchExact, exact: s, label: s}
}

// OneOf returns a Matcher accepting any member of values.
func OneOf(values ...string) Matcher {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return Matcher{
		kind:  matchOneOf,
		set:   set,
		label: "{" + strings.Join(sorted, ", ") + "}",
	}
}

// Pattern returns a Matcher accepting anything re matches at the start
// of the input. The match is anchored there (a path pattern "/api" does
// not accept "/v2/api"); append "$" to also anchor the end.
func Pattern(re *regexp.Regexp) Matcher {
	expr := re.String()
	if !strings.HasPrefix(expr, `\A`) && !strings.HasPrefix(expr, "^") {
		re = regexp.MustCompile(`\A(?:` + expr + `)`)
	}
	return Matcher{kind: matchPattern, pattern: re, label: "~" + expr}
}

// Match reports whether the matcher accepts s.
func (m Matcher) Match(s string) bool {
	switch m.kind {
	case matchExact:
		return s == m.exact
	case matchOneOf:
		_, ok := m.set[s]
		return ok
	case matchPattern:
		return m.pattern.MatchString(s)
	default:
		return false
	}
}

// String returns a human-readable form of the matcher. Patterns carry a
// "~" prefix.
func (m Matcher) String() string {
	return m.label
}

func (m Matcher) empty() bool {
	switch m.kind {
	case matchExact:
		return m.exact == ""
	case matchOneOf:
		return len(m.set) == 0
	case matchPattern:
		return m.pattern == nil
	default:
		return true
	}
}
