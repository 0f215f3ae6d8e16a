package model

import (
	"fmt"
	"regexp"
	"strings"
)

// SelectAll is the textual sentinel that selects every namespace or document.
const SelectAll = "all"

type patternKind int

const (
	patternExact patternKind = iota
	patternContains
)

// Pattern matches names either exactly or by regular-expression search.
// The zero value is an exact match against the empty string.
type Pattern struct {
	kind  patternKind
	exact string
	re    *regexp.Regexp
}

// Exact returns a pattern matching only the given name.
func Exact(name string) Pattern {
	return Pattern{kind: patternExact, exact: name}
}

// Contains returns a pattern matching any name with a match of re anywhere in it.
func Contains(re *regexp.Regexp) Pattern {
	return Pattern{kind: patternContains, re: re}
}

// ParsePattern reads the textual form of a pattern: /expr/ is a regular
// expression, anything else is an exact name.
func ParsePattern(s string) (Pattern, error) {
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid pattern %q: %w", s, err)
		}
		return Contains(re), nil
	}
	return Exact(s), nil
}

// Match reports whether name matches the pattern. An empty name never matches.
func (p Pattern) Match(name string) bool {
	if name == "" {
		return false
	}
	switch p.kind {
	case patternContains:
		return p.re != nil && p.re.MatchString(name)
	default:
		return name == p.exact
	}
}

func (p Pattern) String() string {
	if p.kind == patternContains && p.re != nil {
		return "/" + p.re.String() + "/"
	}
	return p.exact
}

// Selector chooses namespaces: either all of them, or those matching any
// pattern. The zero value selects everything.
type Selector struct {
	patterns []Pattern
}

// All returns the selector that keeps everything.
func All() Selector {
	return Selector{}
}

// AnyOf returns a selector keeping names that match at least one pattern.
// With no patterns it behaves like All.
func AnyOf(patterns ...Pattern) Selector {
	if len(patterns) == 0 {
		return All()
	}
	return Selector{patterns: append([]Pattern(nil), patterns...)}
}

// ParseSelector reads a list of textual patterns. An empty list or the single
// value "all" yields the All selector.
func ParseSelector(values []string) (Selector, error) {
	if len(values) == 0 || (len(values) == 1 && strings.TrimSpace(values[0]) == SelectAll) {
		return All(), nil
	}
	patterns := make([]Pattern, 0, len(values))
	for _, v := range values {
		p, err := ParsePattern(strings.TrimSpace(v))
		if err != nil {
			return Selector{}, err
		}
		patterns = append(patterns, p)
	}
	return AnyOf(patterns...), nil
}

// IsAll reports whether the selector is the All sentinel.
func (s Selector) IsAll() bool {
	return len(s.patterns) == 0
}

// Match reports whether name is selected.
func (s Selector) Match(name string) bool {
	if s.IsAll() {
		return true
	}
	for _, p := range s.patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the selector's patterns.
func (s Selector) Patterns() []Pattern {
	return append([]Pattern(nil), s.patterns...)
}
