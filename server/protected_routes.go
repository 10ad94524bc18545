package server

import (
	"fmt"
	"regexp"
	"strings"
)

// RouteMatcher classifies request paths as protected. A path is protected
// when any pattern matches it, ignoring case.
type RouteMatcher struct {
	patterns []*regexp.Regexp
}

// NewRouteMatcher compiles patterns. Blank patterns are skipped.
func NewRouteMatcher(patterns []string) (*RouteMatcher, error) {
	m := &RouteMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid protected route %q: %w", p, err)
		}
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

func (m *RouteMatcher) Protected(path string) bool {
	for _, re := range m.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
