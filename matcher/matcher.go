// Package matcher implements ignore-pattern matching for formatter stages.
package matcher

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Matcher reports whether a relative path is matched by a set of ignore
// patterns. A zero-pattern matcher ignores nothing.
type Matcher struct {
	globs    []glob.Glob
	patterns []string
}

// New compiles patterns into a Matcher.
// Patterns use glob syntax with `/` as the path separator, so `*` does not
// cross directory boundaries but `**` does.
func New(patterns []string) (*Matcher, error) {
	globs := make([]glob.Glob, len(patterns))

	for i, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile ignore pattern '%v': %w", pattern, err)
		}

		globs[i] = g
	}

	return &Matcher{globs: globs, patterns: patterns}, nil
}

// Ignores returns true if path matches at least one pattern.
func (m *Matcher) Ignores(path string) bool {
	for idx := range m.globs {
		if m.globs[idx].Match(path) {
			return true
		}
	}

	return false
}
