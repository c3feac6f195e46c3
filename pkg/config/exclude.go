package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ExcludeMatcher matches module names and report paths against exclude globs.
// A nil matcher excludes nothing.
type ExcludeMatcher struct {
	patterns []string
	globs    []glob.Glob
}

// Normalize trims exclude patterns and removes empty values.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Exclude = normalizeList(c.Exclude)
}

// ExcludeMatcher compiles the configured exclude patterns
func (c *Config) ExcludeMatcher() (*ExcludeMatcher, error) {
	if c == nil {
		return nil, nil
	}
	return NewExcludeMatcher(c.Exclude)
}

// NewExcludeMatcher compiles patterns with '/' as the separator, so "*" stays
// within one path segment and "**" crosses segments.
func NewExcludeMatcher(patterns []string) (*ExcludeMatcher, error) {
	m := &ExcludeMatcher{}
	for _, pattern := range normalizeList(patterns) {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		m.patterns = append(m.patterns, pattern)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Patterns returns the compiled patterns in configuration order
func (m *ExcludeMatcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}

// Excluded reports whether the module name or its path relative to the scan
// root matches any pattern.
func (m *ExcludeMatcher) Excluded(moduleName, relPath string) bool {
	if m == nil || len(m.globs) == 0 {
		return false
	}

	name := strings.TrimSpace(moduleName)
	path := filepath.ToSlash(strings.TrimSpace(relPath))
	for _, g := range m.globs {
		if name != "" && g.Match(name) {
			return true
		}
		if path != "" && g.Match(path) {
			return true
		}
	}
	return false
}
